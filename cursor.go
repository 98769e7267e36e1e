// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

// cursor is the tagged index word used by the MCSP protocol: a single
// 64-bit word packing a ring position (the high 48 bits) and a lap tag
// (the low 16 bits) so a single atomix.Uint64 CAS can validate both in
// one indivisible step.
//
// The tag exists only to disambiguate a stale reservation attempt from a
// live one when the ring has lapped between a consumer's load of
// output_pos and its CAS. It is not a general-purpose ABA counter: every
// successful reservation resynchronizes its tag to the producer's most
// recently observed tag (sameTag), so the 16-bit width only needs to
// survive the window between one load and one CAS, not the queue's
// lifetime.
type cursor = uint64

const (
	tagBits    = 16
	tagMask    = 1<<tagBits - 1
	valueShift = tagBits
)

// packCursor combines a ring position and a lap tag into one word.
func packCursor(value, tag uint64) cursor {
	return (value << valueShift) | (tag & tagMask)
}

// cursorValue extracts the ring position from a tagged cursor.
func cursorValue(c cursor) uint64 {
	return c >> valueShift
}

// cursorTag extracts the lap tag from a tagged cursor.
func cursorTag(c cursor) uint64 {
	return c & tagMask
}

// incrTag packs a new value with the tag advanced by one. Used by the
// producer's publish step (spec §4.4): the tag increments on every
// input_pos publish so consumers can detect the advance.
func incrTag(c cursor, newValue uint64) cursor {
	return packCursor(newValue, cursorTag(c)+1)
}

// sameTag packs a new value while keeping the current tag. Used by a
// consumer's reservation CAS: the winning CAS re-synchronizes
// output_pos's tag to input_pos's tag, closing the tag-lap window (spec
// §4.4 step 3).
func sameTag(c cursor, newValue uint64) cursor {
	return packCursor(newValue, cursorTag(c))
}

// cursorsEmpty implements the empty predicate from spec §3:
//
//	empty ≡ (tag(input) < tag(output)) ∨ (value(input) == value(output))
//
// The first disjunct catches the tag-lap window right after a publish
// wraps the tag; the second is the ordinary "no unconsumed slots" case.
func cursorsEmpty(out, in cursor) bool {
	return cursorTag(in) < cursorTag(out) || cursorValue(out) == cursorValue(in)
}
