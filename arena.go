// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

// arena is the circular byte region backing buffer and function queues
// (spec §3 "Byte arena", §4.2). It is deliberately not built from atomic
// fields: both cursors are producer-private. `in` is the producer's write
// head; `out` is the producer's *cached* view of how far the consumer set
// has reclaimed, derived from slot descriptors rather than shared with
// consumers directly (spec §9 "Producer-side arena reclaim"). This keeps
// the arena's hot path single-writer with no atomic RMW at all.
type arena struct {
	buf       []byte
	allocator Allocator
	in        uint32
	out       uint32
}

// newArena carves the arena's backing storage from alloc, falling back to
// [DefaultAllocator] when alloc is nil (spec §6 "external aligned-allocator
// handle"). The storage is requested with alignment 1; alloc aligns span
// offsets relative to the arena's first byte.
func newArena(size int, alloc Allocator) *arena {
	if size < 0 {
		size = 0
	}
	if alloc == nil {
		alloc = DefaultAllocator{}
	}
	return &arena{buf: alloc.AllocateBytes(size, 1), allocator: alloc}
}

// close returns the arena's backing storage to its allocator.
func (a *arena) close() {
	a.allocator.DeallocateBytes(a.buf)
}

// span is a carved, but not necessarily committed, byte range of the arena.
type span struct {
	off uint32
	len uint32
}

// bytes returns the arena bytes backing s. Valid only until the next
// commit past s's end reuses the region.
func (a *arena) bytes(s span) []byte {
	return a.buf[s.off : s.off+s.len]
}

func (a *arena) cap() int { return len(a.buf) }

// alloc carves a maximal aligned byte range of exactly size bytes,
// following spec §4.2's algorithm. It does not commit the range: the
// caller must call commit once the associated slot is published.
func (a *arena) alloc(size, align uint32) (span, bool) {
	b := uint32(len(a.buf))
	if size == 0 {
		aligned := alignUp(a.in, align)
		if aligned <= b {
			return span{off: aligned, len: 0}, true
		}
		return span{}, false
	}

	if a.in >= a.out {
		aligned := alignUp(a.in, align)
		if aligned <= b && b-aligned >= size {
			return span{off: aligned, len: size}, true
		}
		if a.out > 0 {
			aligned = alignUp(0, align)
			if a.out-1 >= aligned && a.out-1-aligned >= size {
				return span{off: aligned, len: size}, true
			}
		}
		return span{}, false
	}

	// in < out: the only free region is [in, out-1).
	aligned := alignUp(a.in, align)
	if a.out-1 >= aligned && a.out-1-aligned >= size {
		return span{off: aligned, len: size}, true
	}
	return span{}, false
}

// commit advances the write head past a carved-and-published span.
func (a *arena) commit(s span) {
	a.in = s.off + s.len
}

// setOut updates the producer's cached view of the consumer-side
// reclaim point to the descriptor pointer at the new output position
// (spec §4.7: "arena.out on the producer side always equals the
// descriptor pointer at output_pos when non-empty").
func (a *arena) setOut(off uint32) {
	a.out = off
}

// reclaimEmpty is called when the producer observes the ring has gone
// empty: the arena never leaks space ahead of the ring, so out catches
// up to in (spec §4.7).
func (a *arena) reclaimEmpty() {
	a.out = a.in
}
