// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

import "testing"

func TestCursorPackRoundTrip(t *testing.T) {
	cases := []struct {
		value, tag uint64
	}{
		{0, 0},
		{1, 1},
		{1<<48 - 1, tagMask},
		{12345, 42},
	}
	for _, c := range cases {
		packed := packCursor(c.value, c.tag)
		if got := cursorValue(packed); got != c.value {
			t.Fatalf("cursorValue(pack(%d,%d)): got %d, want %d", c.value, c.tag, got, c.value)
		}
		if got := cursorTag(packed); got != c.tag&tagMask {
			t.Fatalf("cursorTag(pack(%d,%d)): got %d, want %d", c.value, c.tag, got, c.tag&tagMask)
		}
	}
}

func TestIncrTagWraps(t *testing.T) {
	c := packCursor(0, tagMask)
	next := incrTag(c, 5)
	if cursorTag(next) != 0 {
		t.Fatalf("incrTag at max tag: got tag %d, want 0", cursorTag(next))
	}
	if cursorValue(next) != 5 {
		t.Fatalf("incrTag value: got %d, want 5", cursorValue(next))
	}
}

func TestSameTagKeepsTag(t *testing.T) {
	c := packCursor(10, 7)
	next := sameTag(c, 20)
	if cursorTag(next) != 7 {
		t.Fatalf("sameTag: got tag %d, want 7", cursorTag(next))
	}
	if cursorValue(next) != 20 {
		t.Fatalf("sameTag: got value %d, want 20", cursorValue(next))
	}
}

func TestCursorsEmpty(t *testing.T) {
	out := packCursor(3, 0)
	in := packCursor(3, 0)
	if !cursorsEmpty(out, in) {
		t.Fatal("equal positions should report empty")
	}

	in = packCursor(4, 0)
	if cursorsEmpty(out, in) {
		t.Fatal("distinct positions, same tag, should not report empty")
	}

	// Tag-lap window: input's tag has not yet caught up to output's.
	out = packCursor(3, 2)
	in = packCursor(3, 1)
	if !cursorsEmpty(out, in) {
		t.Fatal("input tag behind output tag should report empty")
	}
}
