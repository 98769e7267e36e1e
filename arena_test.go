// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

import "testing"

func TestArenaAllocCommitCycle(t *testing.T) {
	a := newArena(64, nil)

	sp, ok := a.alloc(16, 8)
	if !ok {
		t.Fatal("alloc(16,8) on fresh arena should succeed")
	}
	if sp.off != 0 || sp.len != 16 {
		t.Fatalf("alloc(16,8): got %+v, want off=0 len=16", sp)
	}
	a.commit(sp)
	if a.in != 16 {
		t.Fatalf("commit: in=%d, want 16", a.in)
	}

	sp2, ok := a.alloc(8, 8)
	if !ok || sp2.off != 16 {
		t.Fatalf("alloc(8,8): got %+v ok=%v, want off=16", sp2, ok)
	}
	a.commit(sp2)
}

func TestArenaAlignment(t *testing.T) {
	a := newArena(128, nil)
	sp, ok := a.alloc(3, 1)
	if !ok {
		t.Fatal("alloc(3,1) failed")
	}
	a.commit(sp)

	sp2, ok := a.alloc(8, 8)
	if !ok {
		t.Fatal("alloc(8,8) failed")
	}
	if sp2.off%8 != 0 {
		t.Fatalf("alloc(8,8): off=%d not 8-aligned", sp2.off)
	}
}

func TestArenaFullReturnsFalse(t *testing.T) {
	a := newArena(16, nil)
	sp, ok := a.alloc(16, 1)
	if !ok {
		t.Fatal("alloc(16,1) on exactly-sized arena should succeed")
	}
	a.commit(sp)

	if _, ok := a.alloc(1, 1); ok {
		t.Fatal("alloc(1,1) on a full arena should fail")
	}
}

func TestArenaReclaimEmpty(t *testing.T) {
	a := newArena(32, nil)
	sp, _ := a.alloc(16, 1)
	a.commit(sp)

	a.reclaimEmpty()
	if a.out != a.in {
		t.Fatalf("reclaimEmpty: out=%d, want in=%d", a.out, a.in)
	}

	sp2, ok := a.alloc(16, 1)
	if !ok || sp2.off != 16 {
		t.Fatalf("alloc after reclaim: got %+v ok=%v, want off=16 (continuing forward)", sp2, ok)
	}
}

func TestArenaWrapAroundAfterSetOut(t *testing.T) {
	a := newArena(16, nil)
	sp, _ := a.alloc(10, 1)
	a.commit(sp)
	// Consumer has released the first 10 bytes back to the producer.
	a.setOut(10)

	sp2, ok := a.alloc(4, 1)
	if !ok || sp2.off != 10 {
		t.Fatalf("alloc after partial reclaim: got %+v ok=%v, want off=10", sp2, ok)
	}
	a.commit(sp2)

	// in=14, out=10: 2 bytes remain forward of in, 9 bytes remain in the
	// wrap region [0, out-1). A request too big for either individually but
	// fitting the wrap region should carve from offset 0.
	sp3, ok := a.alloc(9, 1)
	if !ok || sp3.off != 0 {
		t.Fatalf("alloc(9,1) should wrap to offset 0: got %+v ok=%v", sp3, ok)
	}

	// A request too big for both the forward and wrap regions must fail.
	if _, ok := a.alloc(10, 1); ok {
		t.Fatal("alloc(10,1) should not fit in either region")
	}
}
