// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq_test

import (
	"bytes"
	"errors"
	"testing"

	"code.hybscloud.com/ringq"
)

func TestBufferSCSPAllocateAndRelease(t *testing.T) {
	q := ringq.NewBufferSCSP(8, 4096, 8)

	payloads := [][]byte{
		[]byte("hello"),
		[]byte("world!"),
		[]byte("x"),
	}
	for _, p := range payloads {
		p := p
		err := q.AllocateAndRelease(len(p), 8, func(dst []byte) []byte {
			return dst[:copy(dst, p)]
		})
		if err != nil {
			t.Fatalf("AllocateAndRelease(%q): %v", p, err)
		}
	}

	for i, want := range payloads {
		var got []byte
		err := q.Consume(func(b []byte) { got = append([]byte(nil), b...) })
		if err != nil {
			t.Fatalf("Consume(%d): %v", i, err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("Consume(%d): got %q, want %q", i, got, want)
		}
	}

	if err := q.Consume(func([]byte) {}); !errors.Is(err, ringq.ErrWouldBlock) {
		t.Fatalf("Consume on empty: got %v, want ErrWouldBlock", err)
	}
}

func TestBufferSCSPAllocateRelease(t *testing.T) {
	q := ringq.NewBufferSCSP(4, 256, 8)

	if got := q.Alignment(); got != 8 {
		t.Fatalf("Alignment: got %d, want 8", got)
	}

	r, buf, err := q.Allocate(10, 8)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if r.Len() != 10 || len(buf) != 10 {
		t.Fatalf("Allocate: r.Len()=%d len(buf)=%d, want 10", r.Len(), len(buf))
	}
	copy(buf, "0123456789")

	if err := q.Release(r); err != nil {
		t.Fatalf("Release: %v", err)
	}

	var got []byte
	if err := q.Consume(func(b []byte) { got = append([]byte(nil), b...) }); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if string(got) != "0123456789" {
		t.Fatalf("Consume: got %q, want %q", got, "0123456789")
	}
}

func TestBufferSCSPArenaExhaustionReturnsErrArenaFull(t *testing.T) {
	q := ringq.NewBufferSCSP(4, 16, 1)

	if err := q.AllocateAndRelease(16, 1, func(b []byte) []byte { return b }); err != nil {
		t.Fatalf("first AllocateAndRelease: %v", err)
	}

	_, _, err := q.Allocate(16, 1)
	if !errors.Is(err, ringq.ErrArenaFull) {
		t.Fatalf("Allocate on exhausted arena: got %v, want ErrArenaFull", err)
	}
}

// countingAllocator wraps [ringq.DefaultAllocator] to record whether
// AllocateBytes/DeallocateBytes were actually invoked by the queue.
type countingAllocator struct {
	ringq.DefaultAllocator
	allocated   int
	deallocated int
}

func (a *countingAllocator) AllocateBytes(size, align int) []byte {
	a.allocated++
	return a.DefaultAllocator.AllocateBytes(size, align)
}

func (a *countingAllocator) DeallocateBytes(buf []byte) {
	a.deallocated++
	a.DefaultAllocator.DeallocateBytes(buf)
}

func TestBufferSCSPWithAllocatorUsesSuppliedAllocator(t *testing.T) {
	alloc := &countingAllocator{}
	q := ringq.NewBufferSCSPWithAllocator(4, 64, 8, alloc)

	if alloc.allocated != 1 {
		t.Fatalf("AllocateBytes calls: got %d, want 1", alloc.allocated)
	}

	if err := q.AllocateAndRelease(4, 1, func(b []byte) []byte { return b[:copy(b, "abcd")] }); err != nil {
		t.Fatalf("AllocateAndRelease: %v", err)
	}
	var got []byte
	if err := q.Consume(func(b []byte) { got = append([]byte(nil), b...) }); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if string(got) != "abcd" {
		t.Fatalf("Consume: got %q, want %q", got, "abcd")
	}

	q.Close()
	if alloc.deallocated != 1 {
		t.Fatalf("DeallocateBytes calls: got %d, want 1", alloc.deallocated)
	}
}

func TestBufferSCSPConsumeAllDrainsInFIFOOrder(t *testing.T) {
	q := ringq.NewBufferSCSP(8, 4096, 8)
	for i := 0; i < 4; i++ {
		p := []byte{byte(i)}
		if err := q.AllocateAndRelease(1, 1, func(dst []byte) []byte { return dst[:copy(dst, p)] }); err != nil {
			t.Fatalf("AllocateAndRelease(%d): %v", i, err)
		}
	}

	var got []byte
	n := q.ConsumeAll(func(b []byte) { got = append(got, b...) })
	if n != 4 {
		t.Fatalf("ConsumeAll: got %d, want 4", n)
	}
	for i, v := range got {
		if int(v) != i {
			t.Fatalf("FIFO order at %d: got %d, want %d", i, v, i)
		}
	}
}
