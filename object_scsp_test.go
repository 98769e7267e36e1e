// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq_test

import (
	"errors"
	"testing"

	"code.hybscloud.com/ringq"
)

func TestObjectSCSPBasic(t *testing.T) {
	q := ringq.NewObjectSCSP[int](3)

	if q.Cap() != 4 {
		t.Fatalf("Cap: got %d, want 4", q.Cap())
	}
	if !q.Empty() {
		t.Fatal("fresh queue should be empty")
	}

	for i := range 4 {
		v := i + 100
		if err := q.Push(&v); err != nil {
			t.Fatalf("Push(%d): %v", i, err)
		}
	}

	v := 999
	if err := q.Push(&v); !errors.Is(err, ringq.ErrWouldBlock) {
		t.Fatalf("Push on full: got %v, want ErrWouldBlock", err)
	}
	if q.Count() != 4 {
		t.Fatalf("Count: got %d, want 4", q.Count())
	}

	for i := range 4 {
		got := -1
		if err := q.Consume(func(e *int) { got = *e }); err != nil {
			t.Fatalf("Consume(%d): %v", i, err)
		}
		if got != i+100 {
			t.Fatalf("Consume(%d): got %d, want %d", i, got, i+100)
		}
	}

	if err := q.Consume(func(*int) {}); !errors.Is(err, ringq.ErrWouldBlock) {
		t.Fatalf("Consume on empty: got %v, want ErrWouldBlock", err)
	}
}

func TestObjectSCSPEmplaceAndConsumeAll(t *testing.T) {
	q := ringq.NewObjectSCSP[string](8)

	for i := range 5 {
		i := i
		if err := q.Emplace(func(s *string) { *s = string(rune('a' + i)) }); err != nil {
			t.Fatalf("Emplace(%d): %v", i, err)
		}
	}

	var got []string
	n := q.ConsumeAll(func(s *string) { got = append(got, *s) })
	if n != 5 {
		t.Fatalf("ConsumeAll: got %d, want 5", n)
	}
	want := []string{"a", "b", "c", "d", "e"}
	for i, s := range want {
		if got[i] != s {
			t.Fatalf("FIFO order at %d: got %q, want %q", i, got[i], s)
		}
	}
}

func TestObjectSCSPEmplaceN(t *testing.T) {
	q := ringq.NewObjectSCSP[int](8)

	n := q.EmplaceN(func(free []int) int {
		for i := range free {
			free[i] = i * 2
		}
		return len(free)
	})
	if n != q.Cap() {
		t.Fatalf("EmplaceN: got %d, want %d", n, q.Cap())
	}

	var got []int
	q.ConsumeAll(func(v *int) { got = append(got, *v) })
	for i, v := range got {
		if v != i*2 {
			t.Fatalf("EmplaceN order at %d: got %d, want %d", i, v, i*2)
		}
	}
}

func TestObjectSCSPConsumeNPartial(t *testing.T) {
	q := ringq.NewObjectSCSP[int](8)
	for i := range 5 {
		v := i
		q.Push(&v)
	}

	var got []int
	n := q.ConsumeN(func(v *int) { got = append(got, *v) }, 2)
	if n != 2 || len(got) != 2 {
		t.Fatalf("ConsumeN(2): got n=%d len=%d, want 2", n, len(got))
	}

	if q.Count() != 3 {
		t.Fatalf("Count after ConsumeN(2): got %d, want 3", q.Count())
	}

	rest := q.ConsumeAll(func(v *int) { got = append(got, *v) })
	if rest != 3 {
		t.Fatalf("ConsumeAll remainder: got %d, want 3", rest)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("total order at %d: got %d, want %d", i, v, i)
		}
	}
}
