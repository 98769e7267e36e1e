// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

// ObjectSCSP is a single-producer single-consumer bounded queue of
// in-place-constructed values of type T (spec §4.6).
//
// Based on the same cached-mirror ring-buffer discipline as the teacher's
// [SPSC], generalized to the spec's N+1-slot sentinel ring so it shares
// its cursor arithmetic with [ObjectMCSP], [BufferSCSP], and
// [FunctionSCSP].
type ObjectSCSP[T any] struct {
	core   *scspCore
	buffer []T
	gate   *waitGate
}

// NewObjectSCSP creates an SCSP object queue. Capacity rounds up to the
// next power of 2. The queue has no wait support, so wait/notify calls
// are no-ops; use [NewObjectSCSPWithWait] to enable it.
func NewObjectSCSP[T any](capacity int) *ObjectSCSP[T] {
	n := uint64(roundToPow2(capacity))
	return &ObjectSCSP[T]{
		core:   newSCSPCore(n),
		buffer: make([]T, n+1),
	}
}

// NewObjectSCSPWithWait creates an SCSP object queue with the optional
// wait/notify capability enabled (spec §5, §6 "Wait capability flag").
func NewObjectSCSPWithWait[T any](capacity int) *ObjectSCSP[T] {
	q := NewObjectSCSP[T](capacity)
	q.gate = newWaitGate()
	return q
}

// Cap returns the queue's usable capacity (N, not the N+1 physical slots).
func (q *ObjectSCSP[T]) Cap() int { return int(q.core.ringSize - 1) }

// Wait blocks until the next Push/Emplace publishes, or returns
// immediately if the queue was constructed without wait support (spec
// §5). It is advisory: callers may poll instead, and a woken Wait does
// not guarantee the queue is non-empty by the time it returns.
func (q *ObjectSCSP[T]) Wait() { q.gate.wait(q.core.empty) }

// Empty reports whether the queue currently holds no elements. This is a
// momentary snapshot; it may be stale the instant it returns.
func (q *ObjectSCSP[T]) Empty() bool {
	return q.core.empty()
}

// Count returns a monotone snapshot of the number of live elements.
func (q *ObjectSCSP[T]) Count() int {
	head := q.core.head.LoadAcquire()
	tail := q.core.tail.LoadAcquire()
	return int((tail + q.core.ringSize - head) % q.core.ringSize)
}

// Push enqueues a copy of *elem (producer only). Returns ErrWouldBlock if
// the queue is full.
func (q *ObjectSCSP[T]) Push(elem *T) error {
	pos, ok := q.core.reserveSlot()
	if !ok {
		return ErrWouldBlock
	}
	q.buffer[pos] = *elem
	q.core.publish(pos)
	q.gate.notify()
	return nil
}

// Emplace constructs a new element via build in place, avoiding a
// caller-side allocation for large T (producer only).
func (q *ObjectSCSP[T]) Emplace(build func(*T)) error {
	pos, ok := q.core.reserveSlot()
	if !ok {
		return ErrWouldBlock
	}
	build(&q.buffer[pos])
	q.core.publish(pos)
	q.gate.notify()
	return nil
}

// EmplaceN exposes the contiguous free prefix of the ring to fn, which
// returns how many elements it actually constructed starting at that
// prefix. The queue publishes exactly that many (spec §4.6). fn must not
// construct more than the length of the slice it is given.
func (q *ObjectSCSP[T]) EmplaceN(fn func(free []T) (constructed int)) int {
	start, n := q.core.freePrefix()
	if n == 0 {
		return 0
	}
	constructed := fn(q.buffer[start : start+n])
	if constructed <= 0 {
		return 0
	}
	if uint64(constructed) > n {
		constructed = int(n)
	}
	q.core.publishN(start, uint64(constructed))
	q.gate.notify()
	return constructed
}

// Consume removes one element and passes it to fn (consumer only).
// Returns ErrWouldBlock if the queue is empty.
func (q *ObjectSCSP[T]) Consume(fn func(*T)) error {
	pos, ok := q.core.reserveConsume()
	if !ok {
		return ErrWouldBlock
	}
	fn(&q.buffer[pos])
	var zero T
	q.buffer[pos] = zero
	q.core.advance(pos)
	return nil
}

// ConsumeAll drains every currently visible element, calling fn for each
// in FIFO order, and returns the number consumed (spec §4.3 "Batch
// operations"). The cursor advances exactly once at the end via a defer,
// so it moves regardless of how fn returns.
func (q *ObjectSCSP[T]) ConsumeAll(fn func(*T)) int {
	return q.ConsumeN(fn, -1)
}

// ConsumeN drains up to n elements (or all available, if n < 0), calling
// fn for each in FIFO order, and returns the number consumed.
func (q *ObjectSCSP[T]) ConsumeN(fn func(*T), n int) int {
	start, avail := q.core.consumeRange()
	if avail == 0 {
		return 0
	}
	take := avail
	if n >= 0 && uint64(n) < take {
		take = uint64(n)
	}
	consumed := uint64(0)
	defer func() {
		if consumed > 0 {
			q.core.advance((start + consumed - 1) % q.core.ringSize)
		}
	}()
	for consumed < take {
		pos := (start + consumed) % q.core.ringSize
		fn(&q.buffer[pos])
		var zero T
		q.buffer[pos] = zero
		consumed++
	}
	return int(consumed)
}
