// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

// ObjectMCSP is a single-producer, multi-concurrent-consumer bounded
// queue of in-place-constructed values of type T (spec §4.4, §4.6).
//
// Consumers obtain a [ObjectReader] via GetReader and call its Consume
// methods; the queue itself only exposes the producer surface plus
// reader lifecycle management, mirroring spec §6 ("In MCSP these are
// members of a Reader handle").
type ObjectMCSP[T any] struct {
	core   *mcspCore
	buffer []T
	gate   *waitGate
}

// NewObjectMCSP creates an MCSP object queue with room for up to
// maxReaders concurrent readers. Capacity rounds up to the next power of
// 2.
func NewObjectMCSP[T any](capacity, maxReaders int) *ObjectMCSP[T] {
	n := uint64(roundToPow2(capacity))
	return &ObjectMCSP[T]{
		core:   newMCSPCore(n, maxReaders),
		buffer: make([]T, n+1),
	}
}

// NewObjectMCSPWithWait creates an MCSP object queue with wait/notify
// enabled.
func NewObjectMCSPWithWait[T any](capacity, maxReaders int) *ObjectMCSP[T] {
	q := NewObjectMCSP[T](capacity, maxReaders)
	q.gate = newWaitGate()
	return q
}

// Cap returns the queue's usable capacity.
func (q *ObjectMCSP[T]) Cap() int { return int(q.core.ringSize - 1) }

// Wait blocks until the next Push/Emplace publishes, or returns
// immediately if the queue was constructed without wait support.
func (q *ObjectMCSP[T]) Wait() { q.gate.wait(q.core.empty) }

// Push enqueues a copy of *elem (producer only).
func (q *ObjectMCSP[T]) Push(elem *T) error {
	pos, ok := q.core.tryReserveProducerSlot()
	if !ok {
		return ErrWouldBlock
	}
	q.buffer[pos] = *elem
	q.core.publish()
	q.gate.notify()
	return nil
}

// Emplace constructs a new element via build in place (producer only).
func (q *ObjectMCSP[T]) Emplace(build func(*T)) error {
	pos, ok := q.core.tryReserveProducerSlot()
	if !ok {
		return ErrWouldBlock
	}
	build(&q.buffer[pos])
	q.core.publish()
	q.gate.notify()
	return nil
}

// EmplaceN exposes the contiguous free prefix of the ring to fn, which
// returns how many elements it actually constructed starting at that
// prefix. The queue publishes exactly that many (spec §4.6, extended to
// MCSP's single producer side). fn must not construct more than the
// length of the slice it is given.
func (q *ObjectMCSP[T]) EmplaceN(fn func(free []T) (constructed int)) int {
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

// ForceSync bypasses the MCSP sync bottleneck short-circuit (spec §9
// Open Question, resolved in DESIGN.md OQ-1). Use only when the caller
// knows a stalled reader will not resume.
func (q *ObjectMCSP[T]) ForceSync() {
	q.core.outCache = q.core.forceSync()
}

// GetReader registers and returns a reader handle at the caller-chosen
// index. Returns ErrReaderExists if idx is already registered.
func (q *ObjectMCSP[T]) GetReader(idx int) (*ObjectReader[T], error) {
	if err := q.core.register(idx); err != nil {
		return nil, err
	}
	return &ObjectReader[T]{q: q, idx: idx}, nil
}

// ObjectReader is a registered consumer handle for [ObjectMCSP].
type ObjectReader[T any] struct {
	q   *ObjectMCSP[T]
	idx int
}

// Drop releases this reader's slot in the announce array so producer
// sync stops waiting on it (spec §4.4 "Reader drop"). A dropped reader
// must not be used again.
func (r *ObjectReader[T]) Drop() {
	r.q.core.dropReader(r.idx)
}

// Wait blocks until the producer's next publish, or returns immediately
// if the queue was constructed without wait support.
func (r *ObjectReader[T]) Wait() { r.q.gate.wait(r.q.core.empty) }

// Consume reserves and consumes one element via CAS. checkOnce chooses a
// single reservation attempt (true) versus retry-until-drained (false).
func (r *ObjectReader[T]) Consume(fn func(*T), checkOnce bool) error {
	start, _, ok := r.q.core.reserve(1, checkOnce)
	if !ok {
		return ErrWouldBlock
	}
	q := r.q
	fn(&q.buffer[start])
	var zero T
	q.buffer[start] = zero
	q.core.announce(r.idx, (start+1)%q.core.ringSize)
	return nil
}

// ConsumeAll reserves and consumes every currently reservable element,
// calling fn for each in ring order, and returns the number consumed.
func (r *ObjectReader[T]) ConsumeAll(fn func(*T)) int {
	return r.ConsumeN(fn, r.q.core.ringSize)
}

// ConsumeN reserves and consumes up to n elements, calling fn for each in
// ring order, and returns the number consumed. Deferred announce means a
// single release store covers the whole batch.
func (r *ObjectReader[T]) ConsumeN(fn func(*T), n uint64) int {
	start, count, ok := r.q.core.reserve(n, false)
	if !ok {
		return 0
	}
	q := r.q
	for i := uint64(0); i < count; i++ {
		pos := (start + i) % q.core.ringSize
		fn(&q.buffer[pos])
		var zero T
		q.buffer[pos] = zero
	}
	q.core.announce(r.idx, (start+count)%q.core.ringSize)
	return int(count)
}
