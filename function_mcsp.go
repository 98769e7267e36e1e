// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

// FunctionMCSP is a single-producer, multi-concurrent-consumer bounded
// queue of erased callables, parameterised by a single [CallMode] fixed
// at construction (spec §4.4, §4.5).
type FunctionMCSP struct {
	core  *mcspCore
	slots []funcSlot
	mode  CallMode
	gate  *waitGate
}

// NewFunctionMCSP creates an MCSP function queue with the given call
// mode and room for up to maxReaders concurrent readers.
func NewFunctionMCSP(capacity int, mode CallMode, maxReaders int) *FunctionMCSP {
	n := uint64(roundToPow2(capacity))
	return &FunctionMCSP{
		core:  newMCSPCore(n, maxReaders),
		slots: make([]funcSlot, n+1),
		mode:  mode,
	}
}

// NewFunctionMCSPWithWait creates an MCSP function queue with wait/notify
// enabled.
func NewFunctionMCSPWithWait(capacity int, mode CallMode, maxReaders int) *FunctionMCSP {
	q := NewFunctionMCSP(capacity, mode, maxReaders)
	q.gate = newWaitGate()
	return q
}

// Cap returns the queue's usable capacity.
func (q *FunctionMCSP) Cap() int { return int(q.core.ringSize - 1) }

// Mode returns the queue's fixed call mode.
func (q *FunctionMCSP) Mode() CallMode { return q.mode }

// Wait blocks until the next Push/PushWithDestroy publishes, or returns
// immediately if the queue was constructed without wait support.
func (q *FunctionMCSP) Wait() { q.gate.wait(q.core.empty) }

// ForceSync bypasses the MCSP sync bottleneck short-circuit (DESIGN.md
// OQ-1).
func (q *FunctionMCSP) ForceSync() {
	q.core.outCache = q.core.forceSync()
}

// Push enqueues fn for InvokeOnce mode.
func (q *FunctionMCSP) Push(fn func()) error {
	if q.mode != InvokeOnce {
		panic("ringq: Push requires InvokeOnce mode")
	}
	pos, ok := q.core.tryReserveProducerSlot()
	if !ok {
		return ErrWouldBlock
	}
	q.slots[pos].reclaim(fn, nil)
	q.core.publish()
	q.gate.notify()
	return nil
}

// PushWithDestroy enqueues fn and its destructor for InvokeOnceDNI or
// InvokeMultiple mode.
func (q *FunctionMCSP) PushWithDestroy(fn, destroy func()) error {
	if q.mode == InvokeOnce {
		panic("ringq: PushWithDestroy requires InvokeOnceDNI or InvokeMultiple mode")
	}
	pos, ok := q.core.tryReserveProducerSlot()
	if !ok {
		return ErrWouldBlock
	}
	q.slots[pos].reclaim(fn, destroy)
	q.core.publish()
	q.gate.notify()
	return nil
}

// GetReader registers and returns a reader handle at the caller-chosen
// index.
func (q *FunctionMCSP) GetReader(idx int) (*FunctionReader, error) {
	if err := q.core.register(idx); err != nil {
		return nil, err
	}
	return &FunctionReader{q: q, idx: idx}, nil
}

// Close drains every physical slot, invoking any destructor still
// pending — both unconsumed ring-live entries and InvokeMultiple entries
// a reader already invoked but whose physical slot no push has yet
// reclaimed. Callers must drop every [FunctionReader] before calling
// Close.
func (q *FunctionMCSP) Close() {
	for i := range q.slots {
		if d := q.slots[i].destroy; d != nil {
			d()
		}
		q.slots[i].clear()
	}
}

// FunctionReader is a registered consumer handle for [FunctionMCSP].
type FunctionReader struct {
	q   *FunctionMCSP
	idx int
}

// Drop releases this reader's announce slot.
func (r *FunctionReader) Drop() {
	r.q.core.dropReader(r.idx)
}

// Wait blocks until the producer's next publish, or returns immediately
// if the queue was constructed without wait support.
func (r *FunctionReader) Wait() { r.q.gate.wait(r.q.core.empty) }

// Consume invokes and destroys the next callable in one step (InvokeOnce
// mode only).
func (r *FunctionReader) Consume(checkOnce bool) error {
	if r.q.mode != InvokeOnce {
		panic("ringq: Consume requires InvokeOnce mode")
	}
	start, _, ok := r.q.core.reserve(1, checkOnce)
	if !ok {
		return ErrWouldBlock
	}
	q := r.q
	fn := q.slots[start].invoke
	q.slots[start].clear()
	q.core.announce(r.idx, (start+1)%q.core.ringSize)
	if fn != nil {
		fn()
	}
	return nil
}

// ConsumeDNI invokes the next callable and returns a wrapper the
// consumer must Close to run its destructor (InvokeOnceDNI mode only).
func (r *FunctionReader) ConsumeDNI(checkOnce bool) (*Invocation, error) {
	if r.q.mode != InvokeOnceDNI {
		panic("ringq: ConsumeDNI requires InvokeOnceDNI mode")
	}
	start, _, ok := r.q.core.reserve(1, checkOnce)
	if !ok {
		return nil, ErrWouldBlock
	}
	q := r.q
	iv := &Invocation{fn: q.slots[start].invoke, destroy: q.slots[start].destroy}
	q.slots[start].clear()
	q.core.announce(r.idx, (start+1)%q.core.ringSize)
	return iv, nil
}

// ConsumeMultiple invokes the next callable without destroying it
// (InvokeMultiple mode only).
func (r *FunctionReader) ConsumeMultiple(checkOnce bool) error {
	if r.q.mode != InvokeMultiple {
		panic("ringq: ConsumeMultiple requires InvokeMultiple mode")
	}
	start, _, ok := r.q.core.reserve(1, checkOnce)
	if !ok {
		return ErrWouldBlock
	}
	q := r.q
	fn := q.slots[start].invoke
	q.slots[start].invoke = nil
	q.core.announce(r.idx, (start+1)%q.core.ringSize)
	if fn != nil {
		fn()
	}
	return nil
}
