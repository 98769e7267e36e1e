// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

// FunctionSCSP is a single-producer single-consumer bounded queue of
// erased callables, parameterised by a single [CallMode] fixed at
// construction (spec §4.5). No byte arena is used: the erased
// environment lives in the Go closure itself rather than in an
// arena-carved region (DESIGN.md).
type FunctionSCSP struct {
	core  *scspCore
	slots []funcSlot
	mode  CallMode
	gate  *waitGate
}

// NewFunctionSCSP creates an SCSP function queue with the given call
// mode. Capacity rounds up to the next power of 2.
func NewFunctionSCSP(capacity int, mode CallMode) *FunctionSCSP {
	n := uint64(roundToPow2(capacity))
	return &FunctionSCSP{
		core:  newSCSPCore(n),
		slots: make([]funcSlot, n+1),
		mode:  mode,
	}
}

// NewFunctionSCSPWithWait creates an SCSP function queue with wait/notify
// enabled.
func NewFunctionSCSPWithWait(capacity int, mode CallMode) *FunctionSCSP {
	q := NewFunctionSCSP(capacity, mode)
	q.gate = newWaitGate()
	return q
}

// Cap returns the queue's usable capacity.
func (q *FunctionSCSP) Cap() int { return int(q.core.ringSize - 1) }

// Mode returns the queue's fixed call mode.
func (q *FunctionSCSP) Mode() CallMode { return q.mode }

// Wait blocks until the next Push/PushWithDestroy publishes, or returns
// immediately if the queue was constructed without wait support.
func (q *FunctionSCSP) Wait() { q.gate.wait(q.core.empty) }

// Push enqueues fn for InvokeOnce mode, where there is nothing to
// destroy beyond fn's own closure.
func (q *FunctionSCSP) Push(fn func()) error {
	if q.mode != InvokeOnce {
		panic("ringq: Push requires InvokeOnce mode")
	}
	pos, ok := q.core.reserveSlot()
	if !ok {
		return ErrWouldBlock
	}
	q.slots[pos].reclaim(fn, nil)
	q.core.publish(pos)
	q.gate.notify()
	return nil
}

// PushWithDestroy enqueues fn and its destructor for InvokeOnceDNI or
// InvokeMultiple mode.
func (q *FunctionSCSP) PushWithDestroy(fn, destroy func()) error {
	if q.mode == InvokeOnce {
		panic("ringq: PushWithDestroy requires InvokeOnceDNI or InvokeMultiple mode")
	}
	pos, ok := q.core.reserveSlot()
	if !ok {
		return ErrWouldBlock
	}
	q.slots[pos].reclaim(fn, destroy)
	q.core.publish(pos)
	q.gate.notify()
	return nil
}

// Consume invokes and destroys the next callable in one step (InvokeOnce
// mode only).
func (q *FunctionSCSP) Consume() error {
	if q.mode != InvokeOnce {
		panic("ringq: Consume requires InvokeOnce mode")
	}
	pos, ok := q.core.reserveConsume()
	if !ok {
		return ErrWouldBlock
	}
	fn := q.slots[pos].invoke
	q.slots[pos].clear()
	q.core.advance(pos)
	if fn != nil {
		fn()
	}
	return nil
}

// ConsumeDNI invokes the next callable and returns a wrapper the
// consumer must Close to run its destructor (InvokeOnceDNI mode only).
func (q *FunctionSCSP) ConsumeDNI() (*Invocation, error) {
	if q.mode != InvokeOnceDNI {
		panic("ringq: ConsumeDNI requires InvokeOnceDNI mode")
	}
	pos, ok := q.core.reserveConsume()
	if !ok {
		return nil, ErrWouldBlock
	}
	iv := &Invocation{fn: q.slots[pos].invoke, destroy: q.slots[pos].destroy}
	q.slots[pos].clear()
	q.core.advance(pos)
	return iv, nil
}

// ConsumeMultiple invokes the next callable without destroying it
// (InvokeMultiple mode only). Its destructor runs when the physical slot
// is later reclaimed by a push, or when Close drains the queue.
func (q *FunctionSCSP) ConsumeMultiple() error {
	if q.mode != InvokeMultiple {
		panic("ringq: ConsumeMultiple requires InvokeMultiple mode")
	}
	pos, ok := q.core.reserveConsume()
	if !ok {
		return ErrWouldBlock
	}
	fn := q.slots[pos].invoke
	q.slots[pos].invoke = nil
	q.core.advance(pos)
	if fn != nil {
		fn()
	}
	return nil
}

// Close drains every physical slot, invoking any destructor still
// pending (spec §4.3: "the destructor of any queue variant drains
// remaining payloads"). This covers both unconsumed ring-live entries
// and InvokeMultiple entries a consumer already invoked but whose
// physical slot no push has yet reclaimed. InvokeOnce slots carry no
// destructor and are skipped.
func (q *FunctionSCSP) Close() {
	start, n := q.core.consumeRange()
	if n > 0 {
		q.core.advance((start + n - 1) % q.core.ringSize)
	}
	for i := range q.slots {
		if d := q.slots[i].destroy; d != nil {
			d()
		}
		q.slots[i].clear()
	}
}
