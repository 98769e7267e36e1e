// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

// CallMode selects how a function queue treats consumption and teardown
// of its erased callables (spec §4.5).
type CallMode uint8

const (
	// InvokeOnce invokes and destroys the callable in one step; no
	// destructor is stored.
	InvokeOnce CallMode = iota
	// InvokeOnceDNI ("destroy, no immediate") invokes the callable and
	// hands the consumer a wrapper that destroys it on Close. A wrapper
	// that is never closed leaves the callable un-destroyed.
	InvokeOnceDNI
	// InvokeMultiple invokes the callable without destroying it; the
	// callable remains live until its slot is reclaimed by a later push
	// or by Close.
	InvokeMultiple
)

// funcSlot is a function queue's erased-callable descriptor. The spec's
// {obj_ptr, invoker, destructor} triple is expressed as a pair of Go
// closures (DESIGN.md): the closure's captured environment plays the
// role of obj_ptr, and invoke/destroy are the invoker/destructor
// function pointers. destroy is nil whenever the callable is trivially
// destructible, matching spec §4.5 ("For trivially destructible
// callables destructor is null").
type funcSlot struct {
	invoke  func()
	destroy func()
}

func (s *funcSlot) clear() { s.invoke, s.destroy = nil, nil }

// reclaim runs and clears any destructor still pending on the slot, then
// installs a fresh entry. Used by producers immediately before
// overwriting a physical slot that may still be carrying an
// InvokeMultiple destructor (spec §4.5 "callable remains live until
// reclaimed").
func (s *funcSlot) reclaim(invoke, destroy func()) {
	if s.destroy != nil {
		d := s.destroy
		s.clear()
		d()
	}
	s.invoke, s.destroy = invoke, destroy
}

// Invocation is the InvokeOnceDNI consumer-side wrapper (spec §4.5): the
// consumer calls Call to run the callable and Close to destroy it. The
// usual pattern is
//
//	iv, err := q.ConsumeDNI()
//	defer iv.Close()
//	iv.Call()
//
// An Invocation that is never closed leaves its callable's destructor
// un-run, same as the spec's "if the wrapper is abandoned, no
// destruction" rule.
type Invocation struct {
	fn      func()
	destroy func()
}

// Call invokes the wrapped callable. A second call is a no-op.
func (iv *Invocation) Call() {
	if iv.fn == nil {
		return
	}
	fn := iv.fn
	iv.fn = nil
	fn()
}

// Close runs the stored destructor, if any. Idempotent.
func (iv *Invocation) Close() {
	if iv.destroy == nil {
		return
	}
	d := iv.destroy
	iv.destroy = nil
	d()
}
