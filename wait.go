// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

import "sync"

// waitGate is the optional wait/notify capability described in spec §5:
// "a futex-style wait on input_pos comparing against a snapshotted
// output_pos", woken by the producer's notify after publish. wait() is
// advisory: callers may always poll instead, and waitGate is only
// embedded into a queue when constructed with wait support enabled.
//
// The broadcast itself follows the same shape as the channel-emulates-
// sync.Cond technique used elsewhere in the ring-buffer ecosystem for
// this "1 producer notifies, N waiters wake" case: the current channel is
// swapped for a fresh one under the mutex, then the old one is closed to
// broadcast, so the next wait() call gets its own channel to block on. But a bare channel receive is
// not enough on its own: it has no coupling to queue state, so a notify
// landing between a caller's own state check and its call to wait would
// be missed entirely. wait() therefore takes the caller's own empty
// predicate and loops check-then-block under the same mutex notify uses
// to swap channels, the same coupled pattern ipfs-go-qringbuf's
// NextRegion uses around its condition channels: lock, recheck the
// condition, unlock, block, relock, recheck.
type waitGate struct {
	mu sync.Mutex
	ch chan struct{}
}

func newWaitGate() *waitGate {
	return &waitGate{ch: make(chan struct{})}
}

// wait blocks until empty returns false, rechecking it every time it
// wakes (and once before ever blocking). Returns immediately if g is nil
// (wait support disabled).
func (g *waitGate) wait(empty func() bool) {
	if g == nil {
		return
	}
	g.mu.Lock()
	for empty() {
		ch := g.ch
		g.mu.Unlock()
		<-ch
		g.mu.Lock()
	}
	g.mu.Unlock()
}

// notify wakes every goroutine currently blocked in wait, matching the
// producer's "notify_all after publish" role from spec §5.
func (g *waitGate) notify() {
	if g == nil {
		return
	}
	g.mu.Lock()
	old := g.ch
	g.ch = make(chan struct{})
	g.mu.Unlock()
	close(old)
}
