// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

import "code.hybscloud.com/atomix"

// scspCore is the SCSP index-ring cursor pair shared by the object,
// buffer, and function SCSP façades (spec §4.3). It carries no payload
// storage of its own — each façade owns its slot slice and calls into
// scspCore purely for position bookkeeping.
//
// Unlike the teacher's [SPSC], which uses monotonically increasing
// counters over a power-of-2 mask (so full/empty never need a sentinel
// slot), scspCore follows spec §3's explicit ring model: N+1 physical
// slots with head/tail values wrapping modulo N+1, the extra slot being
// the sentinel that disambiguates full from empty. This is required by
// spec §3's invariants and by the MCSP tagged-cursor protocol sharing the
// same ring-size convention (spec §4.4 uses the identical N+1 modulus).
type scspCore struct {
	_          pad
	head       atomix.Uint64 // consumer-owned raw index in [0, ringSize)
	_          pad
	cachedTail uint64 // consumer-private mirror of tail
	_          pad
	tail       atomix.Uint64 // producer-owned raw index in [0, ringSize)
	_          pad
	cachedHead uint64 // producer-private mirror of head
	_          pad
	ringSize   uint64 // N+1
}

func newSCSPCore(capacity uint64) *scspCore {
	return &scspCore{ringSize: capacity + 1}
}

// reserveSlot returns the position the producer may write to, refreshing
// the cached consumer mirror once on the one-slot guard (spec §4.3
// "On produce").
func (c *scspCore) reserveSlot() (pos uint64, ok bool) {
	tail := c.tail.LoadRelaxed()
	next := (tail + 1) % c.ringSize
	if next == c.cachedHead {
		c.cachedHead = c.head.LoadAcquire()
		if next == c.cachedHead {
			return 0, false
		}
	}
	return tail, true
}

// publish makes the slot at pos visible to the consumer.
func (c *scspCore) publish(pos uint64) {
	c.tail.StoreRelease((pos + 1) % c.ringSize)
}

// reserveConsume returns the next position to read, refreshing the
// cached producer mirror once if the ring looked empty (spec §4.3 "On
// consume").
func (c *scspCore) reserveConsume() (pos uint64, ok bool) {
	head := c.head.LoadRelaxed()
	if head == c.cachedTail {
		c.cachedTail = c.tail.LoadAcquire()
		if head == c.cachedTail {
			return 0, false
		}
	}
	return head, true
}

// advance releases the slot at pos back to the producer.
func (c *scspCore) advance(pos uint64) {
	c.head.StoreRelease((pos + 1) % c.ringSize)
}

// consumeRange returns the half-open [start, start+n) live range in ring
// order for batch consume operations, loading input_pos once (spec §4.3
// "Batch operations"). The caller iterates in ring order (at most two
// physical segments when the range wraps) and calls advance once at the
// end.
func (c *scspCore) consumeRange() (start, n uint64) {
	head := c.head.LoadRelaxed()
	tail := c.tail.LoadAcquire()
	c.cachedTail = tail
	n = (tail + c.ringSize - head) % c.ringSize
	return head, n
}

// freePrefix exposes the contiguous free prefix [tail, tail+n) that
// EmplaceN hands to its functor, capped at the physical end of the ring
// so the caller always sees a single linear span (spec §4.6).
func (c *scspCore) freePrefix() (start, n uint64) {
	tail := c.tail.LoadRelaxed()
	head := c.head.LoadAcquire()
	c.cachedHead = head
	avail := (head + c.ringSize - tail - 1) % c.ringSize
	n = avail
	if tail+n > c.ringSize {
		n = c.ringSize - tail
	}
	return tail, n
}

// publishN advances tail past a batch of n slots starting at start.
func (c *scspCore) publishN(start, n uint64) {
	c.tail.StoreRelease((start + n) % c.ringSize)
}

// empty reports whether the ring currently holds no elements. Used as the
// wait/notify gate's check-then-block predicate (spec §5).
func (c *scspCore) empty() bool {
	return c.head.LoadAcquire() == c.tail.LoadAcquire()
}
