// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// maxPos is the per-reader sentinel meaning "vacant" (spec §3 "Per-reader
// slot"). It is larger than any real ring position, so a fold that takes
// a minimum over live positions can skip it with a plain equality check.
const maxPos = ^uint64(0)

// readerSlot is one entry of the MCSP per-reader announce array,
// cache-line isolated the way the teacher isolates every independently
// contended atomic (spec §5 "shared resource policy": "the per-reader
// array's entries each occupy one line").
type readerSlot struct {
	_          pad
	pos        atomix.Uint64
	registered atomix.Uint32
	_          padShort
}

// mcspCore is the MCSP index-ring cursor protocol shared by the object,
// buffer, and function MCSP façades (spec §4.4). It has no payload
// storage of its own.
//
// This is the one piece of the module with no direct teacher analogue:
// the teacher's MPMC/SPMC use blind FAA plus cycle validation (SCQ),
// never a per-reader announce array. mcspCore instead implements the
// spec's own protocol — tagged CAS reservation, deferred announce,
// producer-side minimum-position sync — carried in the teacher's
// structural idiom (padding, spin-backoff CAS retry, atomix ordering).
type mcspCore struct {
	_        pad
	outputPos atomix.Uint64 // tagged cursor, CAS'd by reserving consumers
	_        pad
	inputPos  atomix.Uint64 // tagged cursor, producer-owned
	_        pad
	outCache uint64 // producer-private cached reclaim point ("prev" in spec §4.4 sync)
	_        pad
	readers  []readerSlot
	ringSize uint64 // N+1
}

func newMCSPCore(capacity uint64, maxReaders int) *mcspCore {
	if maxReaders < 0 {
		maxReaders = 0
	}
	return &mcspCore{
		readers:  make([]readerSlot, maxReaders),
		ringSize: capacity + 1,
	}
}

// register makes reader idx live, storing the current output position
// into its announce slot with relaxed order (spec §4.4 "Reader
// registration": "This makes the reader live before it attempts any
// reservation").
func (c *mcspCore) register(idx int) error {
	if idx < 0 || idx >= len(c.readers) {
		panic("ringq: reader index out of range")
	}
	if !c.readers[idx].registered.CompareAndSwapAcqRel(0, 1) {
		return ErrReaderExists
	}
	c.readers[idx].pos.StoreRelaxed(cursorValue(c.outputPos.LoadRelaxed()))
	return nil
}

// dropReader releases reader idx's announce slot to the vacant sentinel
// (spec §4.4 "Reader drop").
func (c *mcspCore) dropReader(idx int) {
	c.readers[idx].pos.StoreRelease(maxPos)
	c.readers[idx].registered.StoreRelease(0)
}

// announce publishes a reader's advance so a future sync can reclaim
// past it (spec §4.4 "Consumption", the release/deferred-release split).
func (c *mcspCore) announce(idx int, pos uint64) {
	c.readers[idx].pos.StoreRelease(pos)
}

// empty reports whether no consumer currently has anything left to
// reserve. Used as the wait/notify gate's check-then-block predicate
// (spec §5); it is the same shared cursor pair reserve itself checks, so
// it applies equally to the producer-facing Wait and to any reader's.
func (c *mcspCore) empty() bool {
	return cursorsEmpty(c.outputPos.LoadAcquire(), c.inputPos.LoadAcquire())
}

// reserve attempts to claim up to n slots starting at the current output
// position, following spec §4.4's reserve-one/-all/-n algorithm. checkOnce
// distinguishes a single CAS attempt from retry-until-drained.
//
// On success it returns the starting position and the number of slots
// claimed (which may be less than n if fewer are available). On failure
// (empty ring, or a lost CAS race under checkOnce) ok is false.
func (c *mcspCore) reserve(n uint64, checkOnce bool) (start, count uint64, ok bool) {
	sw := spin.Wait{}
	for {
		op := c.outputPos.LoadRelaxed()
		ip := c.inputPos.LoadAcquire()
		if cursorsEmpty(op, ip) {
			return 0, 0, false
		}

		avail := (cursorValue(ip) + c.ringSize - cursorValue(op)) % c.ringSize
		if avail == 0 {
			return 0, 0, false
		}
		take := n
		if take > avail {
			take = avail
		}

		nextValue := (cursorValue(op) + take) % c.ringSize
		// The tag is re-synchronized to input_pos's tag here, closing the
		// tag-lap window (spec §4.4 step 3).
		newOut := sameTag(ip, nextValue)
		if c.outputPos.CompareAndSwapAcqRel(op, newOut) {
			return cursorValue(op), take, true
		}
		if checkOnce {
			return 0, 0, false
		}
		sw.Once()
	}
}

// publish makes the reserved producer slot visible, advancing input_pos
// with release ordering and bumping its tag (spec §4.4 "Publish"). When
// the tag wraps to zero, output_pos's tag bits are cleared so consumer
// comparisons stay consistent with the freshly wrapped input_pos.
func (c *mcspCore) publish() {
	ip := c.inputPos.LoadRelaxed()
	nextValue := (cursorValue(ip) + 1) % c.ringSize
	newIn := incrTag(ip, nextValue)
	c.inputPos.StoreRelease(newIn)
	if cursorTag(newIn) == 0 {
		c.clearOutputTag()
	}
}

// freePrefix exposes the contiguous free prefix starting at the
// producer's current position, capped at the physical end of the ring,
// syncing the cached reclaim point if the ring looks full (mirrors
// scspCore.freePrefix; MCSP's producer side is still single-writer, so
// the same contiguous-prefix batch emplace applies, spec §4.6).
func (c *mcspCore) freePrefix() (start, n uint64) {
	ip := c.inputPos.LoadRelaxed()
	start = cursorValue(ip)
	avail := (c.outCache + c.ringSize - start - 1) % c.ringSize
	if avail == 0 {
		c.outCache = c.sync()
		avail = (c.outCache + c.ringSize - start - 1) % c.ringSize
	}
	n = avail
	if start+n > c.ringSize {
		n = c.ringSize - start
	}
	return start, n
}

// publishN is the batch form of publish, advancing input_pos by n slots
// in one step.
func (c *mcspCore) publishN(start, n uint64) {
	ip := c.inputPos.LoadRelaxed()
	nextValue := (start + n) % c.ringSize
	newIn := incrTag(ip, nextValue)
	c.inputPos.StoreRelease(newIn)
	if cursorTag(newIn) == 0 {
		c.clearOutputTag()
	}
}

// clearOutputTag atomically masks the tag bits out of output_pos. atomix
// has no fetch-and primitive, so this is expressed as a CAS retry loop —
// the same shape the teacher uses for every other producer-side
// read-modify-write (e.g. mpsc_compact.go's tail advance).
func (c *mcspCore) clearOutputTag() {
	sw := spin.Wait{}
	for {
		op := c.outputPos.LoadAcquire()
		cleared := op &^ uint64(tagMask)
		if op == cleared {
			return
		}
		if c.outputPos.CompareAndSwapAcqRel(op, cleared) {
			return
		}
		sw.Once()
	}
}

// tryReserveProducerSlot returns the position the producer may write to,
// consulting the cached reclaim point and falling back to sync when the
// one-slot guard is hit (spec §4.2 "callers must treat this identically
// to index ring full and may trigger a producer-side sync before
// retrying").
func (c *mcspCore) tryReserveProducerSlot() (pos uint64, ok bool) {
	ip := c.inputPos.LoadRelaxed()
	next := (cursorValue(ip) + 1) % c.ringSize
	if next == c.outCache {
		c.outCache = c.sync()
		if next == c.outCache {
			return 0, false
		}
	}
	return cursorValue(ip), true
}

// sync folds the per-reader announce array down to the minimum
// reclaimable position, per spec §4.4 "Sync". It runs only when the
// producer hits the one-slot guard and is O(max readers).
//
// The bottleneck short-circuit (spec §9 Open Question) is preserved as
// specified: a reader still announcing exactly the previous cache value
// aborts the fold with no progress, since that reader is the bottleneck
// and has not moved since the last sync. Callers that hit sustained
// starvation from this can use a queue's ForceSync method (backed by
// forceSync) instead.
func (c *mcspCore) sync() uint64 {
	cp := cursorValue(c.outputPos.LoadAcquire())
	prev := c.outCache
	if cp == prev {
		return prev
	}

	haveGpos, minGpos := false, uint64(0)
	haveLpos, minLpos := false, uint64(0)
	for i := range c.readers {
		pos := c.readers[i].pos.LoadAcquire()
		if pos == maxPos {
			continue
		}
		if pos == prev {
			return prev // bottleneck: this reader hasn't moved since last sync
		}
		if pos > prev {
			if !haveGpos || pos < minGpos {
				minGpos, haveGpos = pos, true
			}
		} else {
			if !haveLpos || pos < minLpos {
				minLpos, haveLpos = pos, true
			}
		}
	}

	if haveGpos {
		return minGpos
	}
	if haveLpos {
		return minLpos
	}
	// No live readers hold a position behind cp: safe to reclaim fully.
	return cp
}

// forceSync is the unconditional-fold alternative spec §9 raises for the
// bottleneck short-circuit: it ignores a reader parked exactly at the
// previous cache value and reclaims as far as every other live reader
// allows. Use only when the caller has independently determined the
// stalled reader will make no further progress (e.g. it is being torn
// down) — forcing past a reader that later resumes reading is a
// correctness violation of spec §8 property 6 (destructor exactness).
func (c *mcspCore) forceSync() uint64 {
	cp := cursorValue(c.outputPos.LoadAcquire())
	prev := c.outCache
	if cp == prev {
		return prev
	}

	haveGpos, minGpos := false, uint64(0)
	haveLpos, minLpos := false, uint64(0)
	for i := range c.readers {
		pos := c.readers[i].pos.LoadAcquire()
		if pos == maxPos || pos == prev {
			continue
		}
		if pos > prev {
			if !haveGpos || pos < minGpos {
				minGpos, haveGpos = pos, true
			}
		} else {
			if !haveLpos || pos < minLpos {
				minLpos, haveLpos = pos, true
			}
		}
	}
	if haveGpos {
		return minGpos
	}
	if haveLpos {
		return minLpos
	}
	return cp
}
