// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

// bufDescriptor is a slot's splice descriptor into the byte arena (spec
// §3 "Slot ring").
type bufDescriptor struct {
	off uint32
	len uint32
}

// Range identifies a carved-but-not-necessarily-released byte span
// returned by Allocate. Its bytes are only stable until the next Release
// call on the same queue commits past it.
type Range struct {
	off uint32
	len uint32
}

// Len returns the range's length in bytes.
func (r Range) Len() int { return int(r.len) }

// BufferSCSP is a single-producer single-consumer bounded queue of
// variable-length byte buffers carved from a contiguous arena (spec
// §4.7). The index ring holds descriptors; payload bytes live in a
// [code.hybscloud.com]-style circular byte arena.
type BufferSCSP struct {
	core  *scspCore
	desc  []bufDescriptor
	arena *arena
	align uint32
	gate  *waitGate
}

// NewBufferSCSP creates an SCSP buffer queue. capacity rounds up to the
// next power of 2 slots; arenaSize is the byte-arena size; align is the
// default alignment of spans carved from the arena (a power of 2,
// defaults to 8), counted as an offset from the arena's first byte. The
// backing storage itself is requested from the allocator with alignment
// 1, so a span's memory address is aligned only as far as the arena's
// first byte happens to be. The arena's backing storage comes from
// [DefaultAllocator]; use
// [NewBufferSCSPWithAllocator] to supply a different one.
func NewBufferSCSP(capacity, arenaSize, align int) *BufferSCSP {
	return NewBufferSCSPWithAllocator(capacity, arenaSize, align, nil)
}

// NewBufferSCSPWithAllocator creates an SCSP buffer queue whose arena
// storage is carved from alloc (spec §6). A nil alloc behaves like
// [NewBufferSCSP].
func NewBufferSCSPWithAllocator(capacity, arenaSize, align int, alloc Allocator) *BufferSCSP {
	n := uint64(roundToPow2(capacity))
	a := uint32(8)
	if align > 0 {
		a = uint32(align)
		if !isPow2(a) {
			panic("ringq: align must be a power of 2")
		}
	}
	return &BufferSCSP{
		core:  newSCSPCore(n),
		desc:  make([]bufDescriptor, n+1),
		arena: newArena(arenaSize, alloc),
		align: a,
	}
}

// NewBufferSCSPWithWait creates an SCSP buffer queue with wait/notify
// enabled.
func NewBufferSCSPWithWait(capacity, arenaSize, align int) *BufferSCSP {
	q := NewBufferSCSP(capacity, arenaSize, align)
	q.gate = newWaitGate()
	return q
}

// Close returns the arena's backing storage to its allocator. The queue
// must not be used afterward.
func (q *BufferSCSP) Close() { q.arena.close() }

// Cap returns the queue's usable slot capacity.
func (q *BufferSCSP) Cap() int { return int(q.core.ringSize - 1) }

// ArenaCap returns the byte-arena's total size.
func (q *BufferSCSP) ArenaCap() int { return q.arena.cap() }

// Alignment returns the default span alignment within the arena, as set
// at construction (spec §4.2).
func (q *BufferSCSP) Alignment() int { return int(q.align) }

// Wait blocks until the next Release/AllocateAndRelease publishes, or
// returns immediately if the queue was constructed without wait support.
func (q *BufferSCSP) Wait() { q.gate.wait(q.core.empty) }

// resyncArena refreshes the producer's cached arena reclaim point from
// the consumer's current position (spec §4.7 "Consumer-side arena
// reclaim on the producer is implicit").
func (q *BufferSCSP) resyncArena() {
	head := q.core.head.LoadAcquire()
	tail := q.core.tail.LoadRelaxed()
	q.core.cachedHead = head
	if head == tail {
		q.arena.reclaimEmpty()
		return
	}
	d := q.desc[head]
	q.arena.setOut(d.off)
}

// Allocate carves an aligned byte range of exactly size bytes from the
// arena without committing it (spec §4.7). align of 0 uses the queue's
// default alignment. Returns ErrArenaFull if no aligned span is
// available even after a producer-side resync.
func (q *BufferSCSP) Allocate(size int, align int) (Range, []byte, error) {
	a := q.align
	if align > 0 {
		a = uint32(align)
	}
	if !isPow2(a) {
		panic("ringq: align must be a power of 2")
	}
	sp, ok := q.arena.alloc(uint32(size), a)
	if !ok {
		q.resyncArena()
		sp, ok = q.arena.alloc(uint32(size), a)
		if !ok {
			return Range{}, nil, ErrArenaFull
		}
	}
	return Range{off: sp.off, len: sp.len}, q.arena.bytes(sp), nil
}

// Release commits r as the payload of the next slot and publishes it
// (producer only). Returns ErrWouldBlock if the index ring is full.
func (q *BufferSCSP) Release(r Range) error {
	return q.releaseCommitted(r.off, r.len)
}

// AllocateAndRelease carves size bytes, lets build fill (and optionally
// narrow) the range, then commits and publishes whatever build returns.
// build must return a prefix of the slice it is given; the arena's write
// head advances only past the returned length, so any unused tail bytes
// are returned to the arena (spec §4.7).
func (q *BufferSCSP) AllocateAndRelease(size, align int, build func([]byte) []byte) error {
	r, buf, err := q.Allocate(size, align)
	if err != nil {
		return err
	}
	committed := build(buf)
	return q.releaseCommitted(r.off, uint32(len(committed)))
}

func (q *BufferSCSP) releaseCommitted(off, length uint32) error {
	pos, ok := q.core.reserveSlot()
	if !ok {
		return ErrWouldBlock
	}
	q.arena.commit(span{off: off, len: length})
	q.desc[pos] = bufDescriptor{off: off, len: length}
	q.core.publish(pos)
	q.gate.notify()
	return nil
}

// Consume removes one buffer and passes its bytes to fn (consumer only).
// The slice is only valid for the duration of fn; it aliases the arena
// and may be overwritten once the producer reclaims it.
func (q *BufferSCSP) Consume(fn func([]byte)) error {
	pos, ok := q.core.reserveConsume()
	if !ok {
		return ErrWouldBlock
	}
	d := q.desc[pos]
	fn(q.arena.buf[d.off : d.off+d.len])
	q.desc[pos] = bufDescriptor{}
	q.core.advance(pos)
	return nil
}

// ConsumeAll drains every currently visible buffer, calling fn for each
// in FIFO order, and returns the number consumed.
func (q *BufferSCSP) ConsumeAll(fn func([]byte)) int {
	return q.ConsumeN(fn, -1)
}

// ConsumeN drains up to n buffers (or all available, if n < 0).
func (q *BufferSCSP) ConsumeN(fn func([]byte), n int) int {
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
		d := q.desc[pos]
		fn(q.arena.buf[d.off : d.off+d.len])
		q.desc[pos] = bufDescriptor{}
		consumed++
	}
	return int(consumed)
}
