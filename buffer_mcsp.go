// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

// BufferMCSP is a single-producer, multi-concurrent-consumer bounded
// queue of variable-length byte buffers (spec §4.4, §4.7).
type BufferMCSP struct {
	core  *mcspCore
	desc  []bufDescriptor
	arena *arena
	align uint32
	gate  *waitGate
}

// NewBufferMCSP creates an MCSP buffer queue with room for up to
// maxReaders concurrent readers. The arena's backing storage comes from
// [DefaultAllocator]; use [NewBufferMCSPWithAllocator] to supply a
// different one.
func NewBufferMCSP(capacity, arenaSize, align, maxReaders int) *BufferMCSP {
	return NewBufferMCSPWithAllocator(capacity, arenaSize, align, maxReaders, nil)
}

// NewBufferMCSPWithAllocator creates an MCSP buffer queue whose arena
// storage is carved from alloc (spec §6). A nil alloc behaves like
// [NewBufferMCSP].
func NewBufferMCSPWithAllocator(capacity, arenaSize, align, maxReaders int, alloc Allocator) *BufferMCSP {
	n := uint64(roundToPow2(capacity))
	a := uint32(8)
	if align > 0 {
		a = uint32(align)
		if !isPow2(a) {
			panic("ringq: align must be a power of 2")
		}
	}
	return &BufferMCSP{
		core:  newMCSPCore(n, maxReaders),
		desc:  make([]bufDescriptor, n+1),
		arena: newArena(arenaSize, alloc),
		align: a,
	}
}

// NewBufferMCSPWithWait creates an MCSP buffer queue with wait/notify
// enabled.
func NewBufferMCSPWithWait(capacity, arenaSize, align, maxReaders int) *BufferMCSP {
	q := NewBufferMCSP(capacity, arenaSize, align, maxReaders)
	q.gate = newWaitGate()
	return q
}

// Close returns the arena's backing storage to its allocator. Every
// [BufferReader] must be dropped before calling Close.
func (q *BufferMCSP) Close() { q.arena.close() }

// Cap returns the queue's usable slot capacity.
func (q *BufferMCSP) Cap() int { return int(q.core.ringSize - 1) }

// ArenaCap returns the byte-arena's total size.
func (q *BufferMCSP) ArenaCap() int { return q.arena.cap() }

// Alignment returns the default span alignment within the arena, as set
// at construction (spec §4.2). As with [NewBufferSCSP], the arena's
// backing storage is requested with alignment 1.
func (q *BufferMCSP) Alignment() int { return int(q.align) }

// Wait blocks until the next Release/AllocateAndRelease publishes, or
// returns immediately if the queue was constructed without wait support.
func (q *BufferMCSP) Wait() { q.gate.wait(q.core.empty) }

// ForceSync bypasses the MCSP sync bottleneck short-circuit (DESIGN.md
// OQ-1) and re-derives arena.out from the forced reclaim point.
func (q *BufferMCSP) ForceSync() {
	q.core.outCache = q.core.forceSync()
	q.refreshArenaOut()
}

func (q *BufferMCSP) refreshArenaOut() {
	ip := q.core.inputPos.LoadAcquire()
	if q.core.outCache == cursorValue(ip) {
		q.arena.reclaimEmpty()
		return
	}
	d := q.desc[q.core.outCache]
	q.arena.setOut(d.off)
}

// resyncArena folds the reader array (spec §4.4 sync) and re-derives the
// arena's reclaim point from the descriptor at the new cache position
// (spec §4.7).
func (q *BufferMCSP) resyncArena() {
	q.core.outCache = q.core.sync()
	q.refreshArenaOut()
}

func (q *BufferMCSP) reserveProducerSlot() (pos uint64, ok bool) {
	ip := q.core.inputPos.LoadRelaxed()
	next := (cursorValue(ip) + 1) % q.core.ringSize
	if next == q.core.outCache {
		q.resyncArena()
		if next == q.core.outCache {
			return 0, false
		}
	}
	return cursorValue(ip), true
}

// Allocate carves an aligned byte range without committing it (producer
// only). Returns ErrArenaFull if no aligned span is available even after
// a producer-side sync.
func (q *BufferMCSP) Allocate(size, align int) (Range, []byte, error) {
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
// (producer only).
func (q *BufferMCSP) Release(r Range) error {
	return q.releaseCommitted(r.off, r.len)
}

// AllocateAndRelease carves size bytes, lets build fill (and optionally
// narrow) the range, then commits and publishes whatever build returns.
func (q *BufferMCSP) AllocateAndRelease(size, align int, build func([]byte) []byte) error {
	r, buf, err := q.Allocate(size, align)
	if err != nil {
		return err
	}
	committed := build(buf)
	return q.releaseCommitted(r.off, uint32(len(committed)))
}

func (q *BufferMCSP) releaseCommitted(off, length uint32) error {
	pos, ok := q.reserveProducerSlot()
	if !ok {
		return ErrWouldBlock
	}
	q.arena.commit(span{off: off, len: length})
	q.desc[pos] = bufDescriptor{off: off, len: length}
	q.core.publish()
	q.gate.notify()
	return nil
}

// GetReader registers and returns a reader handle at the caller-chosen
// index.
func (q *BufferMCSP) GetReader(idx int) (*BufferReader, error) {
	if err := q.core.register(idx); err != nil {
		return nil, err
	}
	return &BufferReader{q: q, idx: idx}, nil
}

// BufferReader is a registered consumer handle for [BufferMCSP].
type BufferReader struct {
	q   *BufferMCSP
	idx int
}

// Drop releases this reader's announce slot.
func (r *BufferReader) Drop() {
	r.q.core.dropReader(r.idx)
}

// Wait blocks until the producer's next publish, or returns immediately
// if the queue was constructed without wait support.
func (r *BufferReader) Wait() { r.q.gate.wait(r.q.core.empty) }

// Consume reserves and consumes one buffer via CAS.
func (r *BufferReader) Consume(fn func([]byte), checkOnce bool) error {
	start, _, ok := r.q.core.reserve(1, checkOnce)
	if !ok {
		return ErrWouldBlock
	}
	q := r.q
	d := q.desc[start]
	fn(q.arena.buf[d.off : d.off+d.len])
	q.core.announce(r.idx, (start+1)%q.core.ringSize)
	return nil
}

// ConsumeAll reserves and consumes every currently reservable buffer.
func (r *BufferReader) ConsumeAll(fn func([]byte)) int {
	return r.ConsumeN(fn, r.q.core.ringSize)
}

// ConsumeN reserves and consumes up to n buffers, announcing once at the
// end of the batch.
func (r *BufferReader) ConsumeN(fn func([]byte), n uint64) int {
	start, count, ok := r.q.core.reserve(n, false)
	if !ok {
		return 0
	}
	q := r.q
	for i := uint64(0); i < count; i++ {
		pos := (start + i) % q.core.ringSize
		d := q.desc[pos]
		fn(q.arena.buf[d.off : d.off+d.len])
	}
	q.core.announce(r.idx, (start+count)%q.core.ringSize)
	return int(count)
}
