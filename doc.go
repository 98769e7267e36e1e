// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ringq provides fixed-capacity, in-process ring-buffer queues
// over three payload shapes, each in a single-producer single-consumer
// (SCSP) and a single-producer multi-concurrent-consumer (MCSP) variant:
//
//   - Object queues: in-place-constructed values of a fixed type.
//   - Buffer queues: variable-length byte spans carved from a shared
//     circular arena.
//   - Function queues: erased callables invoked under one of three call
//     modes ([InvokeOnce], [InvokeOnceDNI], [InvokeMultiple]).
//
// # Quick Start
//
//	q := ringq.NewObjectSCSP[Event](1024)
//
//	if err := q.Push(&ev); err != nil {
//	    // ringq.IsWouldBlock(err) == true: queue is full
//	}
//
//	err := q.Consume(func(e *Event) {
//	    handle(e)
//	})
//
// # SCSP and MCSP
//
// SCSP queues assume exactly one producer goroutine and one consumer
// goroutine; violating that constraint is undefined behavior, the same
// as the teacher's SPSC. MCSP queues assume one producer and any number
// of concurrent consumers, each registered up front via GetReader:
//
//	q := ringq.NewObjectMCSP[Job](4096, 8) // capacity 4096, up to 8 readers
//
//	r0, _ := q.GetReader(0)
//	r1, _ := q.GetReader(1)
//
//	go func() {
//	    defer r0.Drop()
//	    for {
//	        if err := r0.Consume(process, false); ringq.IsWouldBlock(err) {
//	            continue
//	        }
//	    }
//	}()
//
// Every registered reader must eventually call Drop, or the producer's
// sync fold will treat it as permanently live and refuse to reclaim past
// it.
//
// # Buffer Queues
//
// Buffer queues couple the index ring with a circular byte arena:
//
//	q := ringq.NewBufferSCSP(1024, 1<<20, 8) // 1024 slots, 1 MiB arena
//
//	err := q.AllocateAndRelease(len(payload), 8, func(dst []byte) []byte {
//	    return dst[:copy(dst, payload)]
//	})
//
//	q.Consume(func(b []byte) {
//	    // b aliases the arena; only valid for the duration of the call
//	})
//
// A buffer queue's arena storage is carved from an [Allocator], obtained
// once at construction time and released once by Close. The default,
// [DefaultAllocator], uses plain Go allocation; callers with a huge-page
// or mmap-backed pool can supply their own via
// [NewBufferSCSPWithAllocator] or [NewBufferMCSPWithAllocator]:
//
//	q := ringq.NewBufferSCSPWithAllocator(1024, 1<<20, 8, myPoolAllocator)
//	defer q.Close()
//
// # Function Queues
//
// Function queues erase a callable's environment into a Go closure
// rather than a raw arena pointer, since Go cannot safely invoke an
// arbitrary function pointer against caller-supplied bytes the way the
// spec's originating model does (see DESIGN.md). The call mode is fixed
// at construction and dictates which Consume variant applies:
//
//	q := ringq.NewFunctionSCSP(256, ringq.InvokeOnceDNI)
//	q.PushWithDestroy(func() { fmt.Println("fired") }, releaseResource)
//
//	iv, err := q.ConsumeDNI()
//	if err == nil {
//	    defer iv.Close()
//	    iv.Call()
//	}
//
// # Error Handling
//
// Operations that cannot proceed return [ErrWouldBlock], sourced from
// [code.hybscloud.com/iox] for ecosystem consistency:
//
//	err := q.Push(&item)
//	if ringq.IsWouldBlock(err) {
//	    // full; caller decides whether to spin, back off, or drop
//	}
//
// [IsWouldBlock], [IsSemantic], and [IsNonFailure] delegate to iox's
// classification helpers so callers can treat ringq errors uniformly
// with any other iox-based library in the same process.
//
// # Capacity
//
// Every constructor rounds its capacity argument up to the next power of
// 2; the ring physically allocates one extra sentinel slot so a full
// ring is always distinguishable from an empty one without a separate
// counter.
//
// # The MCSP Sync Bottleneck
//
// A producer only re-derives its reclaim point when it hits the ring's
// one-slot guard, folding every registered reader's announced position
// down to a minimum. If a reader is announcing exactly the position from
// the previous fold, that reader is treated as the bottleneck and the
// fold aborts without progress — this is deliberate (it avoids reclaiming
// past a reader that has not actually consumed anything new), but it
// means a permanently stalled reader that is never Dropped can starve
// the producer indefinitely. [ObjectMCSP.ForceSync] and its buffer- and
// function-queue equivalents bypass the short-circuit for callers who
// have independently confirmed the stalled reader will not resume.
//
// # Wait/Notify
//
// Every queue has a WithWait constructor (e.g. [NewObjectSCSPWithWait])
// that enables a broadcast-by-closed-channel wait gate: a consumer
// blocked on an empty queue can park on it instead of spinning, and the
// producer wakes every waiter on each successful publish. Queues built
// without WithWait carry a nil gate, making wait/notify calls no-ops, so
// the busy-poll and blocking styles share one code path.
//
// # Race Detection
//
// Go's race detector tracks explicit synchronization primitives (mutex,
// channel, WaitGroup) but cannot observe happens-before relationships
// established purely through atomic acquire-release orderings. The
// tagged-cursor CAS protocol here is correct under the memory model but
// may still surface false positives under -race; the multi-reader tests
// that drive it under real contention check [RaceEnabled] and skip
// themselves rather than run under the detector, mirroring the teacher's
// own high-contention tests.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/atomix] for atomic primitives with explicit memory
// ordering, and [code.hybscloud.com/spin] for CAS-retry backoff.
package ringq
