// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

import (
	"errors"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates the operation cannot proceed immediately.
//
// For Push/Emplace/Release: the index ring is full (backpressure). A
// buffer queue whose arena has no room reports [ErrArenaFull] instead.
// For Consume: the queue is empty, or an MCSP reservation race was lost
// in check-once mode.
//
// ErrWouldBlock is a control flow signal, not a failure. The caller should
// retry the operation later (with backoff or yield) rather than propagating
// the error.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
//
// Example:
//
//	backoff := iox.Backoff{}
//	for {
//	    err := q.Push(&item)
//	    if err == nil {
//	        backoff.Reset()
//	        break
//	    }
//	    if ringq.IsWouldBlock(err) {
//	        backoff.Wait()  // Adaptive backpressure
//	        continue
//	    }
//	    return err  // Unexpected error
//	}
var ErrWouldBlock = iox.ErrWouldBlock

// ErrArenaFull is returned by a buffer queue's Allocate/AllocateAndRelease
// when the byte arena cannot satisfy the requested (size, align) even after
// a producer-side sync. Treat identically to ErrWouldBlock (spec §4.2):
// callers retry after the consumer makes progress.
var ErrArenaFull = errors.New("ringq: arena has no aligned span of the requested size")

// ErrReaderExists is returned by GetReader when the caller-chosen reader
// index is already registered on an MCSP queue. This is a programming
// error, not a control-flow signal — the caller passed the same index to
// GetReader twice concurrently or without dropping the prior handle.
var ErrReaderExists = errors.New("ringq: reader index already registered")

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition,
// such as nil or ErrWouldBlock. Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}
