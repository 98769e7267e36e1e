// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

import "unsafe"

// sliceAddr returns the starting address of buf's backing array. Used
// only to compute alignment padding in [DefaultAllocator]; never used on
// a queue's hot path.
func sliceAddr(buf []byte) uintptr {
	if len(buf) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&buf[0]))
}
