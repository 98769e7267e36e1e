// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq_test

import (
	"fmt"

	"code.hybscloud.com/ringq"
)

func Example_objectSCSP() {
	q := ringq.NewObjectSCSP[string](4)

	for _, s := range []string{"alpha", "beta", "gamma"} {
		s := s
		if err := q.Push(&s); err != nil {
			fmt.Println("push failed:", err)
			return
		}
	}

	q.ConsumeAll(func(s *string) {
		fmt.Println(*s)
	})

	// Output:
	// alpha
	// beta
	// gamma
}

func Example_functionSCSP_invokeOnceDNI() {
	q := ringq.NewFunctionSCSP(4, ringq.InvokeOnceDNI)

	err := q.PushWithDestroy(
		func() { fmt.Println("invoked") },
		func() { fmt.Println("destroyed") },
	)
	if err != nil {
		fmt.Println("push failed:", err)
		return
	}

	iv, err := q.ConsumeDNI()
	if err != nil {
		fmt.Println("consume failed:", err)
		return
	}
	defer iv.Close()
	iv.Call()

	// Output:
	// invoked
	// destroyed
}
