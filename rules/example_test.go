// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package rules_test

import (
	"fmt"

	"github.com/born-ml/chainrules/rules"
)

func ExampleLookupReverse() {
	rr, ok := rules.LookupReverse(rules.Call("sin", rules.Real))
	if !ok {
		panic("no rule")
	}
	y, pullback, err := rr.Apply(rules.Float(0.5))
	if err != nil {
		panic(err)
	}
	grads, err := pullback(rules.Float(1))
	if err != nil {
		panic(err)
	}
	fmt.Printf("%s: y=%.4f dy/dx=%.4f\n", rr.Rule().Key(), y.Re(), grads[0].Re())

	// Output:
	// sin(Number): y=0.4794 dy/dx=0.8776
}

func ExampleLookupForward() {
	fwd, ok := rules.LookupForward(rules.Call("*", rules.Real, rules.Real))
	if !ok {
		panic("no rule")
	}
	y, dy, err := fwd.Apply([]rules.Value{rules.Float(1), rules.Zero()}, rules.Float(3), rules.Float(4))
	if err != nil {
		panic(err)
	}
	fmt.Println(y, dy)

	// Output:
	// 12 4
}
