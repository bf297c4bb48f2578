// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides scalar reverse-mode automatic differentiation
// on top of the rule registry.
//
// Example:
//
//	import (
//	    "github.com/born-ml/chainrules/autodiff"
//	    "github.com/born-ml/chainrules/rules"
//	)
//
//	func main() {
//	    tape := autodiff.NewTape()
//	    x := tape.Real(2)
//	    y, _ := tape.Apply("exp", x)
//	    z, _ := tape.Apply("*", x, y) // z = x·exp(x)
//
//	    grads, _ := tape.Backward(z, rules.Float(1))
//	    dx := grads.Of(x) // (1+x)·exp(x)
//	}
package autodiff

import (
	"github.com/born-ml/chainrules/internal/registry"
	"github.com/born-ml/chainrules/internal/rules"
	"github.com/born-ml/chainrules/internal/tape"
)

// Tape records calls for reverse-mode differentiation.
type Tape = tape.Tape

// Var is a value recorded on a tape.
type Var = tape.Var

// Gradients maps recorded variables to their cotangents.
type Gradients = tape.Gradients

// Source resolves reverse rules for a tape.
type Source = tape.Source

// NewTape creates a tape that resolves rules through the process-wide
// registry in its current arithmetic mode.
func NewTape() *Tape {
	return tape.New(registry.LookupReverse)
}

// NewTapeWith creates a tape that resolves rules through src, e.g. a
// specific catalogue's Reverse method.
//
// Example:
//
//	cat := rules.CatalogueFor(rules.Fast)
//	tape := autodiff.NewTapeWith(cat.Reverse)
func NewTapeWith(src Source) *Tape {
	return tape.New(src)
}

// CatalogueSource adapts a catalogue into a Source.
func CatalogueSource(cat *rules.Catalogue) Source {
	return cat.Reverse
}
