// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package rules provides differentiation rules for elementary scalar
// functions.
//
// Every function has a forward rule (tangent propagation) and a reverse rule
// (primal plus pullback). Each rule exists in a standard and a relaxed
// arithmetic ("fast") flavor; the ambient mode selects which one lookups
// return.
//
// Example:
//
//	import "github.com/born-ml/chainrules/rules"
//
//	func main() {
//	    rr, ok := rules.LookupReverse(rules.Call("sin", rules.Real))
//	    if !ok {
//	        panic("no rule")
//	    }
//	    y, pullback, _ := rr.Apply(rules.Float(0.5))
//	    grads, _ := pullback(rules.Float(1)) // [cos(0.5)]
//	    _, _ = y, grads
//	}
package rules

import (
	"github.com/born-ml/chainrules/internal/registry"
	"github.com/born-ml/chainrules/internal/rules"
	"github.com/born-ml/chainrules/internal/scalar"
)

// Value is a scalar number or a zero/no-tangent sentinel.
type Value = scalar.Value

// Domain tags an argument of a signature.
type Domain = scalar.Domain

// Argument domains.
const (
	Number   = scalar.Number
	Real     = scalar.Real
	Complex  = scalar.Complex
	Discrete = scalar.Discrete
)

// Float wraps a real number.
func Float(x float64) Value { return scalar.Float(x) }

// Cmplx builds re + im*i.
func Cmplx(re, im float64) Value { return scalar.Cmplx(re, im) }

// Zero returns the absorbing zero tangent.
func Zero() Value { return scalar.Zero() }

// None returns the no-tangent placeholder.
func None() Value { return scalar.None() }

// Project fits a raw cotangent onto an argument of domain d.
func Project(d Domain, v Value) Value { return scalar.Project(d, v) }

// Signature identifies a function by symbol, arity and argument domains.
type Signature = rules.Signature

// Call builds the concrete signature of a call site.
func Call(fn string, args ...Domain) Signature { return rules.Call(fn, args...) }

// ParseSignature parses keys such as "atan(Real, Real)".
func ParseSignature(s string) (Signature, error) { return rules.ParseSignature(s) }

// Rule is a declared differentiation rule.
type Rule = rules.Rule

// Catalogue is an immutable set of rules keyed by signature.
type Catalogue = rules.Catalogue

// ForwardRule pushes argument tangents through one call.
type ForwardRule = rules.ForwardRule

// ReverseRule computes a call's primal and its pullback.
type ReverseRule = rules.ReverseRule

// PartialsRule returns raw partial derivatives for a known primal.
type PartialsRule = rules.PartialsRule

// Pullback maps an output cotangent to per-argument cotangents.
type Pullback = rules.Pullback

// RuleError reports a defect in one rule's declaration or evaluation.
type RuleError = rules.RuleError

// Errors returned by rule application.
var (
	ErrArity  = rules.ErrArity
	ErrDomain = rules.ErrDomain
	ErrNoRule = rules.ErrNoRule
)

// Mode selects which catalogue lookups consult.
type Mode = registry.Mode

// Arithmetic modes.
const (
	Standard = registry.Standard
	Fast     = registry.Fast
)

// ParseMode parses "standard" or "fast".
func ParseMode(s string) (Mode, error) { return registry.ParseMode(s) }

// SetMode changes the process-wide arithmetic mode.
func SetMode(m Mode) { registry.SetMode(m) }

// CurrentMode returns the process-wide arithmetic mode.
func CurrentMode() Mode { return registry.CurrentMode() }

// Init builds and validates both catalogues. Lookups call it implicitly;
// calling it first surfaces a configuration defect as an error instead of
// a panic.
func Init() error { return registry.Default().Init() }

// CatalogueFor returns the published catalogue for m.
func CatalogueFor(m Mode) *Catalogue { return registry.Default().Catalogue(m) }

// LookupForward returns the forward rule for call in the current mode.
func LookupForward(call Signature) (ForwardRule, bool) { return registry.LookupForward(call) }

// LookupReverse returns the reverse rule for call in the current mode.
func LookupReverse(call Signature) (ReverseRule, bool) { return registry.LookupReverse(call) }

// LookupDerivatives returns the partials rule for call in the current mode.
func LookupDerivatives(call Signature) (PartialsRule, bool) { return registry.LookupDerivatives(call) }
