// Package fastmath derives the relaxed-arithmetic copy of a rule catalogue.
//
// The derivation is a plain operator substitution over each rule's ir
// bodies, driven by a Table. Control flow, branch conditions, operand order
// and setup bindings are kept as they are.
package fastmath

import (
	"fmt"
	"sort"

	"github.com/born-ml/chainrules/internal/ir"
	"github.com/born-ml/chainrules/internal/rules"
)

// Table maps precision-sensitive operators to their relaxed counterparts.
type Table map[ir.Op]ir.Op

// DefaultTable returns the registered substitutions.
func DefaultTable() Table {
	return Table{
		ir.OpAdd:    ir.OpAddFast,
		ir.OpSub:    ir.OpSubFast,
		ir.OpMul:    ir.OpMulFast,
		ir.OpDiv:    ir.OpDivFast,
		ir.OpNeg:    ir.OpNegFast,
		ir.OpInv:    ir.OpInvFast,
		ir.OpPow:    ir.OpPowFast,
		ir.OpSqrt:   ir.OpSqrtFast,
		ir.OpCbrt:   ir.OpCbrtFast,
		ir.OpAbs:    ir.OpAbsFast,
		ir.OpAbs2:   ir.OpAbs2Fast,
		ir.OpConj:   ir.OpConjFast,
		ir.OpAngle:  ir.OpAngleFast,
		ir.OpSign:   ir.OpSignFast,
		ir.OpHypot:  ir.OpHypotFast,
		ir.OpMax:    ir.OpMaxFast,
		ir.OpMin:    ir.OpMinFast,
		ir.OpMod:    ir.OpModFast,
		ir.OpSin:    ir.OpSinFast,
		ir.OpCos:    ir.OpCosFast,
		ir.OpSinCos: ir.OpSinCosFast,
		ir.OpTan:    ir.OpTanFast,
		ir.OpAsin:   ir.OpAsinFast,
		ir.OpAcos:   ir.OpAcosFast,
		ir.OpAtan:   ir.OpAtanFast,
		ir.OpAtan2:  ir.OpAtan2Fast,
		ir.OpSinh:   ir.OpSinhFast,
		ir.OpCosh:   ir.OpCoshFast,
		ir.OpTanh:   ir.OpTanhFast,
		ir.OpExp:    ir.OpExpFast,
		ir.OpExp2:   ir.OpExp2Fast,
		ir.OpExp10:  ir.OpExp10Fast,
		ir.OpExpm1:  ir.OpExpm1Fast,
		ir.OpLog:    ir.OpLogFast,
		ir.OpLog2:   ir.OpLog2Fast,
		ir.OpLog10:  ir.OpLog10Fast,
		ir.OpLog1p:  ir.OpLog1pFast,
		ir.OpEq:     ir.OpEqFast,
		ir.OpLt:     ir.OpLtFast,
		ir.OpGt:     ir.OpGtFast,
		ir.OpLe:     ir.OpLeFast,
		ir.OpGe:     ir.OpGeFast,
	}
}

// Validate checks that every substitution maps a standard operator to a
// relaxed one with the same arity and class.
func (t Table) Validate() error {
	froms := make([]ir.Op, 0, len(t))
	for from := range t {
		froms = append(froms, from)
	}
	sort.Slice(froms, func(i, j int) bool { return froms[i] < froms[j] })
	for _, from := range froms {
		to := t[from]
		switch {
		case !from.Valid() || !to.Valid():
			return fmt.Errorf("fastmath: invalid substitution %v -> %v", from, to)
		case from.Fast() || !to.Fast():
			return fmt.Errorf("fastmath: %v -> %v must map a standard operator to a relaxed one", from, to)
		case from.Arity() != to.Arity() || from.Class() != to.Class():
			return fmt.Errorf("fastmath: %v -> %v changes arity or class", from, to)
		}
	}
	return nil
}

// Op returns the substitute for op, or op itself.
func (t Table) Op(op ir.Op) ir.Op {
	if to, ok := t[op]; ok {
		return to
	}
	return op
}

// Rule returns the relaxed copy of r. r is not modified.
func (t Table) Rule(r *rules.Rule) *rules.Rule {
	cp := r.Rewrite(func(n *ir.Node) *ir.Node {
		n.Op = t.Op(n.Op)
		return n
	})
	if cp.Split != nil {
		cp.Split.Callee = t.Op(cp.Split.Callee)
	}
	return cp
}

// Transform returns a new catalogue holding the relaxed copy of every rule
// of cat, under the same keys. cat is not modified and the result depends
// only on cat and t.
func Transform(cat *rules.Catalogue, t Table) (*rules.Catalogue, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	src := cat.Rules()
	out := make([]*rules.Rule, len(src))
	for i, r := range src {
		out[i] = t.Rule(r)
	}
	fast, err := rules.NewCatalogue(out...)
	if err != nil {
		return nil, fmt.Errorf("fastmath: %w", err)
	}
	return fast, nil
}
