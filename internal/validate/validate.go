// Package validate checks that a relaxed-arithmetic catalogue really differs
// from the standard one it was derived from.
//
// A rule whose relaxed copy is structurally identical to the original holds
// no operator the transformer could rewrite, so the relaxed catalogue would
// silently run it at full precision. Such rules are configuration defects.
package validate

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/multierr"

	"github.com/born-ml/chainrules/internal/ir"
	"github.com/born-ml/chainrules/internal/rules"
)

// Defect kinds.
const (
	KindUnchanged  = "unchanged"  // relaxed rule identical to the original
	KindMissing    = "missing"    // key absent from the relaxed catalogue
	KindUnexpected = "unexpected" // key absent from the standard catalogue
)

// Defect is one offending signature.
type Defect struct {
	Kind string
	Key  string
	Pos  ir.Pos
}

// Error implements the error interface.
func (d *Defect) Error() string {
	return fmt.Sprintf("%s: %s (declared at %s)", d.Kind, d.Key, d.Pos)
}

// ConfigError enumerates every defect found by Check. It is not recoverable:
// the registry refuses to publish catalogues that fail the check.
type ConfigError struct {
	Defects []*Defect
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "rule catalogue configuration: %d defective signature(s)", len(e.Defects))
	for _, d := range e.Defects {
		b.WriteString("\n\t")
		b.WriteString(d.Error())
	}
	return b.String()
}

// Keys returns the offending signature keys.
func (e *ConfigError) Keys() []string {
	out := make([]string, len(e.Defects))
	for i, d := range e.Defects {
		out[i] = d.Key
	}
	return out
}

// Unwrap exposes the individual defects to errors.Is and errors.As.
func (e *ConfigError) Unwrap() []error {
	out := make([]error, len(e.Defects))
	for i, d := range e.Defects {
		out[i] = d
	}
	return out
}

// compareOpts ignores source positions and treats NaN constants as equal.
var compareOpts = cmp.Options{
	cmpopts.IgnoreFields(ir.Node{}, "Pos"),
	cmpopts.IgnoreFields(rules.Rule{}, "Pos"),
	cmp.Comparer(func(a, b complex128) bool {
		return sameFloat(real(a), real(b)) && sameFloat(imag(a), imag(b))
	}),
}

func sameFloat(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}

// Identical reports whether two rules are structurally identical, ignoring
// source positions.
func Identical(a, b *rules.Rule) bool {
	return cmp.Equal(a, b, compareOpts)
}

// Diff renders the structural difference between two rules.
func Diff(a, b *rules.Rule) string {
	return cmp.Diff(a, b, compareOpts)
}

// Check compares the standard and relaxed catalogues. It returns a
// *ConfigError listing every key present in only one catalogue and every
// rule whose relaxed copy is identical to the original, or nil.
func Check(std, fast *rules.Catalogue) error {
	var errs error
	stdKeys, fastKeys := std.Keys(), fast.Keys()
	inFast := make(map[string]bool, len(fastKeys))
	for _, k := range fastKeys {
		inFast[k] = true
	}
	for _, k := range stdKeys {
		r, _ := std.Rule(k)
		if !inFast[k] {
			errs = multierr.Append(errs, &Defect{Kind: KindMissing, Key: k, Pos: r.Pos})
			continue
		}
		delete(inFast, k)
		f, _ := fast.Rule(k)
		if Identical(r, f) {
			errs = multierr.Append(errs, &Defect{Kind: KindUnchanged, Key: k, Pos: r.Pos})
		}
	}
	for _, k := range fastKeys {
		if inFast[k] {
			f, _ := fast.Rule(k)
			errs = multierr.Append(errs, &Defect{Kind: KindUnexpected, Key: k, Pos: f.Pos})
		}
	}
	if errs == nil {
		return nil
	}
	cfg := &ConfigError{}
	for _, err := range multierr.Errors(errs) {
		cfg.Defects = append(cfg.Defects, err.(*Defect))
	}
	return cfg
}
