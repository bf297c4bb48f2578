package rules

import (
	"fmt"
	"strings"

	"github.com/born-ml/chainrules/internal/scalar"
)

// Signature identifies a function by symbol, arity and argument domains.
//
// When Variadic is set the last entry of Args repeats: the signature accepts
// len(Args) or more arguments.
type Signature struct {
	Func     string
	Args     []scalar.Domain
	Variadic bool
}

// Sig builds a fixed-arity signature.
func Sig(fn string, args ...scalar.Domain) Signature {
	return Signature{Func: fn, Args: args}
}

// VarSig builds a variadic signature whose last domain repeats.
func VarSig(fn string, args ...scalar.Domain) Signature {
	return Signature{Func: fn, Args: args, Variadic: true}
}

// Call builds the concrete signature of a call site. Arguments should carry
// Real, Complex or Discrete tags.
func Call(fn string, args ...scalar.Domain) Signature {
	return Sig(fn, args...)
}

// Key returns the canonical catalogue key, e.g. "atan(Real, Real)" or
// "+(Number...)".
func (s Signature) Key() string {
	var b strings.Builder
	b.WriteString(s.Func)
	b.WriteByte('(')
	for i, d := range s.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(d.String())
	}
	if s.Variadic {
		b.WriteString("...")
	}
	b.WriteByte(')')
	return b.String()
}

// String implements fmt.Stringer.
func (s Signature) String() string {
	return s.Key()
}

// Arity returns the fixed argument count, or the minimum for variadic
// signatures.
func (s Signature) Arity() int {
	return len(s.Args)
}

// ArgDomain returns the declared domain of argument i.
func (s Signature) ArgDomain(i int) scalar.Domain {
	if i >= len(s.Args) {
		if !s.Variadic || len(s.Args) == 0 {
			return scalar.Discrete
		}
		return s.Args[len(s.Args)-1]
	}
	return s.Args[i]
}

// Accepts reports whether a call with the given concrete signature
// dispatches to s.
func (s Signature) Accepts(call Signature) bool {
	if call.Func != s.Func {
		return false
	}
	n := len(call.Args)
	if s.Variadic {
		if n < len(s.Args) {
			return false
		}
	} else if n != len(s.Args) {
		return false
	}
	for i, d := range call.Args {
		if !s.ArgDomain(i).Accepts(d) {
			return false
		}
	}
	return true
}

// specificity ranks signatures accepting the same call: concrete domains
// beat Number, fixed arity beats variadic.
func (s Signature) specificity() int {
	score := 0
	for _, d := range s.Args {
		if d != scalar.Number {
			score += 2
		}
	}
	if !s.Variadic {
		score++
	}
	return score
}

// EvalDomain returns the domain kernels run in for a call.
func (s Signature) EvalDomain() scalar.Domain {
	return scalar.Join(s.Args...)
}

// ParseSignature is the inverse of Signature.Key.
func ParseSignature(s string) (Signature, error) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '(')
	if open <= 0 || !strings.HasSuffix(s, ")") {
		return Signature{}, fmt.Errorf("signature %q: want fn(Domain, ...)", s)
	}
	sig := Signature{Func: s[:open]}
	body := strings.TrimSpace(s[open+1 : len(s)-1])
	if body == "" {
		return sig, nil
	}
	if rest, ok := strings.CutSuffix(body, "..."); ok {
		sig.Variadic = true
		body = rest
	}
	for _, part := range strings.Split(body, ",") {
		d, err := scalar.ParseDomain(strings.TrimSpace(part))
		if err != nil {
			return Signature{}, fmt.Errorf("signature %q: %w", s, err)
		}
		sig.Args = append(sig.Args, d)
	}
	return sig, nil
}
