package scalar

import (
	"fmt"
	"strings"
)

// Domain tags an argument of a rule signature.
type Domain uint8

// Argument domains.
const (
	// Number accepts either a real or a complex argument.
	Number Domain = iota
	// Real accepts only real arguments.
	Real
	// Complex accepts only complex arguments.
	Complex
	// Discrete marks a non-differentiable argument (e.g. a rounding mode).
	// Its cotangent slot always holds None.
	Discrete
)

var domainNames = [...]string{
	Number:   "Number",
	Real:     "Real",
	Complex:  "Complex",
	Discrete: "Discrete",
}

// String implements fmt.Stringer.
func (d Domain) String() string {
	if int(d) < len(domainNames) {
		return domainNames[d]
	}
	return fmt.Sprintf("Domain(%d)", d)
}

// ParseDomain is the inverse of Domain.String.
func ParseDomain(s string) (Domain, error) {
	for d, name := range domainNames {
		if strings.EqualFold(s, name) {
			return Domain(d), nil
		}
	}
	return 0, fmt.Errorf("unknown domain %q", s)
}

// Accepts reports whether an argument tagged with the concrete domain c may
// be passed where d is declared.
func (d Domain) Accepts(c Domain) bool {
	switch d {
	case Number:
		return c == Real || c == Complex || c == Number
	default:
		return d == c
	}
}

// Differentiable reports whether arguments of this domain receive
// sensitivities.
func (d Domain) Differentiable() bool {
	return d != Discrete
}

// Join returns the evaluation domain for a call whose arguments carry the
// given tags: Complex if any differentiable argument is complex (or only
// declared as Number), otherwise Real.
func Join(ds ...Domain) Domain {
	out := Real
	for _, d := range ds {
		if d == Complex || d == Number {
			out = Complex
		}
	}
	return out
}
