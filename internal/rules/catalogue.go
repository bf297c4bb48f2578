package rules

import (
	"sort"
)

// Catalogue is an immutable set of rules keyed by signature.
type Catalogue struct {
	rules  map[string]*Rule
	byFunc map[string][]*Rule
	keys   []string
}

// NewCatalogue checks every rule and indexes them. Duplicate keys and
// malformed rules are errors.
func NewCatalogue(rs ...*Rule) (*Catalogue, error) {
	c := &Catalogue{
		rules:  make(map[string]*Rule, len(rs)),
		byFunc: make(map[string][]*Rule),
	}
	for _, r := range rs {
		key := r.Key()
		if _, dup := c.rules[key]; dup {
			return nil, &RuleError{Key: key, Details: "declared twice", Err: ErrDuplicate}
		}
		if err := r.Check(); err != nil {
			return nil, err
		}
		c.rules[key] = r
		c.byFunc[r.Sig.Func] = append(c.byFunc[r.Sig.Func], r)
		c.keys = append(c.keys, key)
	}
	sort.Strings(c.keys)
	for _, group := range c.byFunc {
		sort.SliceStable(group, func(i, j int) bool {
			si, sj := group[i].Sig.specificity(), group[j].Sig.specificity()
			if si != sj {
				return si > sj
			}
			return group[i].Key() < group[j].Key()
		})
	}
	return c, nil
}

// MustCatalogue is like NewCatalogue but panics on error. It is meant for
// static declarations.
func MustCatalogue(rs ...*Rule) *Catalogue {
	c, err := NewCatalogue(rs...)
	if err != nil {
		panic(err)
	}
	return c
}

// Len returns the number of rules.
func (c *Catalogue) Len() int {
	return len(c.keys)
}

// Keys returns the signature keys in sorted order.
func (c *Catalogue) Keys() []string {
	return append([]string(nil), c.keys...)
}

// Signatures returns the declared signatures in key order.
func (c *Catalogue) Signatures() []Signature {
	out := make([]Signature, len(c.keys))
	for i, k := range c.keys {
		out[i] = c.rules[k].Sig
	}
	return out
}

// Rules returns the rules in key order. Callers must not modify them.
func (c *Catalogue) Rules() []*Rule {
	out := make([]*Rule, len(c.keys))
	for i, k := range c.keys {
		out[i] = c.rules[k]
	}
	return out
}

// Rule returns the rule declared under key.
func (c *Catalogue) Rule(key string) (*Rule, bool) {
	r, ok := c.rules[key]
	return r, ok
}

// Lookup returns the most specific rule accepting call: concrete domains
// win over Number and fixed arity over variadic.
func (c *Catalogue) Lookup(call Signature) (*Rule, bool) {
	for _, r := range c.byFunc[call.Func] {
		if r.Sig.Accepts(call) {
			return r, true
		}
	}
	return nil, false
}

// Forward returns the forward rule for call.
func (c *Catalogue) Forward(call Signature) (ForwardRule, bool) {
	r, ok := c.Lookup(call)
	if !ok {
		return ForwardRule{}, false
	}
	return ForwardRule{rule: r, call: call}, true
}

// Reverse returns the reverse rule for call.
func (c *Catalogue) Reverse(call Signature) (ReverseRule, bool) {
	r, ok := c.Lookup(call)
	if !ok {
		return ReverseRule{}, false
	}
	return ReverseRule{rule: r, call: call, cat: c}, true
}

// Derivatives returns the partials rule for call, if the dispatched rule
// declares one.
func (c *Catalogue) Derivatives(call Signature) (PartialsRule, bool) {
	r, ok := c.Lookup(call)
	if !ok || !r.HasPartials() {
		return PartialsRule{}, false
	}
	return PartialsRule{rule: r, call: call}, true
}
