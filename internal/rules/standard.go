// Package rules declares the differentiation rules of elementary scalar
// functions and evaluates them.
//
// A Rule holds its primal, forward, pullback and partial-derivative bodies
// as ir trees. A Catalogue indexes rules by Signature and hands out the
// three call protocols:
//
//   - ForwardRule.Apply(tangents, args...) returns (Ω, dΩ)
//   - ReverseRule.Apply(args...) returns (Ω, pullback)
//   - PartialsRule.Apply(Ω, args...) returns ∂Ω/∂xᵢ in argument order
//
// Tangents and cotangents follow the complex convention x̄ = conj(∂)·ȳ, so
// Re(conj(ȳ)·dΩ) = Σ Re(conj(x̄ᵢ)·dxᵢ) for every rule. Cotangents are raw:
// a rule may return a complex cotangent for a real argument and leaves
// scalar.Project to the caller.
package rules

// Standard returns the catalogue of standard-precision rules. Each call
// builds a fresh catalogue.
func Standard() *Catalogue {
	var all []*Rule
	for _, family := range [][]*Rule{
		trigRules(),
		inverseTrigRules(),
		hyperbolicRules(),
		expLogRules(),
		complexRules(),
		arithRules(),
		powerRules(),
		rootRules(),
	} {
		all = append(all, family...)
	}
	return MustCatalogue(all...)
}
