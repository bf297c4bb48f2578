// Package ruletest checks rule catalogues numerically.
//
// For every rule it samples arguments and tangents and verifies that
//   - forward and reverse rules agree: Re(conj(ȳ)·dΩ) = Σ Re(conj(x̄ᵢ)·dxᵢ)
//   - the forward tangent matches a central finite difference (standard
//     catalogue only)
//   - calling a pullback twice gives identical cotangents
//   - relaxed rules stay close to their standard counterparts
package ruletest

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"sort"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/diff/fd"
	fscalar "gonum.org/v1/gonum/floats/scalar"

	"github.com/born-ml/chainrules/internal/config"
	"github.com/born-ml/chainrules/internal/rules"
	"github.com/born-ml/chainrules/internal/scalar"
)

// Check names.
const (
	CheckConsistency = "consistency"
	CheckDifference  = "difference"
	CheckIdempotent  = "idempotent"
	CheckAgreement   = "agreement"
	CheckEval        = "eval"
)

// Failure is one failed check at one sample.
type Failure struct {
	Key    string
	Mode   string
	Check  string
	Call   string
	Args   []scalar.Value
	Detail string
}

// Error implements the error interface.
func (f *Failure) Error() string {
	return fmt.Sprintf("%s [%s] %s at %s%v: %s", f.Key, f.Mode, f.Check, f.Call, f.Args, f.Detail)
}

// Result summarizes the checks of one rule.
type Result struct {
	Key      string
	Samples  int
	Failures []*Failure
}

// Report is the outcome of a Run, in key order.
type Report struct {
	Results []Result
}

// Failed returns the number of failures.
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		n += len(res.Failures)
	}
	return n
}

// Err combines every failure, or returns nil.
func (r *Report) Err() error {
	var err error
	for _, res := range r.Results {
		for _, f := range res.Failures {
			err = multierr.Append(err, f)
		}
	}
	return err
}

// Checker runs numerical checks over catalogues.
type Checker struct {
	cfg    *config.Check
	logger *zap.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Checker) {
		if l != nil {
			c.logger = l
		}
	}
}

// New returns a checker. A nil cfg selects config.Default().
func New(cfg *config.Check, opts ...Option) *Checker {
	if cfg == nil {
		cfg = config.Default()
	}
	c := &Checker{cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run checks every rule of std and, when fast is not nil, its relaxed
// counterpart. Rules are checked concurrently; the report is in key order.
func (c *Checker) Run(ctx context.Context, std, fast *rules.Catalogue) (*Report, error) {
	var keys []string
	for _, k := range std.Keys() {
		if !c.cfg.Skipped(k) {
			keys = append(keys, k)
		}
	}
	results := make([]Result, len(keys))

	g, ctx := errgroup.WithContext(ctx)
	if c.cfg.Workers > 0 {
		g.SetLimit(c.cfg.Workers)
	}
	for i, key := range keys {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = c.CheckRule(std, fast, key)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Key < results[j].Key })
	report := &Report{Results: results}
	c.logger.Info("catalogue checked",
		zap.Int("rules", len(results)),
		zap.Int("failures", report.Failed()),
	)
	return report, nil
}

// CheckRule samples one rule. fast may be nil.
func (c *Checker) CheckRule(std, fast *rules.Catalogue, key string) Result {
	res := Result{Key: key}
	rule, ok := std.Rule(key)
	if !ok {
		res.Failures = append(res.Failures, &Failure{Key: key, Check: CheckEval, Detail: "not in catalogue"})
		return res
	}
	rng := rand.New(rand.NewPCG(uint64(c.cfg.Seed), keyHash(key)))
	for i := 0; i < c.cfg.Samples; i++ {
		s, ok := c.sample(rng, std, rule, i)
		if !ok {
			continue
		}
		res.Samples++
		res.Failures = append(res.Failures, c.checkSample(std, "standard", c.cfg.Standard, s, true)...)
		if fast != nil {
			res.Failures = append(res.Failures, c.checkSample(fast, "fast", c.cfg.Fast, s, false)...)
			res.Failures = append(res.Failures, c.checkAgreement(std, fast, s)...)
		}
	}
	if len(res.Failures) > 0 {
		c.logger.Warn("rule check failed",
			zap.String("rule", key),
			zap.Int("failures", len(res.Failures)),
			zap.Error(res.Failures[0]),
		)
	} else {
		c.logger.Debug("rule checked", zap.String("rule", key), zap.Int("samples", res.Samples))
	}
	return res
}

// sample is one call site with its inputs.
type sample struct {
	key      string
	call     rules.Signature
	args     []scalar.Value
	tangents []scalar.Value
	ct       scalar.Value
}

func (c *Checker) sample(rng *rand.Rand, cat *rules.Catalogue, r *rules.Rule, i int) (sample, bool) {
	n := r.Sig.Arity()
	if r.Sig.Variadic {
		n += i % 3
	}
	complexSample := i%2 == 1
	domains := make([]scalar.Domain, n)
	for k := range domains {
		d := r.Sig.ArgDomain(k)
		if d == scalar.Number {
			d = scalar.Real
			if complexSample {
				d = scalar.Complex
			}
		}
		domains[k] = d
	}
	call := rules.Call(r.Sig.Func, domains...)
	if got, ok := cat.Lookup(call); !ok || got.Key() != r.Key() {
		// A more specific rule took the real call; try the complex one.
		for k, d := range domains {
			if r.Sig.ArgDomain(k) == scalar.Number && d == scalar.Real {
				domains[k] = scalar.Complex
			}
		}
		call = rules.Call(r.Sig.Func, domains...)
		if got, ok := cat.Lookup(call); !ok || got.Key() != r.Key() {
			return sample{}, false
		}
	}

	iv := c.cfg.Interval(r.Sig.Func)
	uniform := func() float64 { return iv.Min + rng.Float64()*(iv.Max-iv.Min) }
	unit := func() float64 { return 2*rng.Float64() - 1 }
	s := sample{key: r.Key(), call: call}
	for _, d := range domains {
		switch d {
		case scalar.Discrete:
			s.args = append(s.args, scalar.Float(float64(rng.IntN(4))))
			s.tangents = append(s.tangents, scalar.Zero())
		case scalar.Complex:
			s.args = append(s.args, scalar.Cmplx(uniform(), uniform()))
			s.tangents = append(s.tangents, scalar.Cmplx(unit(), unit()))
		default:
			s.args = append(s.args, scalar.Float(uniform()))
			s.tangents = append(s.tangents, scalar.Float(unit()))
		}
	}
	if r.Codomain == scalar.Real || call.EvalDomain() == scalar.Real {
		s.ct = scalar.Float(unit())
	} else {
		s.ct = scalar.Cmplx(unit(), unit())
	}
	return s, true
}

func (c *Checker) checkSample(cat *rules.Catalogue, mode string, tol config.Tolerance, s sample, difference bool) []*Failure {
	var out []*Failure
	fail := func(check, format string, args ...any) {
		out = append(out, &Failure{
			Key:    s.key,
			Mode:   mode,
			Check:  check,
			Call:   s.call.Func,
			Args:   s.args,
			Detail: fmt.Sprintf(format, args...),
		})
	}
	fwd, ok := cat.Forward(s.call)
	rev, ok2 := cat.Reverse(s.call)
	if !ok || !ok2 {
		fail(CheckEval, "no rule for %s", s.call.Key())
		return out
	}
	omega, dOmega, err := fwd.Apply(s.tangents, s.args...)
	if err != nil {
		fail(CheckEval, "forward: %v", err)
		return out
	}
	omegaR, pb, err := rev.Apply(s.args...)
	if err != nil {
		fail(CheckEval, "reverse: %v", err)
		return out
	}
	if !closeTo(omega, omegaR, tol) {
		fail(CheckConsistency, "forward primal %v, reverse primal %v", omega, omegaR)
	}
	first, err := pb(s.ct)
	if err != nil {
		fail(CheckEval, "pullback: %v", err)
		return out
	}
	second, err := pb(s.ct)
	if err != nil {
		fail(CheckEval, "pullback: %v", err)
		return out
	}
	if !sameValues(first, second) {
		fail(CheckIdempotent, "first %v, second %v", first, second)
	}
	if len(first) != len(s.args) {
		fail(CheckConsistency, "%d cotangents for %d arguments", len(first), len(s.args))
		return out
	}

	lhs := scalar.RealDot(s.ct, dOmega)
	rhs := 0.0
	for i, g := range first {
		rhs += scalar.RealDot(scalar.Project(s.call.Args[i], g), s.tangents[i])
	}
	if !fscalar.EqualWithinAbsOrRel(lhs, rhs, tol.Abs, tol.Rel) {
		fail(CheckConsistency, "<ȳ, dΩ> = %g, Σ<x̄, dx> = %g", lhs, rhs)
	}

	if difference {
		want, err := c.difference(fwd, s)
		switch {
		case err != nil:
			fail(CheckEval, "difference: %v", err)
		case !closeTo(want, dOmega, c.cfg.Difference):
			fail(CheckDifference, "finite difference %v, forward tangent %v", want, dOmega)
		}
	}
	return out
}

// difference estimates the directional derivative of the primal along the
// sample tangents with central differences, one real part at a time.
func (c *Checker) difference(fwd rules.ForwardRule, s sample) (scalar.Value, error) {
	zeros := make([]scalar.Value, len(s.args))
	var evalErr error
	at := func(t float64) scalar.Value {
		moved := make([]scalar.Value, len(s.args))
		for i, a := range s.args {
			if s.tangents[i].IsSentinel() {
				moved[i] = a
				continue
			}
			moved[i] = scalar.Of(a.C() + complex(t, 0)*s.tangents[i].C())
		}
		v, _, err := fwd.Apply(zeros, moved...)
		if err != nil && evalErr == nil {
			evalErr = err
		}
		return v
	}
	settings := &fd.Settings{Formula: fd.Central, Step: c.cfg.Step}
	re := fd.Derivative(func(t float64) float64 { return at(t).Re() }, 0, settings)
	im := fd.Derivative(func(t float64) float64 { return at(t).Im() }, 0, settings)
	if evalErr != nil {
		return scalar.Value{}, evalErr
	}
	return scalar.Cmplx(re, im), nil
}

func (c *Checker) checkAgreement(std, fast *rules.Catalogue, s sample) []*Failure {
	var out []*Failure
	fail := func(format string, args ...any) {
		out = append(out, &Failure{
			Key:    s.key,
			Mode:   "fast",
			Check:  CheckAgreement,
			Call:   s.call.Func,
			Args:   s.args,
			Detail: fmt.Sprintf(format, args...),
		})
	}
	sf, ok1 := std.Forward(s.call)
	ff, ok2 := fast.Forward(s.call)
	if !ok1 || !ok2 {
		fail("no rule for %s", s.call.Key())
		return out
	}
	so, sd, err1 := sf.Apply(s.tangents, s.args...)
	fo, fdv, err2 := ff.Apply(s.tangents, s.args...)
	if err := multierr.Combine(err1, err2); err != nil {
		fail("%v", err)
		return out
	}
	if !closeTo(so, fo, c.cfg.Fast) {
		fail("primal %v, relaxed %v", so, fo)
	}
	if !closeTo(sd, fdv, c.cfg.Fast) {
		fail("tangent %v, relaxed %v", sd, fdv)
	}
	return out
}

func closeTo(a, b scalar.Value, tol config.Tolerance) bool {
	return fscalar.EqualWithinAbsOrRel(a.Re(), b.Re(), tol.Abs, tol.Rel) &&
		fscalar.EqualWithinAbsOrRel(a.Im(), b.Im(), tol.Abs, tol.Rel)
}

func sameValues(a, b []scalar.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] && !(a[i].IsNaN() && b[i].IsNaN()) {
			return false
		}
	}
	return true
}

func keyHash(key string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(key))
	return h.Sum64()
}

// Summary renders a report as text, one line per rule.
func Summary(r *Report) string {
	var b strings.Builder
	for _, res := range r.Results {
		status := "ok"
		if len(res.Failures) > 0 {
			status = fmt.Sprintf("FAIL (%d)", len(res.Failures))
		}
		fmt.Fprintf(&b, "%-28s %3d samples  %s\n", res.Key, res.Samples, status)
		for _, f := range res.Failures {
			fmt.Fprintf(&b, "    %s\n", f.Error())
		}
	}
	fmt.Fprintf(&b, "%d rules, %d failures\n", len(r.Results), r.Failed())
	return b.String()
}
