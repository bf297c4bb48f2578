// Package registry publishes the standard and relaxed-arithmetic rule
// catalogues to differentiation engines.
//
// The catalogues are built lazily, exactly once, behind a sync.Once barrier:
// declare the standard rules, derive the relaxed copy, validate the pair.
// A validation failure is a configuration defect and aborts the process with
// a panic carrying the *validate.ConfigError. After the barrier both
// catalogues are immutable and lookups take no locks.
package registry

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/born-ml/chainrules/internal/fastmath"
	"github.com/born-ml/chainrules/internal/rules"
	"github.com/born-ml/chainrules/internal/validate"
)

// Mode selects which catalogue lookups consult.
type Mode int32

// Arithmetic modes.
const (
	// Standard selects full-precision rules.
	Standard Mode = iota
	// Fast selects relaxed-arithmetic rules.
	Fast
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case Standard:
		return "standard"
	case Fast:
		return "fast"
	}
	return fmt.Sprintf("Mode(%d)", int32(m))
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "standard", "":
		return Standard, nil
	case "fast":
		return Fast, nil
	}
	return 0, fmt.Errorf("unknown arithmetic mode %q", s)
}

// Registry holds the two published catalogues and the ambient mode.
type Registry struct {
	declare func() *rules.Catalogue
	table   fastmath.Table
	logger  *zap.Logger

	once sync.Once
	std  *rules.Catalogue
	fast *rules.Catalogue
	err  error

	mode atomic.Int32
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used while building the catalogues.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithDeclarations replaces the standard rule declarations.
func WithDeclarations(declare func() *rules.Catalogue) Option {
	return func(r *Registry) {
		r.declare = declare
	}
}

// WithTable replaces the relaxed-arithmetic substitution table.
func WithTable(t fastmath.Table) Option {
	return func(r *Registry) {
		r.table = t
	}
}

// WithMode sets the initial arithmetic mode.
func WithMode(m Mode) Option {
	return func(r *Registry) {
		r.mode.Store(int32(m))
	}
}

// New returns a registry that builds its catalogues on first use.
func New(opts ...Option) *Registry {
	r := &Registry{
		declare: rules.Standard,
		table:   fastmath.DefaultTable(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Init runs the initialization barrier and returns its outcome. Only the
// first call does any work; later calls return the same result.
func (r *Registry) Init() error {
	r.once.Do(r.build)
	return r.err
}

func (r *Registry) build() {
	start := time.Now()
	std := r.declare()
	fast, err := fastmath.Transform(std, r.table)
	if err != nil {
		r.err = err
		r.logger.Error("relaxed catalogue derivation failed", zap.Error(err))
		return
	}
	if err := validate.Check(std, fast); err != nil {
		r.err = err
		r.logger.Error("rule catalogue rejected", zap.Error(err))
		return
	}
	r.std, r.fast = std, fast
	r.logger.Info("rule catalogues published",
		zap.Int("rules", std.Len()),
		zap.Int("substitutions", len(r.table)),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// ready passes the barrier, panicking if initialization failed.
func (r *Registry) ready() {
	if err := r.Init(); err != nil {
		panic(err)
	}
}

// SetMode changes the ambient arithmetic mode.
func (r *Registry) SetMode(m Mode) {
	r.mode.Store(int32(m))
}

// Mode returns the ambient arithmetic mode.
func (r *Registry) Mode() Mode {
	return Mode(r.mode.Load())
}

// Catalogue returns the catalogue for m.
func (r *Registry) Catalogue(m Mode) *rules.Catalogue {
	r.ready()
	if m == Fast {
		return r.fast
	}
	return r.std
}

// LookupForward returns the forward rule for sig in the ambient mode.
func (r *Registry) LookupForward(sig rules.Signature) (rules.ForwardRule, bool) {
	return r.LookupForwardIn(r.Mode(), sig)
}

// LookupReverse returns the reverse rule for sig in the ambient mode.
func (r *Registry) LookupReverse(sig rules.Signature) (rules.ReverseRule, bool) {
	return r.LookupReverseIn(r.Mode(), sig)
}

// LookupDerivatives returns the partials rule for sig in the ambient mode.
func (r *Registry) LookupDerivatives(sig rules.Signature) (rules.PartialsRule, bool) {
	return r.LookupDerivativesIn(r.Mode(), sig)
}

// LookupForwardIn returns the forward rule for sig in mode m.
func (r *Registry) LookupForwardIn(m Mode, sig rules.Signature) (rules.ForwardRule, bool) {
	return r.Catalogue(m).Forward(sig)
}

// LookupReverseIn returns the reverse rule for sig in mode m.
func (r *Registry) LookupReverseIn(m Mode, sig rules.Signature) (rules.ReverseRule, bool) {
	return r.Catalogue(m).Reverse(sig)
}

// LookupDerivativesIn returns the partials rule for sig in mode m.
func (r *Registry) LookupDerivativesIn(m Mode, sig rules.Signature) (rules.PartialsRule, bool) {
	return r.Catalogue(m).Derivatives(sig)
}

var defaultRegistry = New()

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

// SetMode changes the ambient mode of the process-wide registry.
func SetMode(m Mode) { defaultRegistry.SetMode(m) }

// CurrentMode returns the ambient mode of the process-wide registry.
func CurrentMode() Mode { return defaultRegistry.Mode() }

// LookupForward queries the process-wide registry.
func LookupForward(sig rules.Signature) (rules.ForwardRule, bool) {
	return defaultRegistry.LookupForward(sig)
}

// LookupReverse queries the process-wide registry.
func LookupReverse(sig rules.Signature) (rules.ReverseRule, bool) {
	return defaultRegistry.LookupReverse(sig)
}

// LookupDerivatives queries the process-wide registry.
func LookupDerivatives(sig rules.Signature) (rules.PartialsRule, bool) {
	return defaultRegistry.LookupDerivatives(sig)
}
