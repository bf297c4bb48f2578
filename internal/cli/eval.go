package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/born-ml/chainrules/internal/registry"
	"github.com/born-ml/chainrules/internal/rules"
	"github.com/born-ml/chainrules/internal/scalar"
)

// EvalResult is the outcome of applying one rule at a point.
type EvalResult struct {
	Rule       string   `json:"rule"`
	Mode       string   `json:"mode"`
	Primal     string   `json:"primal"`
	Tangent    string   `json:"tangent"`
	Cotangents []string `json:"cotangents"`
	Partials   []string `json:"partials,omitempty"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		mode     string
		tangents []string
		ct       string
	)
	cmd := &cobra.Command{
		Use:   "eval <signature> <arg>...",
		Short: "Apply a rule at a point",
		Long: `Apply the forward, reverse and partials rules of a call at a point.

Arguments are real ("0.5") or complex ("(1+2i)") numbers. Tangents default
to 1 for every differentiable argument and the cotangent defaults to 1.`,
		Example: `  chainrules eval 'atan(Real, Real)' 1 2
  chainrules eval 'sin(Complex)' '(1+1i)' --mode fast`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := registry.ParseMode(mode)
			if err != nil {
				return err
			}
			call, err := rules.ParseSignature(args[0])
			if err != nil {
				return err
			}
			values, err := parseValues(args[1:])
			if err != nil {
				return err
			}
			var dts []scalar.Value
			if len(tangents) > 0 {
				if dts, err = parseValues(tangents); err != nil {
					return err
				}
			} else {
				dts = make([]scalar.Value, len(values))
				for i := range dts {
					if call.ArgDomain(i).Differentiable() {
						dts[i] = scalar.Float(1)
					}
				}
			}
			cts, err := parseValues([]string{ct})
			if err != nil {
				return err
			}
			reg, err := rootOpts.Registry(m)
			if err != nil {
				return err
			}
			res, err := evalRule(reg, call, values, dts, cts[0])
			if err != nil {
				return err
			}
			rootOpts.Logger().Debug("rule applied", zap.String("rule", res.Rule), zap.String("mode", res.Mode))
			return writeOutput(cmd.OutOrStdout(), rootOpts.Format, res, func(w io.Writer) {
				fmt.Fprintf(w, "%s [%s]\n", res.Rule, res.Mode)
				fmt.Fprintf(w, "  Ω  = %s\n", res.Primal)
				fmt.Fprintf(w, "  dΩ = %s\n", res.Tangent)
				fmt.Fprintf(w, "  x̄  = [%s]\n", strings.Join(res.Cotangents, ", "))
				if len(res.Partials) > 0 {
					fmt.Fprintf(w, "  ∂  = [%s]\n", strings.Join(res.Partials, ", "))
				}
			})
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "standard", "arithmetic mode (standard|fast)")
	cmd.Flags().StringSliceVar(&tangents, "tangents", nil, "argument tangents (default 1 each)")
	cmd.Flags().StringVar(&ct, "ct", "1", "output cotangent")
	return cmd
}

func evalRule(reg *registry.Registry, call rules.Signature, args, dts []scalar.Value, ct scalar.Value) (*EvalResult, error) {
	fwd, ok := reg.LookupForward(call)
	if !ok {
		return nil, fmt.Errorf("%s: %w", call.Key(), rules.ErrNoRule)
	}
	rev, _ := reg.LookupReverse(call)
	omega, dOmega, err := fwd.Apply(dts, args...)
	if err != nil {
		return nil, err
	}
	_, pb, err := rev.Apply(args...)
	if err != nil {
		return nil, err
	}
	grads, err := pb(ct)
	if err != nil {
		return nil, err
	}
	res := &EvalResult{
		Rule:       fwd.Rule().Key(),
		Mode:       reg.Mode().String(),
		Primal:     omega.String(),
		Tangent:    dOmega.String(),
		Cotangents: formatValues(grads),
	}
	if pr, ok := reg.LookupDerivatives(call); ok {
		ps, err := pr.Apply(omega, args...)
		if err != nil {
			return nil, err
		}
		res.Partials = formatValues(ps)
	}
	return res, nil
}

func parseValues(ss []string) ([]scalar.Value, error) {
	out := make([]scalar.Value, len(ss))
	for i, s := range ss {
		c, err := strconv.ParseComplex(strings.TrimSpace(s), 128)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		out[i] = scalar.Of(c)
	}
	return out, nil
}

func formatValues(vs []scalar.Value) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.String()
	}
	return out
}
