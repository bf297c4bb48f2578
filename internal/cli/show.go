package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/born-ml/chainrules/internal/ir"
	"github.com/born-ml/chainrules/internal/registry"
	"github.com/born-ml/chainrules/internal/rules"
	"github.com/born-ml/chainrules/internal/validate"
)

// RuleBodies is the rendered ir of one rule.
type RuleBodies struct {
	Key      string   `json:"key"`
	Setup    []string `json:"setup,omitempty"`
	Primal   string   `json:"primal"`
	Forward  string   `json:"forward"`
	Pullback []string `json:"pullback,omitempty"`
	Partials []string `json:"partials,omitempty"`
	Split    string   `json:"split,omitempty"`
}

// ShowResult pairs the standard and relaxed bodies of a rule.
type ShowResult struct {
	Standard RuleBodies `json:"standard"`
	Fast     RuleBodies `json:"fast"`
	Diff     string     `json:"diff,omitempty"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	var diff bool
	cmd := &cobra.Command{
		Use:   "show <signature>",
		Short: "Show the standard and relaxed bodies of a rule",
		Long: `Show the ir bodies of the rule a call dispatches to, in both flavors.

The signature is a call such as 'sin(Real)' or '*(Complex, Real, Real, Real)'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			call, err := rules.ParseSignature(args[0])
			if err != nil {
				return err
			}
			reg, err := rootOpts.Registry(registry.Standard)
			if err != nil {
				return err
			}
			std, ok := reg.Catalogue(registry.Standard).Lookup(call)
			if !ok {
				return fmt.Errorf("%s: %w", call.Key(), rules.ErrNoRule)
			}
			fast, _ := reg.Catalogue(registry.Fast).Rule(std.Key())
			res := ShowResult{Standard: renderRule(std), Fast: renderRule(fast)}
			if diff {
				res.Diff = validate.Diff(std, fast)
			}
			return writeOutput(cmd.OutOrStdout(), rootOpts.Format, res, func(w io.Writer) {
				writeBodies(w, "standard", res.Standard)
				writeBodies(w, "fast", res.Fast)
				if res.Diff != "" {
					fmt.Fprintf(w, "diff (-standard +fast):\n%s", res.Diff)
				}
			})
		},
	}
	cmd.Flags().BoolVar(&diff, "diff", false, "print the structural difference")
	return cmd
}

func renderRule(r *rules.Rule) RuleBodies {
	out := RuleBodies{
		Key:     r.Key(),
		Primal:  ir.Format(r.Primal),
		Forward: ir.Format(r.Forward),
	}
	for _, b := range r.Setup {
		out.Setup = append(out.Setup, ir.FormatBinding(b))
	}
	for _, n := range r.Pullback {
		out.Pullback = append(out.Pullback, ir.Format(n))
	}
	if r.PullbackRest != nil {
		out.Pullback = append(out.Pullback, "... "+ir.Format(r.PullbackRest))
	}
	for _, n := range r.Partials {
		out.Partials = append(out.Partials, ir.Format(n))
	}
	if r.PartialsRest != nil {
		out.Partials = append(out.Partials, "... "+ir.Format(r.PartialsRest))
	}
	if r.Split != nil {
		out.Split = fmt.Sprintf("%v over %d, then rest", r.Split.Callee, r.Split.Head)
	}
	return out
}

func writeBodies(w io.Writer, flavor string, b RuleBodies) {
	fmt.Fprintf(w, "%s [%s]\n", b.Key, flavor)
	for _, s := range b.Setup {
		fmt.Fprintf(w, "  let %s\n", s)
	}
	fmt.Fprintf(w, "  Ω  = %s\n", b.Primal)
	fmt.Fprintf(w, "  dΩ = %s\n", b.Forward)
	if b.Split != "" {
		fmt.Fprintf(w, "  pullback: split %s\n", b.Split)
	}
	for i, s := range b.Pullback {
		fmt.Fprintf(w, "  x̄%d = %s\n", i, s)
	}
	if len(b.Partials) > 0 {
		fmt.Fprintf(w, "  ∂ = [%s]\n", strings.Join(b.Partials, ", "))
	}
}
