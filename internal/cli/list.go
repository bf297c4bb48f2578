package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/born-ml/chainrules/internal/registry"
	"github.com/born-ml/chainrules/internal/rules"
	"github.com/born-ml/chainrules/internal/scalar"
)

// RuleInfo describes one catalogue entry.
type RuleInfo struct {
	Key      string `json:"key"`
	RealOut  bool   `json:"real_output,omitempty"`
	Partials bool   `json:"partials,omitempty"`
	Split    bool   `json:"split,omitempty"`
	Pos      string `json:"declared_at"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var fn string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List rule signatures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := rootOpts.Registry(registry.Standard)
			if err != nil {
				return err
			}
			infos := listRules(reg.Catalogue(registry.Standard), fn)
			return writeOutput(cmd.OutOrStdout(), rootOpts.Format, infos, func(w io.Writer) {
				for _, info := range infos {
					flags := ""
					if info.Partials {
						flags += " partials"
					}
					if info.Split {
						flags += " split"
					}
					if info.RealOut {
						flags += " real"
					}
					fmt.Fprintf(w, "%-28s%s\n", info.Key, flags)
				}
				fmt.Fprintf(w, "%d rules\n", len(infos))
			})
		},
	}
	cmd.Flags().StringVar(&fn, "func", "", "only list rules for this function symbol")
	return cmd
}

func listRules(cat *rules.Catalogue, fn string) []RuleInfo {
	var out []RuleInfo
	for _, r := range cat.Rules() {
		if fn != "" && r.Sig.Func != fn {
			continue
		}
		out = append(out, RuleInfo{
			Key:      r.Key(),
			RealOut:  r.Codomain == scalar.Real,
			Partials: r.HasPartials(),
			Split:    r.Split != nil,
			Pos:      r.Pos.String(),
		})
	}
	return out
}
