package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/born-ml/chainrules/internal/config"
	"github.com/born-ml/chainrules/internal/registry"
	"github.com/born-ml/chainrules/internal/rules"
	"github.com/born-ml/chainrules/internal/ruletest"
)

// CheckSummary is the JSON form of a check report.
type CheckSummary struct {
	Rules    int      `json:"rules"`
	Failures []string `json:"failures,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		configPath string
		standard   bool
		dumpConfig bool
	)
	cmd := &cobra.Command{
		Use:   "check [signature]...",
		Short: "Numerically check the rule catalogues",
		Long: `Sample every rule and verify forward/reverse consistency, agreement
with finite differences, pullback idempotence and, unless --standard-only is
given, agreement of the relaxed rules with the standard ones.

With signature arguments only the rules they dispatch to are checked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				var err error
				if cfg, err = config.Load(configPath); err != nil {
					return err
				}
			}
			if dumpConfig {
				data, err := cfg.Marshal()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			reg, err := rootOpts.Registry(registry.Standard)
			if err != nil {
				return err
			}
			std := reg.Catalogue(registry.Standard)
			if len(args) > 0 {
				if cfg.Skip, err = skipAllBut(std, args); err != nil {
					return err
				}
			}
			var fast *rules.Catalogue
			if !standard {
				fast = reg.Catalogue(registry.Fast)
			}
			checker := ruletest.New(cfg, ruletest.WithLogger(rootOpts.Logger()))
			report, err := checker.Run(cmd.Context(), std, fast)
			if err != nil {
				return err
			}
			summary := CheckSummary{Rules: len(report.Results)}
			for _, res := range report.Results {
				for _, f := range res.Failures {
					summary.Failures = append(summary.Failures, f.Error())
				}
			}
			if err := writeOutput(cmd.OutOrStdout(), rootOpts.Format, summary, func(w io.Writer) {
				fmt.Fprint(w, ruletest.Summary(report))
			}); err != nil {
				return err
			}
			if n := report.Failed(); n > 0 {
				return fmt.Errorf("%d check(s) failed", n)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML checker settings")
	cmd.Flags().BoolVar(&standard, "standard-only", false, "skip the relaxed catalogue")
	cmd.Flags().BoolVar(&dumpConfig, "dump-config", false, "print the effective settings and exit")
	return cmd
}

// skipAllBut returns the keys of every rule not selected by calls.
func skipAllBut(cat *rules.Catalogue, calls []string) ([]string, error) {
	keep := make(map[string]bool, len(calls))
	for _, s := range calls {
		call, err := rules.ParseSignature(s)
		if err != nil {
			return nil, err
		}
		r, ok := cat.Lookup(call)
		if !ok {
			return nil, fmt.Errorf("%s: %w", call.Key(), rules.ErrNoRule)
		}
		keep[r.Key()] = true
	}
	var skip []string
	for _, k := range cat.Keys() {
		if !keep[k] {
			skip = append(skip, k)
		}
	}
	return skip, nil
}
