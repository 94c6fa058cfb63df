package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/chainstat/internal/trace"
)

// ESSResult holds effective sample sizes.
type ESSResult struct {
	Name       string    `json:"name"`
	Iterations int       `json:"iterations"`
	ESS        []float64 `json:"ess"`
}

// NewESSCommand creates the ess command.
func NewESSCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ess <name>",
		Short: "Effective number of independent samples per dimension",
		Long: `Compute N/τ for every dimension of a parameter, using the same τ the
acor command reports.

Examples:
  chainstat ess --db chains.db theta
  chainstat ess --table mu.txt mu --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runESS(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runESS(opts *RootOptions, name string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	s, err := opts.openSession(context.Background(), f)
	if err != nil {
		return err
	}

	t, err := s.analyzer.Get(name)
	if err != nil {
		return f.Fail(err)
	}
	ess, err := s.analyzer.EffectiveSampleSize(name)
	if err != nil {
		return f.Fail(err)
	}
	result := ESSResult{Name: trace.NormalizeName(name), Iterations: t.Iterations(), ESS: ess}

	if f.Format == "json" {
		return f.Success(result)
	}

	fmt.Fprintf(f.Writer, "Effective sample size for %s (N = %d)\n", result.Name, result.Iterations)
	for d, v := range result.ESS {
		fmt.Fprintf(f.Writer, "  ess[%d] = %.4g\n", d, v)
	}
	return nil
}
