package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/chainstat/internal/posterior"
)

// NewSummaryCommand creates the summary command.
func NewSummaryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary <name>",
		Short: "Posterior median, spread and credibility intervals",
		Long: `Summarize every dimension of a parameter: effective sample size, median,
standard deviation and the 68%, 95% and 99% credibility intervals.

Examples:
  chainstat summary --db chains.db theta
  chainstat summary --db chains.db theta --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runSummary(opts *RootOptions, name string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	s, err := opts.openSession(context.Background(), f)
	if err != nil {
		return err
	}

	sums, err := s.analyzer.PosteriorSummary(name)
	if err != nil {
		return f.Fail(err)
	}

	if f.Format == "json" {
		return f.Success(sums)
	}
	return posterior.Report(f.Writer, sums)
}
