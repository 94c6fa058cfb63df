package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/chainstat/internal/trace"
)

// AcorOptions holds flags for the acor command.
type AcorOptions struct {
	*RootOptions
	Lags int // autocorrelation function up to this lag; 0 skips it
	Dim  int // dimension for the autocorrelation function
}

// AcorResult holds autocorrelation times and, optionally, the function.
type AcorResult struct {
	Name string    `json:"name"`
	Tau  []float64 `json:"tau"`
	Dim  int       `json:"dim,omitempty"`
	ACF  []float64 `json:"acf,omitempty"`
}

// NewAcorCommand creates the acor command.
func NewAcorCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AcorOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "acor <name>",
		Short: "Integrated autocorrelation time per dimension",
		Long: `Estimate the integrated autocorrelation time of every dimension of a parameter.

The window grows until it is at least window (default 5) times the running
estimate. Chains too short for such a window fail with INSUFFICIENT_SAMPLES.

Examples:
  chainstat acor --db chains.db theta
  chainstat acor --db chains.db theta --lags 50 --dim 1`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAcor(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Lags, "lags", 0, "also print the autocorrelation function up to this lag")
	cmd.Flags().IntVar(&opts.Dim, "dim", 0, "dimension for --lags")

	return cmd
}

func runAcor(opts *AcorOptions, name string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	s, err := opts.openSession(context.Background(), f)
	if err != nil {
		return err
	}

	taus, err := s.analyzer.Autocorrelation(name)
	if err != nil {
		return f.Fail(err)
	}
	result := AcorResult{Name: trace.NormalizeName(name), Tau: taus}

	if opts.Lags > 0 {
		acf, err := s.analyzer.AutocorrelationFunction(name, opts.Dim, opts.Lags)
		if err != nil {
			return f.Fail(err)
		}
		result.Dim = opts.Dim
		result.ACF = acf
	}

	if f.Format == "json" {
		return f.Success(result)
	}

	fmt.Fprintf(f.Writer, "Autocorrelation time for %s\n", result.Name)
	for d, tau := range result.Tau {
		fmt.Fprintf(f.Writer, "  tau[%d] = %.4g\n", d, tau)
	}
	if result.ACF != nil {
		fmt.Fprintf(f.Writer, "Autocorrelation function, dimension %d\n", result.Dim)
		for lag, rho := range result.ACF {
			fmt.Fprintf(f.Writer, "  %4d  %+.4f\n", lag, rho)
		}
	}
	return nil
}
