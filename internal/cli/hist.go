package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/chainstat/internal/posterior"
	"github.com/roach88/chainstat/internal/trace"
)

// HistOptions holds flags for the hist command.
type HistOptions struct {
	*RootOptions
	Dim    int
	Bins   int // 0 keeps the configured value
	Points int // marginal density grid size; 0 skips the density
}

// HistResult is the output of the hist command.
type HistResult struct {
	Name      string              `json:"name"`
	Dim       int                 `json:"dim"`
	Histogram posterior.Histogram `json:"histogram"`
	Density   *posterior.Density  `json:"density,omitempty"`
}

const histBarWidth = 40

// NewHistCommand creates the hist command.
func NewHistCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "hist <name>",
		Short: "Marginal histogram of one dimension",
		Long: `Bin one dimension of a parameter into equal-width bins, and optionally
evaluate a one-dimensional Gaussian KDE of the same draws.

Examples:
  chainstat hist --db chains.db theta --dim 1
  chainstat hist --db chains.db mu --bins 20 --kde 200 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHist(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Dim, "dim", 0, "dimension to bin")
	cmd.Flags().IntVar(&opts.Bins, "bins", 0, "number of bins (default from config)")
	cmd.Flags().IntVar(&opts.Points, "kde", 0, "also evaluate the marginal density at this many points")

	return cmd
}

func runHist(opts *HistOptions, name string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	s, err := opts.openSession(context.Background(), f)
	if err != nil {
		return err
	}

	bins := opts.Bins
	if bins == 0 {
		bins = s.cfg.Histogram.Bins
	}
	h, err := s.analyzer.Histogram(name, opts.Dim, bins)
	if err != nil {
		return f.Fail(err)
	}
	result := HistResult{Name: trace.NormalizeName(name), Dim: opts.Dim, Histogram: h}

	if opts.Points > 0 {
		d, err := s.analyzer.MarginalDensity(name, opts.Dim, opts.Points)
		if err != nil {
			return f.Fail(err)
		}
		result.Density = &d
	}

	if f.Format == "json" {
		return f.Success(result)
	}

	w := f.Writer
	fmt.Fprintf(w, "Histogram of %s[%d]\n", result.Name, result.Dim)
	peak := slices.Max(h.Counts)
	for i, c := range h.Counts {
		bar := 0
		if peak > 0 {
			bar = c * histBarWidth / peak
		}
		fmt.Fprintf(w, "  %10.4g %10.4g  %6d  %s\n", h.Edges[i], h.Edges[i+1], c, strings.Repeat("#", bar))
	}
	if result.Density != nil {
		fmt.Fprintf(w, "Marginal density: %d points, bandwidth %.4g\n", len(result.Density.X), result.Density.Bandwidth)
	}
	return nil
}
