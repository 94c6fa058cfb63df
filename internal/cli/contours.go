package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/spf13/cobra"

	"github.com/roach88/chainstat/internal/config"
	"github.com/roach88/chainstat/internal/contour"
	"github.com/roach88/chainstat/internal/trace"
)

// ContoursOptions holds flags for the contours command.
type ContoursOptions struct {
	*RootOptions
	Bins      int       // grid resolution; 0 keeps the configured value
	Fractions []float64 // mass fractions; empty keeps the configured values
	Simplify  float64   // Douglas-Peucker threshold; 0 disables
	Rings     bool      // include ring coordinates in JSON output
}

// ContoursResult is the output of the contours command.
type ContoursResult struct {
	X          string        `json:"x"`
	Y          string        `json:"y"`
	Draws      int           `json:"draws"`
	Levels     []LevelResult `json:"levels"`
	Stragglers int           `json:"stragglers"`
}

// LevelResult describes one credible contour.
type LevelResult struct {
	Fraction float64       `json:"fraction"`
	Density  float64       `json:"density"`
	Area     float64       `json:"area"`
	Coverage float64       `json:"coverage"`
	Rings    int           `json:"rings"`
	Vertices int           `json:"vertices"`
	Paths    [][][2]float64 `json:"paths,omitempty"`
}

// NewContoursCommand creates the contours command.
func NewContoursCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ContoursOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "contours <name1> <dim1> <name2> <dim2>",
		Short: "Credible contours of a joint posterior",
		Long: `Fit a Gaussian KDE to two dimensions paired by draw index and trace the
contours enclosing each mass fraction (by default 99.73%, 95.45% and 68.27%).

Levels are reported outer to inner. Coverage is the share of draws inside
each level; stragglers are draws outside the outermost one.

Examples:
  chainstat contours --db chains.db theta 0 theta 1
  chainstat contours --db chains.db mu 0 sigma 0 --fraction 0.9 --fraction 0.5
  chainstat contours --db chains.db mu 0 sigma 0 --simplify 0.01 --rings --format json`,
		Args:          cobra.ExactArgs(4),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContours(opts, args, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Bins, "bins", 0, "grid points per axis (default from config)")
	cmd.Flags().Float64SliceVar(&opts.Fractions, "fraction", nil, "mass fraction to enclose (repeatable)")
	cmd.Flags().Float64Var(&opts.Simplify, "simplify", 0, "simplify rings with this Douglas-Peucker threshold")
	cmd.Flags().BoolVar(&opts.Rings, "rings", false, "include ring coordinates in JSON output")

	return cmd
}

func runContours(opts *ContoursOptions, args []string, cmd *cobra.Command) error {
	dim1, err := parseDim(args[1])
	if err != nil {
		return err
	}
	dim2, err := parseDim(args[3])
	if err != nil {
		return err
	}

	f := opts.formatter(cmd)
	s, err := opts.openSession(context.Background(), f, func(cfg *config.Config) {
		if opts.Bins > 0 {
			cfg.Contour.Bins = opts.Bins
		}
	})
	if err != nil {
		return err
	}

	r, err := s.analyzer.JointDensityContours(args[0], dim1, args[2], dim2, opts.Fractions...)
	if err != nil {
		return f.Fail(err)
	}

	result := ContoursResult{
		X:          fmt.Sprintf("%s[%d]", trace.NormalizeName(args[0]), dim1),
		Y:          fmt.Sprintf("%s[%d]", trace.NormalizeName(args[2]), dim2),
		Draws:      len(r.Inside),
		Stragglers: len(r.Stragglers),
	}
	coverage := r.Coverage()
	for i, lvl := range r.Levels {
		if opts.Simplify > 0 {
			lvl = lvl.Simplified(opts.Simplify)
		}
		lr := LevelResult{
			Fraction: lvl.Fraction,
			Density:  lvl.Density,
			Area:     lvl.Area(),
			Coverage: coverage[i],
			Rings:    len(lvl.Rings),
			Vertices: countVertices(lvl),
		}
		if opts.Rings {
			lr.Paths = ringPaths(lvl.Rings)
		}
		result.Levels = append(result.Levels, lr)
	}

	if f.Format == "json" {
		return f.Success(result)
	}

	w := f.Writer
	fmt.Fprintf(w, "Contours of %s against %s (%d draws)\n", result.X, result.Y, result.Draws)
	for _, lr := range result.Levels {
		fmt.Fprintf(w, "  %6.2f%%  density %.4g  rings %d  area %.4g  coverage %.2f%%\n",
			100*lr.Fraction, lr.Density, lr.Rings, lr.Area, 100*lr.Coverage)
	}
	fmt.Fprintf(w, "Stragglers: %d\n", result.Stragglers)
	return nil
}

// parseDim parses a dimension index argument.
func parseDim(arg string) (int, error) {
	dim, err := strconv.Atoi(arg)
	if err != nil || dim < 0 {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid dimension %q", arg))
	}
	return dim, nil
}

func countVertices(lvl contour.Level) int {
	n := 0
	for _, ring := range lvl.Rings {
		n += len(ring)
	}
	return n
}

func ringPaths(rings []orb.Ring) [][][2]float64 {
	paths := make([][][2]float64, 0, len(rings))
	for _, ring := range rings {
		path := make([][2]float64, len(ring))
		for i, p := range ring {
			path[i] = [2]float64{p.X(), p.Y()}
		}
		paths = append(paths, path)
	}
	return paths
}
