package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/chainstat/internal/trace"
)

// ShowResult describes one stored parameter.
type ShowResult struct {
	Name       string `json:"name"`
	Shape      []int  `json:"shape"`
	Iterations int    `json:"iterations"`
	Dims       int    `json:"dims"`
	Digest     string `json:"digest"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [name]",
		Short: "Describe stored parameters",
		Long: `Describe one stored parameter, or list every parameter when no name is given.

Examples:
  chainstat show --db chains.db
  chainstat show --db chains.db theta
  chainstat show --table mu.txt mu --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runShow(opts *RootOptions, args []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	s, err := opts.openSession(context.Background(), f)
	if err != nil {
		return err
	}

	names := s.samples.Names()
	if len(args) == 1 {
		names = args
	}

	results := make([]ShowResult, 0, len(names))
	for _, name := range names {
		t, err := s.analyzer.Get(name)
		if err != nil {
			return f.Fail(err)
		}
		key := trace.NormalizeName(name)
		digest, err := trace.Digest(key, t)
		if err != nil {
			return f.Fail(err)
		}
		results = append(results, ShowResult{
			Name:       key,
			Shape:      t.Shape(),
			Iterations: t.Iterations(),
			Dims:       t.Dims(),
			Digest:     digest,
		})
	}

	if f.Format == "json" {
		if len(args) == 1 {
			return f.Success(results[0])
		}
		return f.Success(results)
	}

	for _, r := range results {
		fmt.Fprintf(f.Writer, "%s\n", r.Name)
		fmt.Fprintf(f.Writer, "  shape: %v\n", r.Shape)
		fmt.Fprintf(f.Writer, "  iterations: %d\n", r.Iterations)
		fmt.Fprintf(f.Writer, "  dims: %d\n", r.Dims)
		if f.Verbose {
			fmt.Fprintf(f.Writer, "  digest: %s\n", r.Digest)
		}
	}
	return nil
}
