package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/chainstat/internal/archive"
	"github.com/roach88/chainstat/internal/store"
	"github.com/roach88/chainstat/internal/table"
)

// IngestResult holds the outcome of an ingest run.
type IngestResult struct {
	BatchID string   `json:"batch_id"`
	Saved   []string `json:"saved"`
	Skipped []string `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// NewIngestCommand creates the ingest command.
func NewIngestCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <table>...",
		Short: "Parse sample tables into the archive",
		Long: `Parse whitespace-delimited sample tables and store them in the archive.

Each table's first line names the parameter; every further line is one draw.
A name already in the archive keeps its original samples. Tables that fail
to parse are reported and skipped; the others are still stored.

Exit codes:
  0 - All tables ingested (or already present)
  1 - One or more tables failed to parse
  2 - Command error (no --db, unreadable database, etc.)

Examples:
  chainstat ingest --db chains.db mu.txt sigma.txt
  chainstat ingest --db chains.db --format json theta.txt`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runIngest(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	ctx := context.Background()
	f := opts.formatter(cmd)

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	db := opts.database(cfg)
	if db == "" {
		return NewExitError(ExitCommandError, "ingest requires --db (or archive.path in the config)")
	}

	samples := store.New(store.WithLogger(opts.logger()))
	_, errs := samples.Ingest(table.Files(paths...))

	a, err := archive.Open(db)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer a.Close()

	saved, err := a.SaveSamples(ctx, samples)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to save samples", err)
	}
	f.VerboseLog("Batch %s: %d saved, %d skipped", saved.BatchID, len(saved.Saved), len(saved.Skipped))

	result := IngestResult{
		BatchID: saved.BatchID,
		Saved:   saved.Saved,
		Skipped: saved.Skipped,
	}
	for _, e := range errs {
		result.Errors = append(result.Errors, e.Error())
	}

	if f.Format == "json" {
		if err := f.Success(result); err != nil {
			return err
		}
	} else {
		outputIngestText(f, result)
	}

	if len(errs) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d table(s) failed to parse", len(errs)))
	}
	return nil
}

func outputIngestText(f *OutputFormatter, result IngestResult) {
	w := f.Writer
	fmt.Fprintf(w, "Batch %s\n", result.BatchID)
	for _, name := range result.Saved {
		fmt.Fprintf(w, "✓ %s\n", name)
	}
	for _, name := range result.Skipped {
		fmt.Fprintf(w, "= %s (already archived)\n", name)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(w, "✗ %s\n", e)
	}
}
