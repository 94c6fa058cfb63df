package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/chainstat/internal/analysis"
	"github.com/roach88/chainstat/internal/archive"
	"github.com/roach88/chainstat/internal/config"
	"github.com/roach88/chainstat/internal/store"
	"github.com/roach88/chainstat/internal/table"
)

// logger returns the configured logger, or a discard logger.
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

// formatter returns an OutputFormatter writing to the command's streams.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// loadConfig reads --config, or returns the defaults.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	if o.ConfigPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	return cfg, nil
}

// database returns --db, falling back to archive.path from the config.
func (o *RootOptions) database(cfg *config.Config) string {
	if o.Database != "" {
		return o.Database
	}
	return cfg.Archive.Path
}

// session is the data and configuration one analysis command works on.
type session struct {
	cfg      *config.Config
	samples  *store.Samples
	analyzer *analysis.Analyzer
}

// openSession loads the archive (if any) and then every --table into a fresh
// sample store. A table that fails to parse fails the command. Each tweak
// adjusts the config before the analyzer is built.
func (o *RootOptions) openSession(ctx context.Context, f *OutputFormatter, tweaks ...func(*config.Config)) (*session, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	for _, tweak := range tweaks {
		tweak(cfg)
	}

	logger := o.logger()
	samples := store.New(store.WithLogger(logger))

	db := o.database(cfg)
	if db == "" && len(o.Tables) == 0 {
		return nil, NewExitError(ExitCommandError, "no samples: pass --db or --table")
	}

	if db != "" {
		a, err := archive.Open(db)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer a.Close()

		res, err := a.LoadSamples(ctx, samples)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load samples", err)
		}
		f.VerboseLog("Loaded %d parameter(s) from %s", len(res.Added), db)
	}

	if len(o.Tables) > 0 {
		res, errs := samples.Ingest(table.Files(o.Tables...))
		f.VerboseLog("Ingested %d table(s), skipped %d", len(res.Added), len(res.Skipped))
		if len(errs) > 0 {
			return nil, f.Fail(errs[0])
		}
	}

	an := analysis.New(samples,
		analysis.WithLogger(logger),
		analysis.WithAcorOptions(cfg.AcorOptions()...),
		analysis.WithContourOptions(cfg.ContourOptions()...),
	)
	return &session{cfg: cfg, samples: samples, analyzer: an}, nil
}
