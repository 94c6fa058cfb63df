// Package config loads chainstat settings from YAML and validates them
// against an embedded CUE schema.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/chainstat/internal/acor"
	"github.com/roach88/chainstat/internal/contour"
)

//go:embed schema.cue
var schemaCUE string

// DefaultHistogramBins is the bin count used when none is configured.
const DefaultHistogramBins = 50

// Config holds every tunable used by the analysis commands.
type Config struct {
	Acor      AcorConfig      `yaml:"acor" json:"acor"`
	Contour   ContourConfig   `yaml:"contour" json:"contour"`
	Histogram HistogramConfig `yaml:"histogram" json:"histogram"`
	Archive   ArchiveConfig   `yaml:"archive" json:"archive"`
}

// AcorConfig configures the autocorrelation estimator.
type AcorConfig struct {
	Window          float64 `yaml:"window" json:"window"`
	MinLengthFactor float64 `yaml:"min_length_factor" json:"min_length_factor"`
}

// ContourConfig configures joint density contours.
type ContourConfig struct {
	Bins      int       `yaml:"bins" json:"bins"`
	Fractions []float64 `yaml:"fractions" json:"fractions"`
	Tolerance float64   `yaml:"tolerance" json:"tolerance"`
}

// HistogramConfig configures marginal histograms.
type HistogramConfig struct {
	Bins int `yaml:"bins" json:"bins"`
}

// ArchiveConfig names the default archive database.
type ArchiveConfig struct {
	Path string `yaml:"path" json:"path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Acor: AcorConfig{
			Window:          acor.DefaultWindow,
			MinLengthFactor: acor.DefaultMinLengthFactor,
		},
		Contour: ContourConfig{
			Bins:      contour.DefaultBins,
			Fractions: slices.Clone(contour.DefaultFractions),
			Tolerance: contour.DefaultTolerance,
		},
		Histogram: HistogramConfig{Bins: DefaultHistogramBins},
	}
}

// Load reads a YAML config file. Keys missing from the file keep their
// defaults; unknown keys are an error. The result is validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML config bytes over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks c against the embedded schema.
func (c *Config) Validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	value := schema.LookupPath(cue.ParsePath("#Config")).Unify(ctx.Encode(c))
	if err := value.Validate(cue.Concrete(true)); err != nil {
		var msgs []string
		for _, e := range cueerrors.Errors(err) {
			msgs = append(msgs, cueerrors.String(e))
		}
		return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
	}
	return nil
}

// AcorOptions returns the estimator options this config selects.
func (c *Config) AcorOptions() []acor.Option {
	return []acor.Option{
		acor.WithWindow(c.Acor.Window),
		acor.WithMinLengthFactor(c.Acor.MinLengthFactor),
	}
}

// ContourOptions returns the contour engine options this config selects.
func (c *Config) ContourOptions() []contour.Option {
	return []contour.Option{
		contour.WithBins(c.Contour.Bins),
		contour.WithFractions(c.Contour.Fractions...),
		contour.WithTolerance(c.Contour.Tolerance),
	}
}
