package store

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/chainstat/internal/table"
	"github.com/roach88/chainstat/internal/trace"
)

// Samples maps parameter names to traces.
type Samples struct {
	traces map[string]trace.Trace
	order  []string
	logger *slog.Logger
}

// Option configures a Samples.
type Option func(*Samples)

// WithLogger sets the logger used for ingestion diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Samples) {
		s.logger = logger
	}
}

// New creates an empty sample store.
func New(opts ...Option) *Samples {
	s := &Samples{
		traces: make(map[string]trace.Trace),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns an independent copy of the trace stored under name.
// Returns a NOT_FOUND error if the name is absent.
func (s *Samples) Get(name string) (trace.Trace, error) {
	key := trace.NormalizeName(name)
	t, ok := s.traces[key]
	if !ok {
		return trace.Trace{}, trace.NotFound(key)
	}
	return t.Clone(), nil
}

// Has reports whether name is present.
func (s *Samples) Has(name string) bool {
	_, ok := s.traces[trace.NormalizeName(name)]
	return ok
}

// Put stores t under name unless the name is already present.
// Returns true if the trace was stored.
func (s *Samples) Put(name string, t trace.Trace) bool {
	key := trace.NormalizeName(name)
	if _, ok := s.traces[key]; ok || t.IsZero() {
		return false
	}
	s.traces[key] = t.Clone()
	s.order = append(s.order, key)
	return true
}

// Names returns the stored names in insertion order.
func (s *Samples) Names() []string {
	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}

// Len returns the number of stored parameters.
func (s *Samples) Len() int {
	return len(s.order)
}

// NormalizeDimensionality reshapes every flat trace to (iterations x 1) so
// that dimension-indexed code sees a uniform layout. Traces that already have
// a parameter axis are left alone, which makes the call idempotent.
//
// Library entry point for plotting consumers; the CLI reports traces in
// their ingested shape and does not call it.
func (s *Samples) NormalizeDimensionality() {
	for _, name := range s.order {
		t := s.traces[name]
		if t.IsFlat() {
			s.traces[name] = t.Reshape2D()
		}
	}
}

// Record appends one draw to the named trace, creating it on first use.
//
// The first draw fixes the width: a single value creates a flat trace, k
// values an (n x k) trace. A later draw of another width fails with
// SHAPE_MISMATCH and leaves the trace unchanged.
//
// Record is for samplers that embed the store and write draws as they are
// produced; the CLI only ingests finished tables.
func (s *Samples) Record(name string, draw ...float64) error {
	key := trace.NormalizeName(name)
	current, ok := s.traces[key]
	next, err := current.Append(draw)
	if err != nil {
		var te *trace.Error
		if errors.As(err, &te) {
			return te.WithName(key)
		}
		return fmt.Errorf("record %s: %w", key, err)
	}
	s.traces[key] = next
	if !ok {
		s.order = append(s.order, key)
	}
	return nil
}

// IngestResult reports what an ingestion pass did.
type IngestResult struct {
	// Added lists names stored by this pass, in source order.
	Added []string

	// Skipped lists names that were already present and left unchanged.
	Skipped []string
}

// Ingest parses each source in order and stores its trace unless the name is
// already present.
//
// Sources are isolated: a source that fails to open or parse contributes a
// MALFORMED_TABLE error and nothing else, and later sources are still
// ingested. The returned errors are in source order.
func (s *Samples) Ingest(sources []table.Source) (*IngestResult, []error) {
	result := &IngestResult{}
	var errs []error

	for _, src := range sources {
		tbl, err := table.Load(src)
		if err != nil {
			s.logger.Warn("ingest failed", "source", src.Name(), "error", err)
			errs = append(errs, err)
			continue
		}
		if s.Put(tbl.Name, tbl.Trace) {
			s.logger.Debug("ingested trace",
				"source", tbl.Source,
				"name", tbl.Name,
				"shape", tbl.Trace.Shape())
			result.Added = append(result.Added, tbl.Name)
			continue
		}
		s.logger.Debug("skipped known parameter", "source", tbl.Source, "name", tbl.Name)
		result.Skipped = append(result.Skipped, tbl.Name)
	}

	return result, errs
}
