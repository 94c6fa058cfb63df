package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/chainstat/internal/store"
	"github.com/roach88/chainstat/internal/trace"
)

// ErrDigestMismatch is returned when a stored trace no longer matches the
// digest written alongside it.
var ErrDigestMismatch = errors.New("digest mismatch")

// Batch describes one SaveSamples call.
type Batch struct {
	ID          string `json:"id"`
	Seq         int64  `json:"seq"`
	SourceCount int    `json:"source_count"`

	// Traces counts the rows this batch actually inserted.
	Traces int `json:"traces"`
}

// LoadResult reports what LoadSamples restored.
type LoadResult struct {
	// Added lists names stored into the target, in archive order.
	Added []string

	// Skipped lists names the target already held.
	Skipped []string
}

// LoadSamples restores every archived trace into samples in seq order.
// Every row is decoded and digest-checked before samples is touched, so a
// corrupt archive leaves samples unchanged.
func (a *Archive) LoadSamples(ctx context.Context, samples *store.Samples) (*LoadResult, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT name, shape, data, digest
		FROM traces
		ORDER BY seq ASC, name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("load samples: query traces: %w", err)
	}
	defer rows.Close()

	type entry struct {
		name  string
		trace trace.Trace
	}
	var entries []entry
	for rows.Next() {
		name, t, err := scanTrace(rows)
		if err != nil {
			return nil, fmt.Errorf("load samples: %w", err)
		}
		entries = append(entries, entry{name, t})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load samples: iterate traces: %w", err)
	}

	result := &LoadResult{Added: []string{}, Skipped: []string{}}
	for _, e := range entries {
		if samples.Put(e.name, e.trace) {
			result.Added = append(result.Added, e.name)
		} else {
			result.Skipped = append(result.Skipped, e.name)
		}
	}
	return result, nil
}

// Load returns the archived trace for name.
// Returns a NOT_FOUND error if the name was never archived.
func (a *Archive) Load(ctx context.Context, name string) (trace.Trace, error) {
	key := trace.NormalizeName(name)
	row := a.db.QueryRowContext(ctx, `
		SELECT name, shape, data, digest
		FROM traces
		WHERE name = ?
	`, key)
	_, t, err := scanTrace(row)
	if errors.Is(err, sql.ErrNoRows) {
		return trace.Trace{}, trace.NotFound(key)
	}
	if err != nil {
		return trace.Trace{}, fmt.Errorf("load %s: %w", key, err)
	}
	return t, nil
}

// Names returns archived parameter names in seq order.
// Returns an empty slice (not nil) for an empty archive.
func (a *Archive) Names(ctx context.Context) ([]string, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT name FROM traces
		ORDER BY seq ASC, name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query names: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate names: %w", err)
	}
	return names, nil
}

// Batches returns every batch in seq order.
// Returns an empty slice (not nil) for an empty archive.
func (a *Archive) Batches(ctx context.Context) ([]Batch, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT b.id, b.seq, b.source_count, COUNT(t.name)
		FROM batches b
		LEFT JOIN traces t ON t.batch_id = b.id
		GROUP BY b.id, b.seq, b.source_count
		ORDER BY b.seq ASC, b.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	batches := []Batch{}
	for rows.Next() {
		var b Batch
		if err := rows.Scan(&b.ID, &b.Seq, &b.SourceCount, &b.Traces); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batches: %w", err)
	}
	return batches, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanTrace decodes one trace row and verifies its digest.
func scanTrace(row scanner) (string, trace.Trace, error) {
	var (
		name, shapeJSON, digest string
		data                    []byte
	)
	if err := row.Scan(&name, &shapeJSON, &data, &digest); err != nil {
		return "", trace.Trace{}, err
	}

	shape, err := decodeShape(shapeJSON)
	if err != nil {
		return "", trace.Trace{}, fmt.Errorf("trace %s: %w", name, err)
	}
	values, err := decodeData(data)
	if err != nil {
		return "", trace.Trace{}, fmt.Errorf("trace %s: %w", name, err)
	}
	t, err := trace.New(shape, values)
	if err != nil {
		return "", trace.Trace{}, fmt.Errorf("trace %s: %w", name, err)
	}

	got, err := trace.Digest(name, t)
	if err != nil {
		return "", trace.Trace{}, fmt.Errorf("trace %s: %w", name, err)
	}
	if got != digest {
		return "", trace.Trace{}, fmt.Errorf("trace %s: %w: stored %s, computed %s", name, ErrDigestMismatch, digest, got)
	}
	return name, t, nil
}
