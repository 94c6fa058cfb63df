package archive

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/chainstat/internal/store"
	"github.com/roach88/chainstat/internal/trace"
)

// SaveResult reports what a SaveSamples call wrote.
type SaveResult struct {
	BatchID string

	// Saved lists names inserted by this batch, in store order.
	Saved []string

	// Skipped lists names already archived by an earlier batch.
	Skipped []string
}

// SaveSamples writes every trace in samples as one new batch.
// Uses ON CONFLICT(name) DO NOTHING: a name already in the archive keeps its
// original trace, the same first-write-wins rule the in-memory store applies.
//
// The batch is written in a single transaction; on error nothing is stored.
func (a *Archive) SaveSamples(ctx context.Context, samples *store.Samples) (*SaveResult, error) {
	names := samples.Names()

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("save samples: begin: %w", err)
	}
	defer tx.Rollback()

	seq, err := nextSeq(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("save samples: %w", err)
	}

	result := &SaveResult{
		BatchID: a.batch.Generate(),
		Saved:   []string{},
		Skipped: []string{},
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO batches (id, seq, source_count)
		VALUES (?, ?, ?)
	`, result.BatchID, seq, len(names))
	if err != nil {
		return nil, fmt.Errorf("save samples: write batch: %w", err)
	}

	for _, name := range names {
		t, err := samples.Get(name)
		if err != nil {
			return nil, fmt.Errorf("save samples: %w", err)
		}
		seq++
		inserted, err := writeTrace(ctx, tx, name, t, result.BatchID, seq)
		if err != nil {
			return nil, fmt.Errorf("save samples: %w", err)
		}
		if inserted {
			result.Saved = append(result.Saved, name)
		} else {
			result.Skipped = append(result.Skipped, name)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("save samples: commit: %w", err)
	}
	return result, nil
}

// writeTrace inserts one trace row and reports whether it was new.
func writeTrace(ctx context.Context, tx *sql.Tx, name string, t trace.Trace, batchID string, seq int64) (bool, error) {
	shape, err := encodeShape(t.Shape())
	if err != nil {
		return false, fmt.Errorf("write trace %s: %w", name, err)
	}
	data, err := encodeData(t.Values())
	if err != nil {
		return false, fmt.Errorf("write trace %s: %w", name, err)
	}
	digest, err := trace.Digest(name, t)
	if err != nil {
		return false, fmt.Errorf("write trace %s: %w", name, err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO traces (name, shape, data, digest, batch_id, seq)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO NOTHING
	`, name, shape, data, digest, batchID, seq)
	if err != nil {
		return false, fmt.Errorf("write trace %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write trace %s: %w", name, err)
	}
	return n > 0, nil
}

// nextSeq returns the highest seq used by any batch or trace.
func nextSeq(ctx context.Context, tx *sql.Tx) (int64, error) {
	var seq int64
	err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM (
			SELECT seq FROM batches
			UNION ALL
			SELECT seq FROM traces
		)
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("read seq: %w", err)
	}
	return seq + 1, nil
}
