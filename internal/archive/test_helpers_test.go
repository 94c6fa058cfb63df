package archive

import (
	"database/sql"
	"path/filepath"
	"slices"
	"testing"

	"github.com/roach88/chainstat/internal/store"
	"github.com/roach88/chainstat/internal/trace"
)

// createTestArchive opens a fresh archive in a temp dir with fixed batch ids.
func createTestArchive(t *testing.T, batchIDs ...string) *Archive {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	a, err := Open(path, WithBatchIDGenerator(NewFixedGenerator(batchIDs...)))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

// createTestSamples builds a store holding the given traces in order.
func createTestSamples(t *testing.T, entries ...any) *store.Samples {
	t.Helper()
	if len(entries)%2 != 0 {
		t.Fatalf("createTestSamples: want name/trace pairs, got %d values", len(entries))
	}
	s := store.New()
	for i := 0; i < len(entries); i += 2 {
		name := entries[i].(string)
		tr := entries[i+1].(trace.Trace)
		if !s.Put(name, tr) {
			t.Fatalf("createTestSamples: duplicate %q", name)
		}
	}
	return s
}

func getTableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		t.Fatalf("failed to get table info for %q: %v", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dfltValue any
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			t.Fatalf("failed to scan column info: %v", err)
		}
		columns = append(columns, name)
	}
	return columns
}

func getTableIndexes(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='index' AND tbl_name=?", table)
	if err != nil {
		t.Fatalf("failed to get indexes for %q: %v", table, err)
	}
	defer rows.Close()

	var indexes []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan index name: %v", err)
		}
		indexes = append(indexes, name)
	}
	return indexes
}

func contains(slice []string, item string) bool {
	return slices.Contains(slice, item)
}
