package table

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/chainstat/internal/trace"
)

func TestParseScalarTable(t *testing.T) {
	tbl, err := Parse("mu.txt", strings.NewReader("mu\n0.5\n-1.25\n3e-2\n"))
	require.NoError(t, err)

	assert.Equal(t, "mu.txt", tbl.Source)
	assert.Equal(t, "mu", tbl.Name)
	assert.Equal(t, []int{3}, tbl.Trace.Shape(), "single column is stored flat")
	assert.Equal(t, []float64{0.5, -1.25, 0.03}, tbl.Trace.Values())
}

func TestParseVectorTable(t *testing.T) {
	text := "theta\n1 2 3\n4\t5  6\n"
	tbl, err := Parse("theta.txt", strings.NewReader(text))
	require.NoError(t, err)

	assert.Equal(t, []int{2, 3}, tbl.Trace.Shape())
	col, err := tbl.Trace.Column(1)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 5}, col)
}

func TestParseTrailingBlankLines(t *testing.T) {
	tbl, err := Parse("s", strings.NewReader("sigma\n1\n2\n\n\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Trace.Iterations())
}

func TestParseNormalizesHeader(t *testing.T) {
	tbl, err := Parse("s", strings.NewReader("  éta  \n1\n"))
	require.NoError(t, err)
	assert.Equal(t, "éta", tbl.Name)
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantLine string
	}{
		{"empty input", "", ""},
		{"empty header", "\n1\n", "1"},
		{"two names in header", "a b\n1 2\n", "1"},
		{"zero rows", "mu\n", ""},
		{"only blank rows", "mu\n\n\n", ""},
		{"interior blank row", "mu\n1\n\n2\n", "3"},
		{"non-numeric", "mu\n1\nabc\n", "3"},
		{"nan", "mu\n1\nNaN\n", "3"},
		{"infinite", "mu\n+Inf\n", "2"},
		{"ragged", "mu\n1 2\n3\n", "3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad.txt", strings.NewReader(tt.text))
			require.Error(t, err)
			assert.True(t, trace.IsMalformedTable(err), "got %v", err)

			var te *trace.Error
			require.ErrorAs(t, err, &te)
			assert.Equal(t, "bad.txt", te.Source)
			assert.Equal(t, tt.wantLine, te.Details["line"])
		})
	}
}

func TestLoadFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "omega.txt")
	require.NoError(t, os.WriteFile(path, []byte("omega\n1 2\n3 4\n"), 0o644))

	tbl, err := Load(FileSource(path))
	require.NoError(t, err)
	assert.Equal(t, "omega", tbl.Name)
	assert.Equal(t, path, tbl.Source)
	assert.Equal(t, []int{2, 2}, tbl.Trace.Shape())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(FileSource(filepath.Join(t.TempDir(), "missing.txt")))
	require.Error(t, err)
	assert.True(t, trace.IsMalformedTable(err))
}

func TestFiles(t *testing.T) {
	sources := Files("a.txt", "b.txt")
	require.Len(t, sources, 2)
	assert.Equal(t, "b.txt", sources[1].Name())
}
