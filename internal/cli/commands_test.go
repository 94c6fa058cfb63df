package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/chainstat/internal/posterior"
	"github.com/roach88/chainstat/internal/synth"
	"github.com/roach88/chainstat/internal/trace"
)

// runCLI executes the root command with args and returns stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// writeTable writes tr as a sample table named name and returns its path.
func writeTable(t *testing.T, dir, name string, tr trace.Trace) string {
	t.Helper()
	var b strings.Builder
	b.WriteString(name + "\n")
	for i := 0; i < tr.Iterations(); i++ {
		for j, v := range tr.Row(i) {
			if j > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
		b.WriteByte('\n')
	}
	path := filepath.Join(dir, name+".txt")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0644))
	return path
}

// testTables writes an AR(1) chain "mu" (τ = 3) and a correlated 2D Gaussian
// "theta".
func testTables(t *testing.T) (mu, theta string) {
	t.Helper()
	dir := t.TempDir()
	muTrace, err := synth.AR1Trace(2000, 1, 0.5, 7)
	require.NoError(t, err)
	thetaTrace, err := synth.Gaussian2(2000, 0.6, 11)
	require.NoError(t, err)
	return writeTable(t, dir, "mu", muTrace), writeTable(t, dir, "theta", thetaTrace)
}

// decodeData unmarshals a successful JSON response's data into v.
func decodeData(t *testing.T, out string, v any) {
	t.Helper()
	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	require.Equal(t, "ok", resp.Status, out)
	require.NoError(t, json.Unmarshal(resp.Data, v))
}

// decodeError unmarshals a failed JSON response's error.
func decodeError(t *testing.T, out string) *CLIError {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	require.Equal(t, "error", resp.Status, out)
	require.NotNil(t, resp.Error)
	return resp.Error
}

func TestIngestThenShow(t *testing.T) {
	mu, theta := testTables(t)
	db := filepath.Join(t.TempDir(), "chains.db")

	out, err := runCLI(t, "ingest", "--db", db, "--format", "json", mu, theta)
	require.NoError(t, err)
	var ingest IngestResult
	decodeData(t, out, &ingest)
	assert.NotEmpty(t, ingest.BatchID)
	assert.Equal(t, []string{"mu", "theta"}, ingest.Saved)
	assert.Empty(t, ingest.Skipped)

	out, err = runCLI(t, "show", "--db", db, "--format", "json")
	require.NoError(t, err)
	var shown []ShowResult
	decodeData(t, out, &shown)
	require.Len(t, shown, 2)
	assert.Equal(t, "mu", shown[0].Name)
	assert.Equal(t, []int{2000}, shown[0].Shape)
	assert.Equal(t, "theta", shown[1].Name)
	assert.Equal(t, []int{2000, 2}, shown[1].Shape)
	assert.Equal(t, 2, shown[1].Dims)
	assert.Len(t, shown[1].Digest, 64)

	out, err = runCLI(t, "show", "--db", db, "theta")
	require.NoError(t, err)
	assert.Contains(t, out, "theta\n")
	assert.Contains(t, out, "iterations: 2000")
}

func TestIngestKeepsFirstWrite(t *testing.T) {
	mu, _ := testTables(t)
	db := filepath.Join(t.TempDir(), "chains.db")

	_, err := runCLI(t, "ingest", "--db", db, mu)
	require.NoError(t, err)

	out, err := runCLI(t, "ingest", "--db", db, mu)
	require.NoError(t, err)
	assert.Contains(t, out, "= mu (already archived)")
}

func TestIngestReportsBadTables(t *testing.T) {
	mu, _ := testTables(t)
	bad := filepath.Join(t.TempDir(), "bad.txt")
	require.NoError(t, os.WriteFile(bad, []byte("sigma\n1\nx\n"), 0644))
	db := filepath.Join(t.TempDir(), "chains.db")

	out, err := runCLI(t, "ingest", "--db", db, bad, mu)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✓ mu")
	assert.Contains(t, out, "✗ MALFORMED_TABLE")

	// The good table was still archived.
	out, err = runCLI(t, "show", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "mu\n")
	assert.NotContains(t, out, "sigma")
}

func TestIngestRequiresDatabase(t *testing.T) {
	mu, _ := testTables(t)

	_, err := runCLI(t, "ingest", mu)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "--db")
}

func TestNoSamples(t *testing.T) {
	_, err := runCLI(t, "show")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "no samples")
}

func TestAcorCommand(t *testing.T) {
	mu, _ := testTables(t)

	out, err := runCLI(t, "acor", "--table", mu, "--format", "json", "--lags", "5", "mu")
	require.NoError(t, err)

	var result AcorResult
	decodeData(t, out, &result)
	assert.Equal(t, "mu", result.Name)
	require.Len(t, result.Tau, 1)
	assert.InDelta(t, 3.0, result.Tau[0], 1.0)
	require.Len(t, result.ACF, 6)
	assert.InDelta(t, 1.0, result.ACF[0], 1e-12)
	assert.InDelta(t, 0.5, result.ACF[1], 0.1)

	out, err = runCLI(t, "acor", "--table", mu, "mu")
	require.NoError(t, err)
	assert.Contains(t, out, "tau[0] = ")
}

func TestESSMatchesAcor(t *testing.T) {
	_, theta := testTables(t)

	out, err := runCLI(t, "acor", "--table", theta, "--format", "json", "theta")
	require.NoError(t, err)
	var acor AcorResult
	decodeData(t, out, &acor)

	out, err = runCLI(t, "ess", "--table", theta, "--format", "json", "theta")
	require.NoError(t, err)
	var ess ESSResult
	decodeData(t, out, &ess)

	assert.Equal(t, 2000, ess.Iterations)
	require.Len(t, ess.ESS, 2)
	for d := range ess.ESS {
		assert.InDelta(t, 2000/acor.Tau[d], ess.ESS[d], 1e-9)
	}
}

func TestSummaryCommand(t *testing.T) {
	_, theta := testTables(t)

	out, err := runCLI(t, "summary", "--table", theta, "theta")
	require.NoError(t, err)
	assert.Contains(t, out, "Posterior summary for parameter theta element 0")
	assert.Contains(t, out, "Posterior summary for parameter theta element 1")
	assert.Contains(t, out, "95% credibility interval")

	out, err = runCLI(t, "summary", "--table", theta, "--format", "json", "theta")
	require.NoError(t, err)
	var sums []posterior.Summary
	decodeData(t, out, &sums)
	require.Len(t, sums, 2)
	assert.InDelta(t, 0, sums[0].Median, 0.15)
	assert.InDelta(t, 1, sums[0].StdDev, 0.1)
	assert.Len(t, sums[0].Intervals, 3)
}

func TestContoursCommand(t *testing.T) {
	_, theta := testTables(t)

	out, err := runCLI(t, "contours", "--table", theta, "--format", "json",
		"--bins", "60", "theta", "0", "theta", "1")
	require.NoError(t, err)

	var result ContoursResult
	decodeData(t, out, &result)
	assert.Equal(t, "theta[0]", result.X)
	assert.Equal(t, "theta[1]", result.Y)
	assert.Equal(t, 2000, result.Draws)
	require.Len(t, result.Levels, 3)
	for i, lvl := range result.Levels {
		if i > 0 {
			assert.Less(t, lvl.Fraction, result.Levels[i-1].Fraction, "outer levels first")
			assert.Less(t, lvl.Area, result.Levels[i-1].Area)
		}
		assert.Positive(t, lvl.Rings)
		assert.InDelta(t, lvl.Fraction, lvl.Coverage, 0.05)
		assert.Empty(t, lvl.Paths)
	}
}

func TestContoursSimplifiedRings(t *testing.T) {
	_, theta := testTables(t)

	out, err := runCLI(t, "contours", "--table", theta, "--format", "json",
		"--bins", "60", "--fraction", "0.5", "theta", "0", "theta", "1")
	require.NoError(t, err)
	var full ContoursResult
	decodeData(t, out, &full)

	out, err = runCLI(t, "contours", "--table", theta, "--format", "json",
		"--bins", "60", "--fraction", "0.5", "--simplify", "0.05", "--rings",
		"theta", "0", "theta", "1")
	require.NoError(t, err)
	var simple ContoursResult
	decodeData(t, out, &simple)

	require.Len(t, simple.Levels, 1)
	lvl := simple.Levels[0]
	assert.Equal(t, 0.5, lvl.Fraction)
	assert.Less(t, lvl.Vertices, full.Levels[0].Vertices)
	require.Len(t, lvl.Paths, lvl.Rings)
	for _, path := range lvl.Paths {
		assert.Equal(t, path[0], path[len(path)-1], "rings are closed")
	}
}

func TestContoursInvalidDimension(t *testing.T) {
	_, theta := testTables(t)

	_, err := runCLI(t, "contours", "--table", theta, "theta", "x", "theta", "1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `invalid dimension "x"`)
}

func TestHistCommand(t *testing.T) {
	_, theta := testTables(t)

	out, err := runCLI(t, "hist", "--table", theta, "--format", "json",
		"--dim", "1", "--bins", "12", "--kde", "40", "theta")
	require.NoError(t, err)

	var result HistResult
	decodeData(t, out, &result)
	assert.Equal(t, 1, result.Dim)
	require.Len(t, result.Histogram.Counts, 12)
	assert.Len(t, result.Histogram.Edges, 13)
	total := 0
	for _, c := range result.Histogram.Counts {
		total += c
	}
	assert.Equal(t, 2000, total)
	require.NotNil(t, result.Density)
	assert.Len(t, result.Density.X, 40)
	assert.Positive(t, result.Density.Bandwidth)
}

func TestHistUsesConfiguredBins(t *testing.T) {
	mu, _ := testTables(t)
	cfgPath := filepath.Join(t.TempDir(), "chainstat.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("histogram:\n  bins: 7\n"), 0644))

	out, err := runCLI(t, "hist", "--config", cfgPath, "--table", mu, "--format", "json", "mu")
	require.NoError(t, err)
	var result HistResult
	decodeData(t, out, &result)
	assert.Len(t, result.Histogram.Counts, 7)
}

func TestInvalidConfig(t *testing.T) {
	mu, _ := testTables(t)
	cfgPath := filepath.Join(t.TempDir(), "chainstat.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("acor:\n  window: 0\n"), 0644))

	_, err := runCLI(t, "acor", "--config", cfgPath, "--table", mu, "mu")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestDiagnosticErrors(t *testing.T) {
	dir := t.TempDir()
	flat, err := synth.Constant(500, 2.5)
	require.NoError(t, err)
	c := writeTable(t, dir, "c", flat)
	short := filepath.Join(dir, "short.txt")
	require.NoError(t, os.WriteFile(short, []byte("short\n1\n2\n3\n"), 0644))

	tests := []struct {
		name string
		args []string
		code string
	}{
		{"constant acor", []string{"acor", "c"}, "DEGENERATE_TRACE"},
		{"constant summary", []string{"summary", "c"}, "DEGENERATE_TRACE"},
		{"short acor", []string{"acor", "short"}, "INSUFFICIENT_SAMPLES"},
		{"missing name", []string{"ess", "missing"}, "NOT_FOUND"},
		{"missing dim", []string{"hist", "--dim", "3", "c"}, "NOT_FOUND"},
		{"constant contours", []string{"contours", "c", "0", "c", "0"}, "DEGENERATE_TRACE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--table", c, "--table", short, "--format", "json"}, tt.args...)
			out, err := runCLI(t, args...)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Equal(t, tt.code, decodeError(t, out).Code)
		})
	}
}
