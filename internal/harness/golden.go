package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/chainstat/internal/trace"
)

// Snapshot captures the deterministic part of a scenario run.
// Measured values are left out so snapshots survive estimator refinements
// that keep every assertion's verdict.
type Snapshot struct {
	ScenarioName string      `json:"scenario_name"`
	Chains       []ChainInfo `json:"chains"`
	Outcomes     []Outcome   `json:"outcomes"`
}

// NewSnapshot builds the snapshot of a result.
func NewSnapshot(scenarioName string, result *Result) *Snapshot {
	return &Snapshot{
		ScenarioName: scenarioName,
		Chains:       result.Chains,
		Outcomes:     result.Outcomes,
	}
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical JSON serialization.
func (s *Snapshot) toCanonicalMap() map[string]any {
	chains := make([]any, len(s.Chains))
	for i, c := range s.Chains {
		chains[i] = map[string]any{
			"name":  c.Name,
			"shape": c.Shape,
		}
	}

	outcomes := make([]any, len(s.Outcomes))
	for i, o := range s.Outcomes {
		outcomes[i] = map[string]any{
			"type":   o.Type,
			"target": o.Target,
			"pass":   o.Pass,
		}
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"chains":        chains,
		"assertions":    outcomes,
	}
}

// Marshal returns the canonical JSON form of the snapshot.
func (s *Snapshot) Marshal() ([]byte, error) {
	return trace.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := NewSnapshot(scenarioName, result).Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}

// GoldenPath returns the golden file that belongs to a scenario file:
// golden/{basename}.golden in the scenario's directory.
func GoldenPath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}

// WriteGolden writes the snapshot of result as the scenario's golden file.
func WriteGolden(scenarioFile, scenarioName string, result *Result) error {
	data, err := NewSnapshot(scenarioName, result).Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	path := GoldenPath(scenarioFile)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// CompareGolden reports whether result matches the scenario's golden file.
// A missing golden file is reported through os.ErrNotExist.
func CompareGolden(scenarioFile, scenarioName string, result *Result) (bool, error) {
	golden, err := os.ReadFile(GoldenPath(scenarioFile))
	if err != nil {
		return false, err
	}

	current, err := NewSnapshot(scenarioName, result).Marshal()
	if err != nil {
		return false, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return bytes.Equal(bytes.TrimSpace(golden), current), nil
}
