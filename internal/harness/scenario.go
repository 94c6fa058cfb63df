package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/chainstat/internal/trace"
)

// Scenario defines a harness test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Chains are generated and ingested, in order, before any assertion runs.
	Chains []Chain `yaml:"chains"`

	// Assertions are evaluated in order against the ingested chains.
	Assertions []Assertion `yaml:"assertions"`
}

// Chain describes one synthetic trace.
type Chain struct {
	Name    string `yaml:"name"`
	Process string `yaml:"process"`
	Length  int    `yaml:"length"`

	// Dims is the number of AR(1) columns. Zero means one.
	Dims int `yaml:"dims,omitempty"`

	Phi   float64 `yaml:"phi,omitempty"`
	Rho   float64 `yaml:"rho,omitempty"`
	Value float64 `yaml:"value,omitempty"`
	Seed  uint64  `yaml:"seed,omitempty"`
}

// Ref names one dimension of a chain.
type Ref struct {
	Chain string `yaml:"chain"`
	Dim   int    `yaml:"dim"`
}

// Assertion checks one property of the ingested chains.
type Assertion struct {
	// Type specifies the assertion type (see the Assert constants).
	Type string `yaml:"type"`

	// Chain and Dim select the target of tau, ess_identity, median and error.
	Chain string `yaml:"chain,omitempty"`
	Dim   int    `yaml:"dim,omitempty"`

	// X and Y select the pair used by coverage and by error on contours.
	X *Ref `yaml:"x,omitempty"`
	Y *Ref `yaml:"y,omitempty"`

	// Expect is the target value for tau and median.
	Expect *float64 `yaml:"expect,omitempty"`

	// Tolerance is relative for tau and absolute for median and coverage.
	Tolerance float64 `yaml:"tolerance,omitempty"`

	// Fractions overrides the contour mass fractions used by coverage.
	Fractions []float64 `yaml:"fractions,omitempty"`

	// Operation and Code are used by error.
	Operation string `yaml:"operation,omitempty"`
	Code      string `yaml:"code,omitempty"`
}

// Chain process constants.
const (
	ProcessAR1       = "ar1"
	ProcessGaussian2 = "gaussian2"
	ProcessConstant  = "constant"
)

// Assertion type constants.
const (
	AssertTau         = "tau"
	AssertESSIdentity = "ess_identity"
	AssertMedian      = "median"
	AssertCoverage    = "coverage"
	AssertError       = "error"
)

// Operation names accepted by error assertions.
const (
	OpGet             = "get"
	OpAutocorrelation = "autocorrelation"
	OpESS             = "ess"
	OpSummary         = "summary"
	OpContours        = "contours"
	OpHistogram       = "histogram"
)

// Default tolerances applied when an assertion leaves Tolerance at zero.
const (
	DefaultTauTolerance      = 0.15
	DefaultCoverageTolerance = 0.03
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field checking.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Chains) == 0 {
		return fmt.Errorf("chains list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	seen := make(map[string]bool)
	for i, c := range s.Chains {
		if err := validateChain(i, &c); err != nil {
			return err
		}
		key := trace.NormalizeName(c.Name)
		if seen[key] {
			return fmt.Errorf("chains[%d]: duplicate name %q", i, c.Name)
		}
		seen[key] = true
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}

	return nil
}

func validateChain(index int, c *Chain) error {
	if trace.NormalizeName(c.Name) == "" {
		return fmt.Errorf("chains[%d]: name is required", index)
	}
	if c.Length <= 0 {
		return fmt.Errorf("chains[%d]: length must be positive", index)
	}

	switch c.Process {
	case ProcessAR1:
		if c.Dims < 0 {
			return fmt.Errorf("chains[%d]: dims must be non-negative", index)
		}
		if c.Phi <= -1 || c.Phi >= 1 {
			return fmt.Errorf("chains[%d]: phi must be in (-1, 1)", index)
		}
	case ProcessGaussian2:
		if c.Rho <= -1 || c.Rho >= 1 {
			return fmt.Errorf("chains[%d]: rho must be in (-1, 1)", index)
		}
	case ProcessConstant:
	case "":
		return fmt.Errorf("chains[%d]: process is required", index)
	default:
		return fmt.Errorf("chains[%d]: unknown process %q", index, c.Process)
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Tolerance < 0 {
		return fmt.Errorf("assertions[%d]: tolerance must be non-negative", index)
	}

	switch a.Type {
	case AssertTau, AssertESSIdentity:
		if a.Chain == "" {
			return fmt.Errorf("assertions[%d]: chain is required for %s", index, a.Type)
		}
	case AssertMedian:
		if a.Chain == "" {
			return fmt.Errorf("assertions[%d]: chain is required for median", index)
		}
		if a.Expect == nil {
			return fmt.Errorf("assertions[%d]: expect is required for median", index)
		}
	case AssertCoverage:
		if a.X == nil || a.Y == nil {
			return fmt.Errorf("assertions[%d]: x and y are required for coverage", index)
		}
	case AssertError:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for error", index)
		}
		switch a.Operation {
		case OpContours:
			if a.X == nil || a.Y == nil {
				return fmt.Errorf("assertions[%d]: x and y are required for contours", index)
			}
		case OpGet, OpAutocorrelation, OpESS, OpSummary, OpHistogram:
			if a.Chain == "" {
				return fmt.Errorf("assertions[%d]: chain is required for %s", index, a.Operation)
			}
		case "":
			return fmt.Errorf("assertions[%d]: operation is required for error", index)
		default:
			return fmt.Errorf("assertions[%d]: unknown operation %q", index, a.Operation)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
