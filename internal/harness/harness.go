package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/chainstat/internal/analysis"
	"github.com/roach88/chainstat/internal/store"
	"github.com/roach88/chainstat/internal/synth"
	"github.com/roach88/chainstat/internal/trace"
)

// Harness is the test execution engine.
// Each run gets a fresh sample store, so scenarios cannot see each other.
type Harness struct {
	samples *store.Samples
	an      *analysis.Analyzer
	logger  *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Execution flow:
// 1. Create a fresh sample store
// 2. Generate and ingest every chain in order
// 3. Evaluate assertions in order
// 4. Return result with pass/fail, chain shapes and outcomes
//
// Assertion failures are reported in the Result. An error is returned only
// when the scenario cannot be set up.
func Run(scenario *Scenario, opts ...analysis.Option) (*Result, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	samples := store.New(store.WithLogger(logger))

	h := &Harness{
		samples: samples,
		an:      analysis.New(samples, append([]analysis.Option{analysis.WithLogger(logger)}, opts...)...),
		logger:  logger,
	}

	result := NewResult()
	chains, err := h.ingest(scenario.Chains, result)
	if err != nil {
		return nil, fmt.Errorf("failed to generate chains: %w", err)
	}

	actx := &assertionContext{an: h.an, chains: chains}
	for _, a := range scenario.Assertions {
		detail, err := actx.evaluate(a)
		result.record(a, detail, err)
	}

	return result, nil
}

// ingest generates each chain and stores it, recording its shape.
func (h *Harness) ingest(chains []Chain, result *Result) (map[string]Chain, error) {
	byName := make(map[string]Chain, len(chains))
	for _, c := range chains {
		t, err := generate(c)
		if err != nil {
			return nil, fmt.Errorf("chain %s: %w", c.Name, err)
		}
		name := trace.NormalizeName(c.Name)
		if !h.samples.Put(name, t) {
			return nil, fmt.Errorf("chain %s: duplicate name", c.Name)
		}
		byName[name] = c
		result.Chains = append(result.Chains, ChainInfo{Name: name, Shape: t.Shape()})
		h.logger.Debug("chain generated", "name", name, "process", c.Process, "shape", t.Shape())
	}
	return byName, nil
}

// generate draws the synthetic trace a chain describes.
func generate(c Chain) (trace.Trace, error) {
	switch c.Process {
	case ProcessAR1:
		dims := c.Dims
		if dims == 0 {
			dims = 1
		}
		return synth.AR1Trace(c.Length, dims, c.Phi, c.Seed)
	case ProcessGaussian2:
		return synth.Gaussian2(c.Length, c.Rho, c.Seed)
	case ProcessConstant:
		return synth.Constant(c.Length, c.Value)
	default:
		return trace.Trace{}, fmt.Errorf("unknown process %q", c.Process)
	}
}
