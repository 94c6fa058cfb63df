// Package harness runs scenario files that check the chainstat estimators
// against synthetic chains with known answers.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: ar1_tau
//	description: "AR(1) chains recover the analytic autocorrelation time"
//	chains:
//	  - name: x
//	    process: ar1
//	    length: 100000
//	    phi: 0.5
//	    seed: 1
//	assertions:
//	  - type: tau
//	    chain: x
//	    tolerance: 0.15
//	  - type: ess_identity
//	    chain: x
//
// # Chain Processes
//
//   - ar1: independent AR(1) columns (length, dims, phi, seed)
//   - gaussian2: iid bivariate normal draws (length, rho, seed)
//   - constant: a flat trace of one repeated value (length, value)
//
// # Assertion Types
//
//   - tau: autocorrelation time of one dimension within a relative tolerance
//     of expect, or of the analytic value for an ar1 chain
//   - ess_identity: effective sample size equals N/τ exactly in every dimension
//   - median: posterior median of one dimension within an absolute tolerance
//   - coverage: the share of points inside each joint density contour is
//     within tolerance of the contour's mass fraction
//   - error: an operation fails with the given error code
//
// # Deterministic Testing
//
// Chains are generated from seeded sources, so a scenario always produces the
// same snapshot. Snapshots hold chain shapes and assertion outcomes, never
// estimates, and are compared with golden files.
package harness
