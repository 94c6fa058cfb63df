package trace

import (
	"errors"
	"fmt"
	"maps"
)

// Error represents a diagnostic failure surfaced to the caller.
//
// Diagnostics feeding credibility claims never substitute fallback values, so
// every failure mode is reported as an Error with a code:
//   - Not found: parameter name or dimension absent from the store
//   - Malformed table: ingestion source failed to parse
//   - Degenerate trace: zero variance, non-finite values, singular covariance
//   - Insufficient samples: too short for a stable autocorrelation estimate
//   - Contour convergence: level bisection could not bracket or converge
//   - Shape mismatch: draws or paired columns disagree in size
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Name identifies the affected parameter, if known.
	Name string

	// Source identifies the ingestion source (for malformed tables).
	Source string

	// Details contains additional context.
	Details map[string]string
}

// ErrorCode categorizes diagnostic errors.
type ErrorCode string

const (
	// ErrCodeNotFound indicates a parameter name or dimension is absent.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeMalformedTable indicates an ingestion source failed to parse.
	ErrCodeMalformedTable ErrorCode = "MALFORMED_TABLE"

	// ErrCodeDegenerateTrace indicates a sequence the estimators are undefined for.
	ErrCodeDegenerateTrace ErrorCode = "DEGENERATE_TRACE"

	// ErrCodeInsufficientSamples indicates a trace too short for a stable estimate.
	ErrCodeInsufficientSamples ErrorCode = "INSUFFICIENT_SAMPLES"

	// ErrCodeContourConvergence indicates level bisection failed.
	ErrCodeContourConvergence ErrorCode = "CONTOUR_CONVERGENCE"

	// ErrCodeShapeMismatch indicates draws or columns of incompatible size.
	ErrCodeShapeMismatch ErrorCode = "SHAPE_MISMATCH"
)

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Name != "" && e.Source != "":
		return fmt.Sprintf("%s: %s (name=%s, source=%s)", e.Code, e.Message, e.Name, e.Source)
	case e.Name != "":
		return fmt.Sprintf("%s: %s (name=%s)", e.Code, e.Message, e.Name)
	case e.Source != "":
		return fmt.Sprintf("%s: %s (source=%s)", e.Code, e.Message, e.Source)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithName returns a copy of e attributed to the named parameter.
func (e *Error) WithName(name string) *Error {
	c := *e
	c.Name = name
	c.Details = maps.Clone(e.Details)
	return &c
}

// WithDetail returns a copy of e with an additional detail entry.
func (e *Error) WithDetail(key, value string) *Error {
	c := *e
	c.Details = maps.Clone(e.Details)
	if c.Details == nil {
		c.Details = make(map[string]string, 1)
	}
	c.Details[key] = value
	return &c
}

// CodeOf returns the ErrorCode of err, or "" if err is not an *Error.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) ErrorCode {
	var te *Error
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}

// IsNotFound returns true if the error is a not-found error.
func IsNotFound(err error) bool { return CodeOf(err) == ErrCodeNotFound }

// IsMalformedTable returns true if the error is a malformed-table error.
func IsMalformedTable(err error) bool { return CodeOf(err) == ErrCodeMalformedTable }

// IsDegenerate returns true if the error is a degenerate-trace error.
func IsDegenerate(err error) bool { return CodeOf(err) == ErrCodeDegenerateTrace }

// IsInsufficientSamples returns true if the error is an insufficient-samples error.
func IsInsufficientSamples(err error) bool { return CodeOf(err) == ErrCodeInsufficientSamples }

// IsContourConvergence returns true if the error is a contour-convergence error.
func IsContourConvergence(err error) bool { return CodeOf(err) == ErrCodeContourConvergence }

// IsShapeMismatch returns true if the error is a shape-mismatch error.
func IsShapeMismatch(err error) bool { return CodeOf(err) == ErrCodeShapeMismatch }

// NotFound creates an Error for a parameter absent from the store.
func NotFound(name string) *Error {
	return &Error{
		Code:    ErrCodeNotFound,
		Message: "parameter not in sample store",
		Name:    name,
	}
}

// DimensionNotFound creates an Error for a dimension index outside [0, dims).
func DimensionNotFound(name string, dim, dims int) *Error {
	return &Error{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("dimension %d out of range [0, %d)", dim, dims),
		Name:    name,
		Details: map[string]string{
			"dim":  fmt.Sprintf("%d", dim),
			"dims": fmt.Sprintf("%d", dims),
		},
	}
}

// MalformedTable creates an Error for an ingestion source that failed to parse.
// line is 1-based; zero means the failure is not tied to a line.
func MalformedTable(source string, line int, message string) *Error {
	e := &Error{
		Code:    ErrCodeMalformedTable,
		Message: message,
		Source:  source,
	}
	if line > 0 {
		e.Message = fmt.Sprintf("line %d: %s", line, message)
		e.Details = map[string]string{"line": fmt.Sprintf("%d", line)}
	}
	return e
}

// Degenerate creates an Error for a sequence the estimators are undefined for.
func Degenerate(message string) *Error {
	return &Error{
		Code:    ErrCodeDegenerateTrace,
		Message: message,
	}
}

// InsufficientSamples creates an Error for a sequence too short for a stable estimate.
func InsufficientSamples(message string, n int) *Error {
	return &Error{
		Code:    ErrCodeInsufficientSamples,
		Message: message,
		Details: map[string]string{"samples": fmt.Sprintf("%d", n)},
	}
}

// ContourConvergence creates an Error for a mass fraction whose level could not be found.
func ContourConvergence(fraction float64, message string) *Error {
	return &Error{
		Code:    ErrCodeContourConvergence,
		Message: fmt.Sprintf("fraction %g: %s", fraction, message),
		Details: map[string]string{"fraction": fmt.Sprintf("%g", fraction)},
	}
}

// ShapeMismatch creates an Error for a draw or column of the wrong size.
func ShapeMismatch(name string, want, got int) *Error {
	return &Error{
		Code:    ErrCodeShapeMismatch,
		Message: fmt.Sprintf("expected %d values, got %d", want, got),
		Name:    name,
		Details: map[string]string{
			"want": fmt.Sprintf("%d", want),
			"got":  fmt.Sprintf("%d", got),
		},
	}
}
