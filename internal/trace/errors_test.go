package trace

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "not found",
			err:      NotFound("theta"),
			expected: "NOT_FOUND: parameter not in sample store (name=theta)",
		},
		{
			name:     "malformed with line",
			err:      MalformedTable("chain.txt", 3, "non-numeric value \"abc\""),
			expected: "MALFORMED_TABLE: line 3: non-numeric value \"abc\" (source=chain.txt)",
		},
		{
			name:     "degenerate",
			err:      Degenerate("zero variance"),
			expected: "DEGENERATE_TRACE: zero variance",
		},
		{
			name:     "named source",
			err:      MalformedTable("chain.txt", 0, "no rows").WithName("mu"),
			expected: "MALFORMED_TABLE: no rows (name=mu, source=chain.txt)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestIsHelpersThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("dimension 2: %w", InsufficientSamples("no window", 10))

	assert.True(t, IsInsufficientSamples(wrapped))
	assert.False(t, IsDegenerate(wrapped))
	assert.Equal(t, ErrCodeInsufficientSamples, CodeOf(wrapped))
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))

	assert.True(t, IsNotFound(NotFound("x")))
	assert.True(t, IsMalformedTable(MalformedTable("s", 1, "m")))
	assert.True(t, IsDegenerate(Degenerate("m")))
	assert.True(t, IsContourConvergence(ContourConvergence(0.9, "m")))
	assert.True(t, IsShapeMismatch(ShapeMismatch("x", 1, 2)))
}

func TestWithDetailDoesNotShareMap(t *testing.T) {
	base := DimensionNotFound("", 3, 2)
	named := base.WithName("sigma").WithDetail("operation", "acor")

	assert.Equal(t, "", base.Name)
	assert.NotContains(t, base.Details, "operation")
	assert.Equal(t, "acor", named.Details["operation"])
	assert.Equal(t, "3", named.Details["dim"])
}
