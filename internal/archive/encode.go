package archive

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/roach88/chainstat/internal/trace"
)

// encodeShape returns the canonical JSON array for a trace shape.
func encodeShape(shape []int) (string, error) {
	b, err := trace.MarshalCanonical(shape)
	if err != nil {
		return "", fmt.Errorf("encode shape: %w", err)
	}
	return string(b), nil
}

func decodeShape(s string) ([]int, error) {
	var shape []int
	if err := json.Unmarshal([]byte(s), &shape); err != nil {
		return nil, fmt.Errorf("decode shape: %w", err)
	}
	return shape, nil
}

// encodeData packs values as little-endian IEEE 754 doubles.
func encodeData(values []float64) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(8 * len(values))
	if err := binary.Write(&buf, binary.LittleEndian, values); err != nil {
		return nil, fmt.Errorf("encode data: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeData(b []byte) ([]float64, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("decode data: %d bytes is not a whole number of doubles", len(b))
	}
	values := make([]float64, len(b)/8)
	if err := binary.Read(bytes.NewReader(b), binary.LittleEndian, values); err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	return values, nil
}
