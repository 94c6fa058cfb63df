package table

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/roach88/chainstat/internal/trace"
)

// maxLineBytes bounds a single row. Wide vector-valued parameters can produce
// long rows, so this is well above bufio's 64KiB default.
const maxLineBytes = 16 << 20

// Table is a parsed ingestion source.
type Table struct {
	// Source identifies where the table came from (file path or label).
	Source string

	// Name is the NFC-normalized parameter name from the header.
	Name string

	// Trace holds the parsed draws.
	Trace trace.Trace
}

// Parse reads a table from r. source labels errors.
func Parse(source string, r io.Reader) (*Table, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, trace.MalformedTable(source, 1, err.Error())
		}
		return nil, trace.MalformedTable(source, 0, "empty table: missing header")
	}

	header := strings.Fields(sc.Text())
	switch len(header) {
	case 0:
		return nil, trace.MalformedTable(source, 1, "empty header: expected a parameter name")
	case 1:
	default:
		return nil, trace.MalformedTable(source, 1,
			fmt.Sprintf("header names %d parameters, expected exactly one", len(header)))
	}
	name := trace.NormalizeName(header[0])

	var (
		data  []float64
		width int
		rows  int
		blank int
		line  = 1
	)
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			if blank == 0 {
				blank = line
			}
			continue
		}
		// Blank lines are only tolerated as trailing padding.
		if blank > 0 {
			return nil, trace.MalformedTable(source, blank, "blank row").WithName(name)
		}
		if rows == 0 {
			width = len(fields)
		} else if len(fields) != width {
			return nil, trace.MalformedTable(source, line,
				fmt.Sprintf("row has %d columns, expected %d", len(fields), width)).WithName(name)
		}
		for _, f := range fields {
			v, err := parseValue(f)
			if err != nil {
				return nil, trace.MalformedTable(source, line, err.Error()).WithName(name)
			}
			data = append(data, v)
		}
		rows++
	}
	if err := sc.Err(); err != nil {
		return nil, trace.MalformedTable(source, line+1, err.Error()).WithName(name)
	}
	if rows == 0 {
		return nil, trace.MalformedTable(source, 0, "table has no rows").WithName(name)
	}

	shape := []int{rows, width}
	if width == 1 {
		shape = []int{rows}
	}
	tr, err := trace.New(shape, data)
	if err != nil {
		return nil, trace.MalformedTable(source, 0, err.Error()).WithName(name)
	}

	return &Table{Source: source, Name: name, Trace: tr}, nil
}

// parseValue parses one cell. NaN and infinities are rejected so that every
// stored trace is finite.
func parseValue(field string) (float64, error) {
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, fmt.Errorf("non-numeric value %q", field)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", field)
	}
	return v, nil
}
