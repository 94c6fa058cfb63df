package table

import (
	"io"
	"os"
	"strings"

	"github.com/roach88/chainstat/internal/trace"
)

// Source is a named, openable table.
type Source interface {
	// Name labels the source in errors and logs.
	Name() string

	// Open returns a reader over the table text. The caller closes it.
	Open() (io.ReadCloser, error)
}

// FileSource reads a table from a file path.
type FileSource string

// Name returns the file path.
func (f FileSource) Name() string { return string(f) }

// Open opens the file.
func (f FileSource) Open() (io.ReadCloser, error) {
	return os.Open(string(f))
}

// Files returns a FileSource for each path.
func Files(paths ...string) []Source {
	sources := make([]Source, len(paths))
	for i, p := range paths {
		sources[i] = FileSource(p)
	}
	return sources
}

// TextSource is an in-memory table, mostly useful in tests.
type TextSource struct {
	Label string
	Text  string
}

// Name returns the label.
func (s TextSource) Name() string { return s.Label }

// Open returns a reader over the text.
func (s TextSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(s.Text)), nil
}

// Load opens and parses a source.
// Failures to open are reported as MALFORMED_TABLE along with parse errors,
// since in both cases the source contributes nothing.
func Load(src Source) (*Table, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, trace.MalformedTable(src.Name(), 0, err.Error())
	}
	defer rc.Close()
	return Parse(src.Name(), rc)
}
