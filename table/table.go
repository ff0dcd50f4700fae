// Package table reads the tabular datasets whose columns get annotated.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/c360studio/nidm-annotate/annotation"
)

// Table is a header row plus data rows. Every row has one cell per column.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// New builds a table, rejecting empty or duplicate column names and rows of
// the wrong width.
func New(name string, columns []string, rows [][]string) (*Table, error) {
	seen := make(map[string]bool, len(columns))
	for i, c := range columns {
		if strings.TrimSpace(c) == "" {
			return nil, fmt.Errorf("%w: column %d of %s has no name", annotation.ErrValidation, i+1, name)
		}
		if seen[c] {
			return nil, fmt.Errorf("%w: duplicate column %q in %s", annotation.ErrValidation, c, name)
		}
		seen[c] = true
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("%w: row %d of %s has %d cells, want %d",
				annotation.ErrValidation, i+1, name, len(row), len(columns))
		}
	}
	return &Table{Name: name, Columns: columns, Rows: rows}, nil
}

// Has reports whether the table has column.
func (t *Table) Has(column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// Column returns the values of the named column.
func (t *Table) Column(name string) ([]string, error) {
	idx := -1
	for i, c := range t.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s has no column %q", annotation.ErrLookup, t.Name, name)
	}

	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[idx]
	}
	return values, nil
}

// Assessment returns the default assessment name: the table name without
// its extension.
func (t *Table) Assessment() string {
	return strings.TrimSuffix(t.Name, filepath.Ext(t.Name))
}

// Delimiter returns the field separator for path based on its extension.
func Delimiter(path string) (rune, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv", ".txt":
		return '\t', nil
	case ".csv":
		return ',', nil
	default:
		return 0, fmt.Errorf("%w: unsupported table format %q", annotation.ErrConfiguration, filepath.Ext(path))
	}
}

// ReadFile reads a tab- or comma-separated file. The table is named after
// the file's base name.
func ReadFile(path string) (*Table, error) {
	delim, err := Delimiter(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open table: %v", annotation.ErrConfiguration, err)
	}
	defer f.Close()

	return Read(f, delim, filepath.Base(path))
}

// Read parses delimited text whose first record is the header.
func Read(r io.Reader, delim rune, name string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s is empty", annotation.ErrValidation, name)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header of %s: %v", annotation.ErrValidation, name, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", annotation.ErrValidation, name, err)
		}
		rows = append(rows, rec)
	}

	return New(name, header, rows)
}
