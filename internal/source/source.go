// Package source reads registration records from delimited text.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/celerix-dev/cadastro/pkg/schema"
)

// Row is one record together with the 1-based line it started on.
type Row struct {
	Line   int
	Record schema.RawRecord
}

// Options controls how the input is parsed.
type Options struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune
	// SkipHeader drops the first row.
	SkipHeader bool
}

// Reader yields RawRecords from CSV input in file order.
type Reader struct {
	r          *csv.Reader
	skipHeader bool
	started    bool
}

// NewReader wraps in. Rows are read lazily.
func NewReader(in io.Reader, opts Options) *Reader {
	r := csv.NewReader(in)
	if opts.Comma != 0 {
		r.Comma = opts.Comma
	}
	// Column count is checked by schema.FromRow so the error names the line.
	r.FieldsPerRecord = -1
	return &Reader{r: r, skipHeader: opts.SkipHeader}
}

// Next returns the next record, or io.EOF when the input is exhausted.
// A row that does not carry exactly seven columns is a construction error.
func (r *Reader) Next() (Row, error) {
	if !r.started {
		r.started = true
		if r.skipHeader {
			if _, err := r.r.Read(); err != nil {
				return Row{}, r.wrap(err)
			}
		}
	}

	fields, err := r.r.Read()
	if err != nil {
		return Row{}, r.wrap(err)
	}
	line, _ := r.r.FieldPos(0)

	rec, err := schema.FromRow(fields)
	if err != nil {
		return Row{}, fmt.Errorf("line %d: %w", line, err)
	}
	return Row{Line: line, Record: rec}, nil
}

func (r *Reader) wrap(err error) error {
	if errors.Is(err, io.EOF) {
		return io.EOF
	}
	return fmt.Errorf("read csv: %w", err)
}

// ReadAll drains the reader.
func (r *Reader) ReadAll() ([]Row, error) {
	var rows []Row
	for {
		row, err := r.Next()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}

// Records strips line numbers from rows.
func Records(rows []Row) []schema.RawRecord {
	out := make([]schema.RawRecord, len(rows))
	for i, row := range rows {
		out[i] = row.Record
	}
	return out
}
