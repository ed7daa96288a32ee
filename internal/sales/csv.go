package sales

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrEmptyBatch is returned when an upload carries a header but no rows.
var ErrEmptyBatch = errors.New("batch contains no rows")

// ErrBatchTooLarge is returned when an upload exceeds the configured row limit.
var ErrBatchTooLarge = errors.New("batch exceeds maximum row count")

// ErrMalformedCSV is returned when the payload is not valid CSV, for example
// an unterminated quote or a row whose field count differs from the header.
var ErrMalformedCSV = errors.New("malformed csv")

// Table is the typed intermediate form of an upload: a lower-cased header
// and the raw cell values of each row.
type Table struct {
	Header []string
	Rows   [][]string
}

// ParseCSV reads a header row followed by data rows. Reading stops with
// ErrBatchTooLarge as soon as more than maxRows data rows are seen, so a
// single upload cannot grow without bound. maxRows <= 0 disables the limit.
func ParseCSV(r io.Reader, maxRows int) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: missing header row", ErrSchema)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrMalformedCSV, err)
	}
	for i, h := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}

	t := &Table{Header: header}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedCSV, err)
		}
		if maxRows > 0 && len(t.Rows) >= maxRows {
			return nil, fmt.Errorf("%w: limit is %d", ErrBatchTooLarge, maxRows)
		}
		t.Rows = append(t.Rows, row)
	}

	if len(t.Rows) == 0 {
		return nil, ErrEmptyBatch
	}
	return t, nil
}
