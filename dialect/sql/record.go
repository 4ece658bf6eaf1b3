package sql

import (
	"errors"
	"fmt"
	"strings"
)

// Record is one materialized result row. Values are the driver values
// produced by database/sql for an *any destination: nil, int64, float64,
// bool, []byte, string or time.Time.
type Record struct {
	Columns []string
	Values  []any
}

// Len returns the number of columns.
func (r Record) Len() int { return len(r.Values) }

// At returns the value at index i.
func (r Record) At(i int) any {
	if i < 0 || i >= len(r.Values) {
		return nil
	}
	return r.Values[i]
}

// Index returns the position of the named column. Column names are
// matched case-insensitively since some stores upper-case them.
func (r Record) Index(name string) int {
	for i, c := range r.Columns {
		if c == name {
			return i
		}
	}
	for i, c := range r.Columns {
		if strings.EqualFold(c, name) {
			return i
		}
	}
	return -1
}

// Get returns the value of the named column.
func (r Record) Get(name string) (any, bool) {
	i := r.Index(name)
	if i < 0 {
		return nil, false
	}
	return r.Values[i], true
}

// ScanRecords reads every remaining row of rows and closes it.
func ScanRecords(rows ColumnScanner) (recs []Record, err error) {
	defer func() {
		err = errors.Join(err, rows.Close())
	}()
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: columns: %w", err)
	}
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("dialect/sql: scan: %w", err)
		}
		recs = append(recs, Record{Columns: columns, Values: values})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dialect/sql: rows: %w", err)
	}
	return recs, nil
}
