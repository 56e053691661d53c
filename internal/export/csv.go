// Package export appends batch results to CSV files.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
)

// Field is one column of a row.
type Field struct {
	Key   string
	Value string
}

// Row is an ordered list of columns. The keys form the CSV header.
type Row []Field

// Keys returns the column names in order.
func (r Row) Keys() []string {
	keys := make([]string, len(r))
	for i, f := range r {
		keys[i] = f.Key
	}
	return keys
}

// Values returns the column values in order.
func (r Row) Values() []string {
	values := make([]string, len(r))
	for i, f := range r {
		values[i] = f.Value
	}
	return values
}

// Get returns the value of key.
func (r Row) Get(key string) (string, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// AppendRow appends row to the CSV file at path, creating it with a header
// line first when it does not exist. Rows appended later are assumed to have
// the same keys in the same order; they are not checked.
func AppendRow(path string, row Row) error {
	return AppendRows(path, []Row{row})
}

// AppendRows appends several rows with a single open of the file. The header
// comes from the first row.
func AppendRows(path string, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}

	_, err := os.Stat(path)
	writeHeader := errors.Is(err, os.ErrNotExist)
	if err != nil && !writeHeader {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(rows[0].Keys()); err != nil {
			return fmt.Errorf("write header to %s: %w", path, err)
		}
	}
	for _, r := range rows {
		if err := w.Write(r.Values()); err != nil {
			return fmt.Errorf("write row to %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}

// ReadRows reads a CSV file written by AppendRow back into rows.
func ReadRows(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(Row, len(header))
		for i, key := range header {
			row[i] = Field{Key: key, Value: rec[i]}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func formatFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}
