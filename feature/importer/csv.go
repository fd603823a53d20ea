package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

const bom = "\ufeff"

// record is one CSV row addressed by header name.
type record struct {
	line   int
	fields map[string]string
}

// get returns the trimmed value of column name.
func (r record) get(name string) (string, error) {
	v, ok := r.fields[name]
	if !ok {
		return "", fmt.Errorf("missing column %q", name)
	}
	return strings.TrimSpace(v), nil
}

// readRecords parses r with the given delimiter and calls fn for every data row.
// The first row is the header. Malformed rows are reported to fn through a nil record and an error.
func readRecords(r io.Reader, delimiter string, fn func(rec record, err error)) error {
	reader := csv.NewReader(r)
	if delimiter != "" {
		reader.Comma = []rune(delimiter)[0]
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("empty csv file")
		}
		return fmt.Errorf("failed to read csv header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, bom)))
	}

	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		line++
		if err != nil {
			fn(record{line: line}, fmt.Errorf("malformed row: %w", err))
			continue
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}

		fields := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(row) {
				fields[h] = row[i]
			}
		}
		fn(record{line: line, fields: fields}, nil)
	}
}
