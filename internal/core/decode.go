package core

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
)

// Row is one decoded CSV data line keyed by normalized header name.
type Row map[string]string

// DecodeRows returns a lazy sequence over the data lines of a comma-separated
// stream whose first line is the header.
//
// Header tokens have every '"' removed and surrounding whitespace trimmed.
// Lines with only blank cells are skipped. Short lines yield a Row without
// the missing keys; when a header repeats, the rightmost column wins.
//
// The sequence yields a single non-nil error and stops when the stream cannot
// be decoded. An empty stream yields nothing.
func DecodeRows(r io.Reader) iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		reader := csv.NewReader(r)
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1
		reader.ReuseRecord = true

		header, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			yield(nil, fmt.Errorf("read header: %w", err))
			return
		}
		keys := normalizeHeaders(header)

		for {
			record, err := reader.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, fmt.Errorf("read row: %w", err))
				return
			}
			if isEmptyRow(record) {
				continue
			}

			row := make(Row, len(keys))
			for i, key := range keys {
				if key == "" || i >= len(record) {
					continue
				}
				row[key] = record[i]
			}
			if !yield(row, nil) {
				return
			}
		}
	}
}

func normalizeHeaders(header []string) []string {
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = strings.TrimSpace(strings.ReplaceAll(h, `"`, ""))
	}
	return keys
}

func isEmptyRow(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
