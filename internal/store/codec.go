package store

import (
	"encoding/csv"
	"fmt"
	"io"
)

// codec describes how one record type maps to its CSV file.
type codec[T any] struct {
	file      string
	header    []string
	marshal   func(T) []string
	unmarshal func([]string) (T, error)
	id        func(T) int64
	withID    func(T, int64) T
	// conflicts reports whether two distinct records may not coexist. nil means never.
	conflicts func(a, b T) bool
}

func readRecords[T any](r io.Reader, c codec[T]) ([]T, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(c.header)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", c.file, err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var out []T
	for i, rec := range records[1:] {
		v, err := c.unmarshal(rec)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", c.file, i+2, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func writeRecords[T any](w io.Writer, c codec[T], recs []T) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(c.header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, rec := range recs {
		if err := cw.Write(c.marshal(rec)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
