package core

// load.go parses an uploaded CSV file into a Table.
//
// The first record is the header. Header names are trimmed; blank names
// become "Unnamed: <position>" and repeats get ".1", ".2" suffixes so every
// column is addressable. Short rows are padded with nulls; a row with more
// fields than the header is rejected as malformed.

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var (
	// ErrEmptyFile is returned when the input has no header row.
	ErrEmptyFile = errors.New("empty file")

	// ErrInvalidCSV wraps every parse failure.
	ErrInvalidCSV = errors.New("invalid csv")
)

// ReadCSV loads an entire CSV document into memory.
func ReadCSV(r io.Reader) (*Table, error) {
	return readCSV(r, 0)
}

// readCSV loads a CSV document, failing with ErrFileTooLarge after limit bytes.
func readCSV(r io.Reader, limit int64) (*Table, error) {
	wrapped, _ := WrapForStreaming(r, limit)

	cr := csv.NewReader(wrapped)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, wrapReadError(err)
	}

	names := headerNames(header)
	fields := make([][]string, len(names))
	present := make([][]bool, len(names))

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, wrapReadError(err)
		}
		if len(record) > len(names) {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("%w: line %d has %d fields, header has %d",
				ErrInvalidCSV, line, len(record), len(names))
		}
		for i := range names {
			if i < len(record) {
				fields[i] = append(fields[i], record[i])
				present[i] = append(present[i], true)
			} else {
				fields[i] = append(fields[i], "")
				present[i] = append(present[i], false)
			}
		}
	}

	t := &Table{Columns: make([]*Column, len(names))}
	for i, name := range names {
		t.Columns[i] = &Column{Name: name, Values: inferColumn(fields[i], present[i])}
	}
	return t, nil
}

func wrapReadError(err error) error {
	if errors.Is(err, ErrFileTooLarge) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrInvalidCSV, err)
}

// headerNames cleans the header record into unique column names.
func headerNames(header []string) []string {
	names := make([]string, len(header))
	used := make(map[string]bool, len(header))
	counts := make(map[string]int, len(header))

	for i, h := range header {
		base := strings.TrimSpace(h)
		if base == "" {
			base = "Unnamed: " + strconv.Itoa(i)
		}

		name := base
		for used[name] {
			counts[base]++
			name = base + "." + strconv.Itoa(counts[base])
		}
		used[name] = true
		names[i] = name
	}
	return names
}
