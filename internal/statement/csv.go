// Package statement renders account history as CSV for export.
package statement

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/teller-dev/teller/internal/model"
)

// Header is the CSV header for an exported statement.
const Header = "timestamp,kind,amount,note"

const (
	numFields    = 4
	colTimestamp = 0
	colKind      = 1
	colAmount    = 2
	colNote      = 3
)

// MarshalEntry converts a history entry to a CSV row.
func MarshalEntry(e model.HistoryEntry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Time.UTC().Format(time.RFC3339)
	row[colKind] = string(e.Kind)
	row[colAmount] = e.Amount.StringFixed(2)
	row[colNote] = e.Note
	return row
}

// UnmarshalEntry converts a CSV row to a history entry.
func UnmarshalEntry(record []string) (model.HistoryEntry, error) {
	if len(record) != numFields {
		return model.HistoryEntry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return model.HistoryEntry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.HistoryEntry{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	return model.HistoryEntry{
		Time:   ts,
		Kind:   model.EntryKind(record[colKind]),
		Amount: amount,
		Note:   record[colNote],
	}, nil
}

// Write writes entries (including header) in the order given.
func Write(w io.Writer, entries []model.HistoryEntry) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// Read parses a statement CSV back into history entries.
func Read(r io.Reader) ([]model.HistoryEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading statement CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []model.HistoryEntry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
