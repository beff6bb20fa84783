// Package eventlog persists the yearly financial events to a CSV file
// so a player can review the history of a long-running save outside the
// game.
package eventlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finsim-dev/finsim/internal/model"
)

// Header is the CSV header for the event log file.
const Header = "year,amount,description"

const (
	numFields      = 3
	colYear        = 0
	colAmount      = 1
	colDescription = 2
)

// MarshalEvent converts an event to a CSV row.
func MarshalEvent(e model.FinancialEvent) []string {
	row := make([]string, numFields)
	row[colYear] = strconv.Itoa(e.Year)
	row[colAmount] = e.Amount.StringFixed(2)
	row[colDescription] = e.Description
	return row
}

// UnmarshalEvent converts a CSV row to an event.
func UnmarshalEvent(record []string) (model.FinancialEvent, error) {
	if len(record) != numFields {
		return model.FinancialEvent{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	year, err := strconv.Atoi(record[colYear])
	if err != nil {
		return model.FinancialEvent{}, fmt.Errorf("parsing year %q: %w", record[colYear], err)
	}
	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.FinancialEvent{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	return model.FinancialEvent{
		Year:        year,
		Amount:      amount,
		Description: record[colDescription],
	}, nil
}

// Append writes events to the log file, creating it with a header if needed.
func Append(path string, events []model.FinancialEvent) error {
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening event log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range events {
		if err := cw.Write(MarshalEvent(e)); err != nil {
			return fmt.Errorf("writing event %d: %w", i, err)
		}
	}

	return cw.Error()
}

// Read returns all events from the log file. Returns an empty slice if
// the file does not exist.
func Read(path string) ([]model.FinancialEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening event log: %w", err)
	}
	defer f.Close()

	return readEvents(f)
}

func readEvents(r io.Reader) ([]model.FinancialEvent, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading event log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var events []model.FinancialEvent
	for i, rec := range records[1:] {
		e, err := UnmarshalEvent(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		events = append(events, e)
	}
	return events, nil
}
