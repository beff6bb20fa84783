// Package scenario loads a career timeline from a CSV file. Each row is
// one year of salary history; the simulation uses it for income taxes
// and loan underwriting.
package scenario

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/finsim-dev/finsim/internal/model"
)

const (
	numFields   = 3
	colYear     = 0
	colIncome   = 1
	colFullTime = 2
)

// Load reads a scenario CSV from disk.
func Load(path string) ([]model.EmploymentRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening scenario: %w", err)
	}
	defer f.Close()

	records, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Parse reads a "year,income,full_time" CSV with a header row and
// returns the employment records in file order. Years must be strictly
// increasing.
func Parse(r io.Reader) ([]model.EmploymentRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading scenario CSV: %w", err)
	}

	if len(rows) <= 1 {
		return nil, nil
	}

	var out []model.EmploymentRecord
	for i, rec := range rows[1:] {
		record, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if len(out) > 0 && record.Year <= out[len(out)-1].Year {
			return nil, fmt.Errorf("row %d: year %d out of order", i+2, record.Year)
		}
		out = append(out, record)
	}
	return out, nil
}

func parseRow(rec []string) (model.EmploymentRecord, error) {
	year, err := strconv.Atoi(rec[colYear])
	if err != nil {
		return model.EmploymentRecord{}, fmt.Errorf("parsing year %q: %w", rec[colYear], err)
	}

	income, err := decimal.NewFromString(rec[colIncome])
	if err != nil {
		return model.EmploymentRecord{}, fmt.Errorf("parsing income %q: %w", rec[colIncome], err)
	}
	if income.IsNegative() {
		return model.EmploymentRecord{}, fmt.Errorf("income %s is negative", income)
	}

	fullTime, err := strconv.ParseBool(rec[colFullTime])
	if err != nil {
		return model.EmploymentRecord{}, fmt.Errorf("parsing full_time %q: %w", rec[colFullTime], err)
	}

	return model.EmploymentRecord{
		Year:         year,
		AnnualIncome: income.Round(2),
		FullTime:     fullTime,
	}, nil
}
