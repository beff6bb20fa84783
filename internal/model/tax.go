package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaxType classifies a component of a year's tax liability.
type TaxType string

const (
	TaxIncome       TaxType = "income"
	TaxProperty     TaxType = "property"
	TaxCapitalGains TaxType = "capital-gains"
	TaxInterest     TaxType = "interest"
)

// TaxPayment is an immutable record aggregating one year's liability.
type TaxPayment struct {
	ID         string
	Year       int
	Amount     decimal.Decimal
	Type       TaxType
	Deductions []string
}

// NewTaxPayment builds a tax record with a fresh ID.
func NewTaxPayment(year int, amount decimal.Decimal, t TaxType, deductions []string) TaxPayment {
	return TaxPayment{
		ID:         uuid.NewString(),
		Year:       year,
		Amount:     amount.Round(2),
		Type:       t,
		Deductions: deductions,
	}
}
