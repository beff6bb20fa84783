package model

import "github.com/shopspring/decimal"

// EmploymentRecord is one year of the caller's employment history,
// supplied read-only by the game loop. Consumed by tax and credit
// calculations.
type EmploymentRecord struct {
	Year         int
	AnnualIncome decimal.Decimal
	FullTime     bool
}
