package model

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FinancialEvent is one line of a year's financial activity, surfaced to
// the game loop for rendering. Amount is signed: positive = money in.
type FinancialEvent struct {
	Description string
	Amount      decimal.Decimal
	Year        int
}

// NewEvent rounds the amount to cents and tags the year.
func NewEvent(year int, amount decimal.Decimal, description string) FinancialEvent {
	return FinancialEvent{Description: description, Amount: amount.Round(2), Year: year}
}

// String renders "description: $1,234.56" with a sign, using the USD
// currency formatter.
func (e FinancialEvent) String() string {
	cents := e.Amount.Abs().Shift(2).IntPart()
	formatted := money.New(cents, money.USD).Display()
	sign := "+"
	if e.Amount.IsNegative() {
		sign = "-"
	}
	return fmt.Sprintf("%s: %s%s", e.Description, sign, formatted)
}
