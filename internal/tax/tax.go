// Package tax computes the year's income, property, capital-gains and
// interest-income tax from ledger and property state.
package tax

import (
	"github.com/shopspring/decimal"

	"github.com/finsim-dev/finsim/internal/model"
)

// Bracket is one progressive tax band. An Upper of zero means the band
// is unbounded.
type Bracket struct {
	Lower decimal.Decimal
	Upper decimal.Decimal
	Rate  float64
}

// DefaultBrackets is the canonical three-band table: 10% to $10k, 15% to
// $40k, 25% above.
func DefaultBrackets() []Bracket {
	return []Bracket{
		{Lower: decimal.Zero, Upper: decimal.NewFromInt(10000), Rate: 0.10},
		{Lower: decimal.NewFromInt(10000), Upper: decimal.NewFromInt(40000), Rate: 0.15},
		{Lower: decimal.NewFromInt(40000), Rate: 0.25},
	}
}

// Flat rates for gains and interest income. Short-term gains are sales
// held under a year.
const (
	LongTermGainsRate  = 0.15
	ShortTermGainsRate = 0.25
	InterestIncomeRate = 0.15
)

// Engine evaluates taxes and keeps the append-only payment history.
type Engine struct {
	brackets          []Bracket
	standardDeduction decimal.Decimal
	history           []model.TaxPayment
}

// NewEngine builds an engine; nil brackets get the default table.
func NewEngine(brackets []Bracket, standardDeduction decimal.Decimal) *Engine {
	if brackets == nil {
		brackets = DefaultBrackets()
	}
	return &Engine{brackets: brackets, standardDeduction: standardDeduction}
}

// BracketTax evaluates the progressive table on taxable income, with no
// deduction applied. The result is the sum over brackets of
// rate * overlap(income, bracket), so splitting income across aligned
// calls is additive.
func (e *Engine) BracketTax(taxable decimal.Decimal) decimal.Decimal {
	if !taxable.IsPositive() {
		return decimal.Zero
	}
	tax := decimal.Zero
	for _, b := range e.brackets {
		top := taxable
		if !b.Upper.IsZero() && b.Upper.LessThan(top) {
			top = b.Upper
		}
		overlap := top.Sub(b.Lower)
		if !overlap.IsPositive() {
			continue
		}
		tax = tax.Add(overlap.Mul(decimal.NewFromFloat(b.Rate)))
	}
	return tax.Round(2)
}

// IncomeTax applies the standard deduction, then the bracket table.
func (e *Engine) IncomeTax(income decimal.Decimal) decimal.Decimal {
	return e.BracketTax(income.Sub(e.standardDeduction))
}

// PropertyTax sums value * tax_rate across properties.
func (e *Engine) PropertyTax(properties []*model.PropertyInvestment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range properties {
		total = total.Add(p.CurrentValue.Mul(decimal.NewFromFloat(p.TaxRate)))
	}
	return total.Round(2)
}

// CapitalGainsOnSale taxes the realized gain on a sale: 15% when held at
// least a year, 25% for a quick flip. Losses owe nothing.
func (e *Engine) CapitalGainsOnSale(purchasePrice, salePrice decimal.Decimal, holdingYears int) decimal.Decimal {
	gain := salePrice.Sub(purchasePrice)
	if !gain.IsPositive() {
		return decimal.Zero
	}
	rate := LongTermGainsRate
	if holdingYears < 1 {
		rate = ShortTermGainsRate
	}
	return gain.Mul(decimal.NewFromFloat(rate)).Round(2)
}

// InterestIncomeTax applies the flat rate to Interest transactions of
// the queried year only.
func (e *Engine) InterestIncomeTax(transactions []model.Transaction, year int) decimal.Decimal {
	earned := decimal.Zero
	for _, txn := range transactions {
		if txn.Year == year && txn.Type == model.TxnInterest {
			earned = earned.Add(txn.Amount)
		}
	}
	return earned.Mul(decimal.NewFromFloat(InterestIncomeRate)).Round(2)
}

// Record appends a tax payment to the history.
func (e *Engine) Record(year int, amount decimal.Decimal, t model.TaxType, deductions []string) model.TaxPayment {
	payment := model.NewTaxPayment(year, amount, t, deductions)
	e.history = append(e.history, payment)
	return payment
}

// History returns the append-only payment log.
func (e *Engine) History() []model.TaxPayment { return e.history }

// TotalForYear sums all recorded liabilities for a year.
func (e *Engine) TotalForYear(year int) decimal.Decimal {
	total := decimal.Zero
	for _, p := range e.history {
		if p.Year == year {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// StandardDeduction exposes the configured deduction.
func (e *Engine) StandardDeduction() decimal.Decimal { return e.standardDeduction }

// Restore rebuilds the payment history from persisted records.
func (e *Engine) Restore(history []model.TaxPayment) { e.history = history }
