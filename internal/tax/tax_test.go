package tax

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/finsim-dev/finsim/internal/model"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestBracketTax_CanonicalWorkedExample(t *testing.T) {
	e := NewEngine(nil, decimal.Zero)
	// $50,000: $1,000 + $4,500 + $2,500 = $8,000.
	got := e.BracketTax(dec("50000"))
	assert.True(t, got.Equal(dec("8000")), "got %s", got)
}

func TestBracketTax_BoundaryValues(t *testing.T) {
	e := NewEngine(nil, decimal.Zero)
	tests := []struct {
		income, want string
	}{
		{"0", "0"},
		{"10000", "1000"},
		{"10001", "1000.15"},
		{"40000", "5500"},
		{"100000", "20500"},
	}
	for _, tt := range tests {
		got := e.BracketTax(dec(tt.income))
		assert.True(t, got.Equal(dec(tt.want)), "income %s: got %s, want %s", tt.income, got, tt.want)
	}
}

func TestBracketTax_AdditiveWithinBracket(t *testing.T) {
	e := NewEngine(nil, decimal.Zero)
	// Two slices that stay inside the first bracket sum to the tax on
	// their total.
	a := e.BracketTax(dec("3000"))
	b := e.BracketTax(dec("4000"))
	whole := e.BracketTax(dec("7000"))
	assert.True(t, a.Add(b).Equal(whole))
}

func TestBracketTax_NegativeTaxableIsZero(t *testing.T) {
	e := NewEngine(nil, decimal.Zero)
	assert.True(t, e.BracketTax(dec("-100")).IsZero())
}

func TestIncomeTax_AppliesStandardDeduction(t *testing.T) {
	e := NewEngine(nil, dec("10000"))
	// 60,000 - 10,000 deduction = 50,000 taxable = 8,000.
	got := e.IncomeTax(dec("60000"))
	assert.True(t, got.Equal(dec("8000")), "got %s", got)

	// Income below the deduction owes nothing.
	assert.True(t, e.IncomeTax(dec("9000")).IsZero())
}

func TestPropertyTax(t *testing.T) {
	e := NewEngine(nil, decimal.Zero)
	props := []*model.PropertyInvestment{
		{CurrentValue: dec("300000"), TaxRate: 0.011},
		{CurrentValue: dec("150000"), TaxRate: 0.010},
	}
	got := e.PropertyTax(props)
	assert.True(t, got.Equal(dec("4800")), "got %s", got)
}

func TestCapitalGainsOnSale(t *testing.T) {
	e := NewEngine(nil, decimal.Zero)

	longHold := e.CapitalGainsOnSale(dec("200000"), dec("260000"), 5)
	assert.True(t, longHold.Equal(dec("9000")), "15%% of 60k, got %s", longHold)

	flip := e.CapitalGainsOnSale(dec("200000"), dec("260000"), 0)
	assert.True(t, flip.Equal(dec("15000")), "25%% of 60k, got %s", flip)

	loss := e.CapitalGainsOnSale(dec("200000"), dec("150000"), 3)
	assert.True(t, loss.IsZero())
}

func TestInterestIncomeTax_QueriedYearOnly(t *testing.T) {
	e := NewEngine(nil, decimal.Zero)
	txns := []model.Transaction{
		{Type: model.TxnInterest, Amount: dec("100"), Year: 2030},
		{Type: model.TxnInterest, Amount: dec("200"), Year: 2031},
		{Type: model.TxnDeposit, Amount: dec("999"), Year: 2031},
	}
	got := e.InterestIncomeTax(txns, 2031)
	assert.True(t, got.Equal(dec("30")), "15%% of 200, got %s", got)
}

func TestRecordAndTotalForYear(t *testing.T) {
	e := NewEngine(nil, decimal.Zero)
	e.Record(2030, dec("8000"), model.TaxIncome, []string{"standard"})
	e.Record(2030, dec("3300"), model.TaxProperty, nil)
	e.Record(2031, dec("100"), model.TaxInterest, nil)

	assert.True(t, e.TotalForYear(2030).Equal(dec("11300")))
	assert.True(t, e.TotalForYear(2031).Equal(dec("100")))
	assert.Len(t, e.History(), 3)
}
