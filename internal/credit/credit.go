// Package credit maintains the caller's credit score and gates loan
// origination on debt-to-income and employment history.
package credit

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/finsim-dev/finsim/internal/amort"
	"github.com/finsim-dev/finsim/internal/model"
)

// Score bounds and the starting score for a fresh simulation.
const (
	MinScore     = 300
	MaxScore     = 850
	DefaultScore = 650
)

// Category is a credit-score band.
type Category string

const (
	CategoryPoor      Category = "poor"
	CategoryFair      Category = "fair"
	CategoryGood      Category = "good"
	CategoryVeryGood  Category = "very-good"
	CategoryExcellent Category = "excellent"
)

// categoryBands maps score floors to categories with their loan-rate
// modifiers, best band first.
var categoryBands = []struct {
	floor    int
	category Category
	modifier float64
}{
	{800, CategoryExcellent, 0.0},
	{740, CategoryVeryGood, 0.005},
	{670, CategoryGood, 0.01},
	{580, CategoryFair, 0.02},
	{MinScore, CategoryPoor, 0.04},
}

// dtiCeilings is the maximum debt-to-income ratio per loan type.
var dtiCeilings = map[model.AccountType]float64{
	model.AccountMortgage:     0.43,
	model.AccountAutoLoan:     0.45,
	model.AccountStudentLoan:  0.50,
	model.AccountCreditCard:   0.50,
	model.AccountPersonalLoan: 0.55,
}

// creditCardMinimumRate is the assumed minimum payment on revolving debt:
// 3% of the outstanding balance per month.
const creditCardMinimumRate = 0.03

// Adjustment records one score change.
type Adjustment struct {
	Year   int
	Delta  int
	Reason string
}

// Model holds the score and its adjustment history.
type Model struct {
	score   int
	history []Adjustment
}

// NewModel starts at the default score.
func NewModel() *Model {
	return &Model{score: DefaultScore}
}

// Score returns the current score.
func (m *Model) Score() int { return m.score }

// History returns all recorded adjustments.
func (m *Model) History() []Adjustment { return m.history }

// Adjust moves the score by delta, clamped to [300, 850], and records
// the change.
func (m *Model) Adjust(delta int, year int, reason string) {
	m.score += delta
	if m.score < MinScore {
		m.score = MinScore
	}
	if m.score > MaxScore {
		m.score = MaxScore
	}
	m.history = append(m.history, Adjustment{Year: year, Delta: delta, Reason: reason})
}

// Category returns the band for the current score.
func (m *Model) Category() Category {
	for _, band := range categoryBands {
		if m.score >= band.floor {
			return band.category
		}
	}
	return CategoryPoor
}

// RateModifier returns the loan-rate premium for the current band,
// applied at origination.
func (m *Model) RateModifier() float64 {
	for _, band := range categoryBands {
		if m.score >= band.floor {
			return band.modifier
		}
	}
	return categoryBands[len(categoryBands)-1].modifier
}

// Restore rebuilds model state from persisted records.
func (m *Model) Restore(score int, history []Adjustment) {
	m.score = score
	if m.score < MinScore {
		m.score = MinScore
	}
	if m.score > MaxScore {
		m.score = MaxScore
	}
	m.history = history
}

// MonthlyDebtService sums the caller's monthly obligations across active
// debt accounts: amortized payments for term loans, a 3%-of-balance
// minimum for revolving debt. Term-loan payments delegate to amort.
func MonthlyDebtService(accounts []*model.Account, year int) decimal.Decimal {
	total := decimal.Zero
	for _, a := range accounts {
		if !a.Active || !a.IsDebt() || a.Balance.IsZero() {
			continue
		}
		if model.Traits(a.Type).Revolving {
			total = total.Add(a.Debt().Mul(decimal.NewFromFloat(creditCardMinimumRate)).Round(2))
			continue
		}
		termLeft := amort.RemainingTerm(a.TermYears, a.CreationYear, year)
		total = total.Add(amort.MonthlyPayment(a.Debt(), a.InterestRate/12, termLeft*12))
	}
	return total
}

// DTI is the debt-to-income ratio: monthly debt service over monthly
// income. Zero income with any debt reads as a ratio above every ceiling.
func DTI(monthlyDebt, monthlyIncome decimal.Decimal) float64 {
	if !monthlyIncome.IsPositive() {
		if monthlyDebt.IsPositive() {
			return 1
		}
		return 0
	}
	return monthlyDebt.Div(monthlyIncome).InexactFloat64()
}

// CheckEligibility gates a new loan of the given type. The DTI including
// the prospective payment must stay under the type's ceiling, and
// mortgages additionally require at least two years of full-time
// employment with no year-over-year income drop greater than 25%.
func CheckEligibility(loanType model.AccountType, accounts []*model.Account, employment []model.EmploymentRecord, newMonthlyPayment decimal.Decimal, year int) error {
	ceiling, ok := dtiCeilings[loanType]
	if !ok {
		ceiling = 0.50
	}

	monthlyIncome := decimal.Zero
	if n := len(employment); n > 0 {
		monthlyIncome = employment[n-1].AnnualIncome.Div(decimal.NewFromInt(12))
	}

	debt := MonthlyDebtService(accounts, year).Add(newMonthlyPayment)
	if ratio := DTI(debt, monthlyIncome); ratio >= ceiling {
		return &model.NotEligibleError{
			Reason: fmt.Sprintf("debt-to-income %.0f%% exceeds %.0f%% limit", ratio*100, ceiling*100),
		}
	}

	if loanType == model.AccountMortgage {
		if err := checkEmploymentStability(employment); err != nil {
			return err
		}
	}
	return nil
}

func checkEmploymentStability(employment []model.EmploymentRecord) error {
	n := len(employment)
	if n < 2 {
		return &model.NotEligibleError{Reason: "mortgages require two years of employment history"}
	}
	latest, prior := employment[n-1], employment[n-2]
	if !latest.FullTime || !prior.FullTime {
		return &model.NotEligibleError{Reason: "mortgages require two years of full-time employment"}
	}
	if prior.AnnualIncome.IsPositive() {
		floor := prior.AnnualIncome.Mul(decimal.NewFromFloat(0.75))
		if latest.AnnualIncome.LessThan(floor) {
			return &model.NotEligibleError{Reason: "income dropped more than 25% year-over-year"}
		}
	}
	return nil
}
