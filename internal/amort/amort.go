// Package amort is the single source of truth for loan amortization math.
// Mortgage payments, refinance quotes, and debt-to-income calculations all
// delegate here rather than reimplementing the annuity formula.
package amort

import (
	"math"

	"github.com/shopspring/decimal"
)

// MonthlyPayment computes the fixed payment for a standard annuity:
// P*r*(1+r)^n / ((1+r)^n - 1). Degenerate inputs degrade gracefully:
// a non-positive rate yields straight-line principal/n, and a
// non-positive payment count means the whole principal is due.
func MonthlyPayment(principal decimal.Decimal, monthlyRate float64, nPayments int) decimal.Decimal {
	if principal.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	if nPayments <= 0 {
		return principal.Round(2)
	}
	if monthlyRate <= 0 {
		return principal.Div(decimal.NewFromInt(int64(nPayments))).Round(2)
	}
	p := principal.InexactFloat64()
	growth := math.Pow(1+monthlyRate, float64(nPayments))
	payment := p * monthlyRate * growth / (growth - 1)
	return decimal.NewFromFloat(payment).Round(2)
}

// AnnualPayment is twelve monthly payments.
func AnnualPayment(principal decimal.Decimal, annualRate float64, termYears int) decimal.Decimal {
	monthly := MonthlyPayment(principal, annualRate/12, termYears*12)
	return monthly.Mul(decimal.NewFromInt(12)).Round(2)
}

// RemainingBalance computes the principal left after paymentsMade fixed
// payments: P*(1+r)^k - M*((1+r)^k - 1)/r.
func RemainingBalance(principal decimal.Decimal, monthlyRate float64, nPayments, paymentsMade int) decimal.Decimal {
	if principal.LessThanOrEqual(decimal.Zero) || paymentsMade <= 0 {
		return principal.Round(2)
	}
	if paymentsMade >= nPayments {
		return decimal.Zero
	}
	if monthlyRate <= 0 {
		paid := principal.Mul(decimal.NewFromInt(int64(paymentsMade))).Div(decimal.NewFromInt(int64(nPayments)))
		return principal.Sub(paid).Round(2)
	}
	p := principal.InexactFloat64()
	m := MonthlyPayment(principal, monthlyRate, nPayments).InexactFloat64()
	growth := math.Pow(1+monthlyRate, float64(paymentsMade))
	rem := p*growth - m*(growth-1)/monthlyRate
	if rem < 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(rem).Round(2)
}

// RemainingTerm returns the years left on a term that started in
// creationYear, never negative.
func RemainingTerm(termYears, creationYear, currentYear int) int {
	rem := termYears - (currentYear - creationYear)
	if rem < 0 {
		return 0
	}
	return rem
}
