package amort

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestMonthlyPayment_StandardMortgage(t *testing.T) {
	// $200,000 at 4.5% over 30 years.
	payment := MonthlyPayment(dec("200000"), 0.045/12, 360)
	assert.True(t, payment.Equal(dec("1013.37")), "got %s", payment)
}

func TestMonthlyPayment_ZeroRateDegradesToStraightLine(t *testing.T) {
	payment := MonthlyPayment(dec("12000"), 0, 12)
	assert.True(t, payment.Equal(dec("1000")), "got %s", payment)
}

func TestMonthlyPayment_NonPositiveTermMeansAllDue(t *testing.T) {
	payment := MonthlyPayment(dec("5000"), 0.05/12, 0)
	assert.True(t, payment.Equal(dec("5000")), "got %s", payment)
}

func TestMonthlyPayment_ZeroPrincipal(t *testing.T) {
	assert.True(t, MonthlyPayment(decimal.Zero, 0.05, 360).IsZero())
}

func TestAnnualPayment_TwelveMonthly(t *testing.T) {
	annual := AnnualPayment(dec("200000"), 0.045, 30)
	monthly := MonthlyPayment(dec("200000"), 0.045/12, 360)
	assert.True(t, annual.Equal(monthly.Mul(decimal.NewFromInt(12))), "got %s", annual)
}

func TestRemainingBalance_DecreasesMonotonically(t *testing.T) {
	principal := dec("200000")
	prev := principal
	for k := 12; k <= 360; k += 60 {
		rem := RemainingBalance(principal, 0.045/12, 360, k)
		assert.True(t, rem.LessThan(prev), "balance after %d payments (%s) should be below %s", k, rem, prev)
		prev = rem
	}
}

func TestRemainingBalance_FullTermIsZero(t *testing.T) {
	rem := RemainingBalance(dec("200000"), 0.045/12, 360, 360)
	assert.True(t, rem.IsZero())
}

func TestRemainingBalance_ZeroRate(t *testing.T) {
	rem := RemainingBalance(dec("12000"), 0, 12, 6)
	assert.True(t, rem.Equal(dec("6000")), "got %s", rem)
}

func TestRemainingTerm(t *testing.T) {
	tests := []struct {
		name               string
		term, created, now int
		want               int
	}{
		{"fresh loan", 30, 2030, 2030, 30},
		{"halfway", 30, 2030, 2045, 15},
		{"expired", 30, 2030, 2060, 0},
		{"past expiry clamps", 30, 2030, 2070, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RemainingTerm(tt.term, tt.created, tt.now))
		})
	}
}
