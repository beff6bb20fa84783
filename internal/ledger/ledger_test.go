package ledger

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsim-dev/finsim/internal/model"
)

type cashStub struct{ c decimal.Decimal }

func (s *cashStub) Cash() decimal.Decimal     { return s.c }
func (s *cashStub) SetCash(d decimal.Decimal) { s.c = d }

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newLedger(cash string) (*Ledger, *cashStub) {
	stub := &cashStub{c: dec(cash)}
	return New(rand.New(rand.NewSource(42)), stub), stub
}

func TestOpenAccount_AssetDebitsCash(t *testing.T) {
	l, cash := newLedger("10000")
	acct, err := l.OpenAccount(OpenParams{Type: model.AccountSavings, InitialAmount: dec("3000"), Year: 2030})
	require.NoError(t, err)
	assert.True(t, acct.Balance.Equal(dec("3000")))
	assert.True(t, cash.Cash().Equal(dec("7000")))
	require.Len(t, acct.Transactions, 1)
	assert.Equal(t, model.TxnDeposit, acct.Transactions[0].Type)
}

func TestOpenAccount_InsufficientCash(t *testing.T) {
	l, _ := newLedger("100")
	_, err := l.OpenAccount(OpenParams{Type: model.AccountChecking, InitialAmount: dec("500"), Year: 2030})
	assert.ErrorIs(t, err, model.ErrInsufficientFunds)
}

func TestOpenAccount_LoanIndependentOfCash(t *testing.T) {
	l, cash := newLedger("0")
	acct, err := l.OpenAccount(OpenParams{Type: model.AccountMortgage, InitialAmount: dec("200000"), TermYears: 30, Year: 2030})
	require.NoError(t, err)
	assert.True(t, acct.Balance.Equal(dec("-200000")))
	assert.True(t, cash.Cash().IsZero(), "mortgage principal is not disbursed to cash")
	require.Len(t, acct.Transactions, 1)
	assert.Equal(t, model.TxnLoan, acct.Transactions[0].Type)
	assert.True(t, acct.Transactions[0].Amount.Equal(dec("200000")), "loan transaction records +amount")
}

func TestOpenAccount_LoanDisbursement(t *testing.T) {
	l, cash := newLedger("0")
	_, err := l.OpenAccount(OpenParams{Type: model.AccountPersonalLoan, InitialAmount: dec("5000"), Year: 2030, Disburse: true})
	require.NoError(t, err)
	assert.True(t, cash.Cash().Equal(dec("5000")))
}

func TestOpenAccount_RateWithinJitterBand(t *testing.T) {
	l, _ := newLedger("0")
	base := model.Traits(model.AccountMortgage).BaseRate
	for i := 0; i < 50; i++ {
		acct, err := l.OpenAccount(OpenParams{Type: model.AccountMortgage, InitialAmount: dec("1000"), Year: 2030})
		require.NoError(t, err)
		assert.InDelta(t, base, acct.InterestRate, rateJitterBand+1e-9)
	}
}

func TestDeposit_And_Withdraw(t *testing.T) {
	l, cash := newLedger("5000")
	acct, err := l.OpenAccount(OpenParams{Type: model.AccountChecking, InitialAmount: dec("1000"), Year: 2030})
	require.NoError(t, err)

	require.NoError(t, l.Deposit(acct.ID, dec("500"), 2030))
	assert.True(t, acct.Balance.Equal(dec("1500")))
	assert.True(t, cash.Cash().Equal(dec("3500")))

	require.NoError(t, l.Withdraw(acct.ID, dec("1500"), 2030))
	assert.True(t, acct.Balance.IsZero())
	assert.True(t, cash.Cash().Equal(dec("5000")))
}

func TestWithdraw_OverBalanceRejected(t *testing.T) {
	l, _ := newLedger("1000")
	acct, _ := l.OpenAccount(OpenParams{Type: model.AccountSavings, InitialAmount: dec("100"), Year: 2030})
	err := l.Withdraw(acct.ID, dec("100.01"), 2030)
	assert.ErrorIs(t, err, model.ErrInsufficientFunds)
	assert.True(t, acct.Balance.Equal(dec("100")), "failed withdrawal must not mutate")
}

func TestWithdraw_CreditCardLimit(t *testing.T) {
	l, _ := newLedger("0")
	card, err := l.OpenAccount(OpenParams{Type: model.AccountCreditCard, Year: 2030})
	require.NoError(t, err)

	require.NoError(t, l.Withdraw(card.ID, dec("4000"), 2030))
	assert.True(t, card.Balance.Equal(dec("-4000")))

	err = l.Withdraw(card.ID, dec("1500"), 2030)
	assert.ErrorIs(t, err, model.ErrInsufficientFunds)
}

func TestWithdraw_CDBeforeMaturity(t *testing.T) {
	l, _ := newLedger("5000")
	cd, err := l.OpenAccount(OpenParams{Type: model.AccountCD, InitialAmount: dec("2000"), TermYears: 3, Year: 2030})
	require.NoError(t, err)

	err = l.Withdraw(cd.ID, dec("100"), 2031)
	assert.ErrorIs(t, err, model.ErrAccountInactive)

	require.NoError(t, l.Withdraw(cd.ID, dec("100"), 2033), "withdrawal allowed at maturity")
}

func TestMakePayment_ClampsToZeroAndDeactivates(t *testing.T) {
	l, cash := newLedger("10000")
	loan, err := l.OpenAccount(OpenParams{Type: model.AccountAutoLoan, InitialAmount: dec("3000"), Year: 2030})
	require.NoError(t, err)

	applied, err := l.MakePayment(loan.ID, dec("5000"), 2030)
	require.NoError(t, err)
	assert.True(t, applied.Equal(dec("3000")), "only the payoff amount is charged")
	assert.True(t, loan.Balance.IsZero(), "balance snaps to exactly zero")
	assert.False(t, loan.Active)
	assert.True(t, cash.Cash().Equal(dec("7000")))
}

func TestMakePayment_PartialKeepsActive(t *testing.T) {
	l, _ := newLedger("10000")
	loan, _ := l.OpenAccount(OpenParams{Type: model.AccountStudentLoan, InitialAmount: dec("8000"), Year: 2030})

	applied, err := l.MakePayment(loan.ID, dec("2000"), 2030)
	require.NoError(t, err)
	assert.True(t, applied.Equal(dec("2000")))
	assert.True(t, loan.Balance.Equal(dec("-6000")))
	assert.True(t, loan.Active)
}

func TestMakePayment_OnAssetRejected(t *testing.T) {
	l, _ := newLedger("1000")
	acct, _ := l.OpenAccount(OpenParams{Type: model.AccountChecking, InitialAmount: dec("500"), Year: 2030})
	_, err := l.MakePayment(acct.ID, dec("100"), 2030)
	assert.ErrorIs(t, err, model.ErrInvalidAmount)
}

func TestApplyYearlyInterest_AssetEarns(t *testing.T) {
	l, _ := newLedger("5000")
	acct, _ := l.OpenAccount(OpenParams{Type: model.AccountSavings, InitialAmount: dec("1000"), Year: 2030})

	delta, err := l.ApplyYearlyInterest(acct.ID, 2031)
	require.NoError(t, err)
	expected := dec("1000").Mul(decimal.NewFromFloat(acct.InterestRate)).Round(2)
	assert.True(t, delta.Equal(expected), "delta %s, expected %s", delta, expected)
	assert.True(t, acct.Balance.Equal(dec("1000").Add(expected)))
	assert.Equal(t, model.TxnInterest, acct.Transactions[len(acct.Transactions)-1].Type)
}

func TestApplyYearlyInterest_DebtAccrues(t *testing.T) {
	l, _ := newLedger("0")
	loan, _ := l.OpenAccount(OpenParams{Type: model.AccountMortgage, InitialAmount: dec("100000"), Year: 2030})

	delta, err := l.ApplyYearlyInterest(loan.ID, 2031)
	require.NoError(t, err)
	assert.True(t, delta.IsNegative())
	assert.True(t, loan.Balance.LessThan(dec("-100000")), "debt grows")
	assert.Equal(t, model.TxnFee, loan.Transactions[len(loan.Transactions)-1].Type)
}

func TestApplyYearlyInterest_InvestmentWithinBounds(t *testing.T) {
	l, _ := newLedger("100000")
	acct, _ := l.OpenAccount(OpenParams{Type: model.AccountInvestment, InitialAmount: dec("10000"), Year: 2030})

	for year := 2031; year < 2131; year++ {
		before := acct.Balance
		delta, err := l.ApplyYearlyInterest(acct.ID, year)
		require.NoError(t, err)
		lo := before.Mul(decimal.NewFromFloat(investmentReturnMin)).Round(2)
		hi := before.Mul(decimal.NewFromFloat(investmentReturnMax)).Round(2)
		assert.True(t, delta.GreaterThanOrEqual(lo) && delta.LessThanOrEqual(hi),
			"year %d return %s outside [%s, %s]", year, delta, lo, hi)
		assert.False(t, acct.Balance.IsNegative(), "investment balance stays non-negative")
	}
}

func TestApplyYearlyInterest_ZeroBalanceCardSkips(t *testing.T) {
	l, _ := newLedger("0")
	card, _ := l.OpenAccount(OpenParams{Type: model.AccountCreditCard, Year: 2030})

	delta, err := l.ApplyYearlyInterest(card.ID, 2031)
	require.NoError(t, err)
	assert.True(t, delta.IsZero())
	assert.Empty(t, card.Transactions, "no accrual transaction on a zero balance")
}

func TestTransfer(t *testing.T) {
	l, _ := newLedger("5000")
	from, _ := l.OpenAccount(OpenParams{Type: model.AccountChecking, InitialAmount: dec("2000"), Year: 2030})
	to, _ := l.OpenAccount(OpenParams{Type: model.AccountSavings, InitialAmount: dec("1000"), Year: 2030})

	require.NoError(t, l.Transfer(from.ID, to.ID, dec("500"), 2030))
	assert.True(t, from.Balance.Equal(dec("1500")))
	assert.True(t, to.Balance.Equal(dec("1500")))
	assert.Len(t, l.TransactionsForYear(2030, model.TxnTransfer), 2)
}

func TestCloseAccount_PaysOutFinalBalance(t *testing.T) {
	l, cash := newLedger("5000")
	acct, _ := l.OpenAccount(OpenParams{Type: model.AccountSavings, InitialAmount: dec("1200"), Year: 2030})

	final, err := l.CloseAccount(acct.ID)
	require.NoError(t, err)
	assert.True(t, final.Equal(dec("1200")))
	assert.False(t, acct.Active)
	assert.True(t, acct.Balance.IsZero())
	assert.True(t, cash.Cash().Equal(dec("5000")), "balance settles back to cash")

	err = l.Deposit(acct.ID, dec("10"), 2030)
	assert.ErrorIs(t, err, model.ErrAccountInactive)
}

func TestCloseAccount_OutstandingDebtRejected(t *testing.T) {
	l, _ := newLedger("0")
	loan, _ := l.OpenAccount(OpenParams{Type: model.AccountPersonalLoan, InitialAmount: dec("1000"), Year: 2030})
	_, err := l.CloseAccount(loan.ID)
	assert.ErrorIs(t, err, model.ErrInvalidAmount)
	assert.True(t, loan.Active)
}

func TestSettleDebt(t *testing.T) {
	l, cash := newLedger("0")
	loan, _ := l.OpenAccount(OpenParams{Type: model.AccountMortgage, InitialAmount: dec("150000"), Year: 2030})

	payoff, err := l.SettleDebt(loan.ID, 2031, "Mortgage payoff at sale")
	require.NoError(t, err)
	assert.True(t, payoff.Equal(dec("150000")))
	assert.True(t, loan.Balance.IsZero())
	assert.False(t, loan.Active)
	assert.True(t, cash.Cash().IsZero(), "settlement cash is handled by the caller")
	assert.Equal(t, model.TxnPayment, loan.Transactions[len(loan.Transactions)-1].Type)
}

func TestBalanceSignMatchesClass(t *testing.T) {
	l, _ := newLedger("50000")
	checking, _ := l.OpenAccount(OpenParams{Type: model.AccountChecking, InitialAmount: dec("5000"), Year: 2030})
	card, _ := l.OpenAccount(OpenParams{Type: model.AccountCreditCard, Year: 2030})
	loan, _ := l.OpenAccount(OpenParams{Type: model.AccountAutoLoan, InitialAmount: dec("9000"), Year: 2030})

	_ = l.Withdraw(card.ID, dec("1000"), 2030)
	_, _ = l.MakePayment(loan.ID, dec("4000"), 2030)
	_ = l.Deposit(checking.ID, dec("100"), 2030)
	for _, id := range []int{checking.ID, card.ID, loan.ID} {
		_, _ = l.ApplyYearlyInterest(id, 2031)
	}

	for _, a := range l.Accounts() {
		if a.IsDebt() {
			assert.False(t, a.Balance.IsPositive(), "%s balance %s must be <= 0", a.Type, a.Balance)
		} else {
			assert.False(t, a.Balance.IsNegative(), "%s balance %s must be >= 0", a.Type, a.Balance)
		}
	}
}

func TestNotFound(t *testing.T) {
	l, _ := newLedger("0")
	_, err := l.Account(99)
	var nf *model.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, 99, nf.ID)
}
