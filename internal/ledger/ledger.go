// Package ledger owns the collection of bank accounts and their
// append-only transaction logs. All balance mutations flow through the
// operations here; callers never touch account fields directly.
package ledger

import (
	"fmt"
	"math/rand"

	"github.com/shopspring/decimal"

	"github.com/finsim-dev/finsim/internal/model"
)

// Rate jitter and investment-return sampling bounds. Values outside these
// ranges are defects, not runtime errors.
const (
	rateJitterBand      = 0.005 // +/- 0.5% at origination
	investmentReturnMin = -0.15
	investmentReturnMax = 0.25
)

// CashHolder exposes the caller's cash balance. The game loop owns the
// cash; the ledger reads and writes it only through this interface.
type CashHolder interface {
	Cash() decimal.Decimal
	SetCash(decimal.Decimal)
}

// Ledger is the arena of accounts keyed by stable integer handles, plus a
// global chronological transaction log.
type Ledger struct {
	rng      *rand.Rand
	cash     CashHolder
	accounts map[int]*model.Account
	order    []int // insertion order for deterministic sweeps
	log      []model.Transaction
	nextID   int
}

// New creates an empty ledger. A nil rng gets a fixed seed.
func New(rng *rand.Rand, cash CashHolder) *Ledger {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Ledger{
		rng:      rng,
		cash:     cash,
		accounts: make(map[int]*model.Account),
		nextID:   1,
	}
}

// OpenParams holds parameters for opening an account.
type OpenParams struct {
	Type          model.AccountType
	InitialAmount decimal.Decimal
	TermYears     int // 0 = type default
	CollateralID  int
	Year          int
	RateAdjust    float64 // regime effect + credit modifier
	Disburse      bool    // credit loan principal to cash (standalone loans)
}

// OpenAccount creates an account. Asset-class accounts require the cash
// to cover a positive initial deposit; debt-class accounts start at
// -|amount| with a loan disbursement transaction, independent of cash on
// hand. The interest rate is fixed at creation: base rate for the type,
// plus RateAdjust, plus jitter within +/-0.5%.
func (l *Ledger) OpenAccount(p OpenParams) (*model.Account, error) {
	traits := model.Traits(p.Type)
	amount := p.InitialAmount.Abs().Round(2)

	term := p.TermYears
	if term == 0 {
		term = traits.DefaultTerm
	}

	jitter := (l.rng.Float64()*2 - 1) * rateJitterBand
	rate := traits.BaseRate + p.RateAdjust + jitter
	if rate < 0 {
		rate = 0
	}

	acct := &model.Account{
		ID:           l.nextID,
		Type:         p.Type,
		InterestRate: rate,
		TermYears:    term,
		CreationYear: p.Year,
		CollateralID: p.CollateralID,
		Active:       true,
	}
	if traits.Revolving {
		acct.CreditLimit = decimal.NewFromInt(5000)
	}

	if traits.Class == model.ClassDebt {
		acct.Balance = amount.Neg()
		l.record(acct, model.NewTransaction(acct.ID, model.TxnLoan, amount,
			fmt.Sprintf("%s disbursement", traits.Description), p.Year))
		if p.Disburse {
			l.cash.SetCash(l.cash.Cash().Add(amount))
		}
	} else if amount.IsPositive() {
		if l.cash.Cash().LessThan(amount) {
			return nil, fmt.Errorf("opening %s with %s deposit: %w", p.Type, amount, model.ErrInsufficientFunds)
		}
		l.cash.SetCash(l.cash.Cash().Sub(amount))
		acct.Balance = amount
		l.record(acct, model.NewTransaction(acct.ID, model.TxnDeposit, amount, "Initial deposit", p.Year))
	}

	l.accounts[acct.ID] = acct
	l.order = append(l.order, acct.ID)
	l.nextID++
	return acct, nil
}

// Deposit moves cash into an asset account.
func (l *Ledger) Deposit(accountID int, amount decimal.Decimal, year int) error {
	acct, err := l.active(accountID)
	if err != nil {
		return err
	}
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return model.ErrInvalidAmount
	}
	if acct.IsDebt() {
		return fmt.Errorf("account %d is debt-class: %w", accountID, model.ErrInvalidAmount)
	}
	if l.cash.Cash().LessThan(amount) {
		return fmt.Errorf("depositing %s: %w", amount, model.ErrInsufficientFunds)
	}
	l.cash.SetCash(l.cash.Cash().Sub(amount))
	acct.Balance = acct.Balance.Add(amount)
	l.record(acct, model.NewTransaction(accountID, model.TxnDeposit, amount, "Deposit", year))
	return nil
}

// Withdraw moves money out of an account into cash. Asset accounts are
// limited by their balance, credit cards by remaining credit, and CDs
// reject any withdrawal before maturity.
func (l *Ledger) Withdraw(accountID int, amount decimal.Decimal, year int) error {
	acct, err := l.active(accountID)
	if err != nil {
		return err
	}
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return model.ErrInvalidAmount
	}
	traits := model.Traits(acct.Type)
	switch {
	case traits.MaturityLock && !acct.Matured(year):
		return fmt.Errorf("CD matures in %d: %w", acct.CreationYear+acct.TermYears, model.ErrAccountInactive)
	case traits.Revolving:
		if amount.GreaterThan(acct.AvailableCredit()) {
			return fmt.Errorf("cash advance of %s over limit: %w", amount, model.ErrInsufficientFunds)
		}
	case acct.IsDebt():
		return fmt.Errorf("account %d is debt-class: %w", accountID, model.ErrInvalidAmount)
	default:
		if amount.GreaterThan(acct.Balance) {
			return fmt.Errorf("withdrawing %s from balance %s: %w", amount, acct.Balance, model.ErrInsufficientFunds)
		}
	}
	acct.Balance = acct.Balance.Sub(amount)
	l.cash.SetCash(l.cash.Cash().Add(amount))
	l.record(acct, model.NewTransaction(accountID, model.TxnWithdrawal, amount, "Withdrawal", year))
	return nil
}

// MakePayment pays cash toward a debt account. Overpayment is clamped:
// the balance snaps to exactly zero, the account deactivates, and only
// the payoff amount is charged. Returns the amount actually applied.
func (l *Ledger) MakePayment(accountID int, amount decimal.Decimal, year int) (decimal.Decimal, error) {
	acct, err := l.active(accountID)
	if err != nil {
		return decimal.Zero, err
	}
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return decimal.Zero, model.ErrInvalidAmount
	}
	if !acct.IsDebt() {
		return decimal.Zero, fmt.Errorf("account %d is not debt-class: %w", accountID, model.ErrInvalidAmount)
	}
	applied := amount
	if applied.GreaterThan(acct.Debt()) {
		applied = acct.Debt()
	}
	if l.cash.Cash().LessThan(applied) {
		return decimal.Zero, fmt.Errorf("paying %s: %w", applied, model.ErrInsufficientFunds)
	}
	l.cash.SetCash(l.cash.Cash().Sub(applied))
	acct.Balance = acct.Balance.Add(applied)
	l.record(acct, model.NewTransaction(accountID, model.TxnPayment, applied,
		fmt.Sprintf("Payment on %s", model.Traits(acct.Type).Description), year))
	if !acct.Balance.IsNegative() {
		acct.Balance = decimal.Zero
		acct.Active = false
	}
	return applied, nil
}

// ApplyYearlyInterest accrues one year of interest on an account and
// returns the signed balance delta. Asset accounts earn balance*rate;
// debt accounts accrue |balance|*rate of additional debt; investment
// accounts apply a uniformly sampled return in [-15%, +25%]. A
// zero-balance revolving account does not accrue. Exactly one Interest
// (positive delta) or Fee (negative delta) transaction is appended.
func (l *Ledger) ApplyYearlyInterest(accountID, year int) (decimal.Decimal, error) {
	acct, err := l.active(accountID)
	if err != nil {
		return decimal.Zero, err
	}
	traits := model.Traits(acct.Type)

	var delta decimal.Decimal
	var desc string
	switch {
	case acct.Type == model.AccountInvestment:
		ret := investmentReturnMin + l.rng.Float64()*(investmentReturnMax-investmentReturnMin)
		delta = acct.Balance.Mul(decimal.NewFromFloat(ret)).Round(2)
		desc = fmt.Sprintf("Investment return (%.1f%%)", ret*100)
	case traits.Class == model.ClassDebt:
		if acct.Balance.IsZero() {
			return decimal.Zero, nil
		}
		delta = acct.Debt().Mul(decimal.NewFromFloat(acct.InterestRate)).Round(2).Neg()
		desc = fmt.Sprintf("Interest charged (%.2f%%)", acct.InterestRate*100)
	default:
		delta = acct.Balance.Mul(decimal.NewFromFloat(acct.InterestRate)).Round(2)
		desc = fmt.Sprintf("Interest earned (%.2f%%)", acct.InterestRate*100)
	}

	if delta.IsZero() {
		return decimal.Zero, nil
	}
	acct.Balance = acct.Balance.Add(delta)
	txnType := model.TxnInterest
	if delta.IsNegative() {
		txnType = model.TxnFee
	}
	l.record(acct, model.NewTransaction(accountID, txnType, delta, desc, year))
	return delta, nil
}

// Transfer moves money between two asset accounts.
func (l *Ledger) Transfer(fromID, toID int, amount decimal.Decimal, year int) error {
	from, err := l.active(fromID)
	if err != nil {
		return err
	}
	to, err := l.active(toID)
	if err != nil {
		return err
	}
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return model.ErrInvalidAmount
	}
	if from.IsDebt() || to.IsDebt() {
		return fmt.Errorf("transfers require asset accounts: %w", model.ErrInvalidAmount)
	}
	if amount.GreaterThan(from.Balance) {
		return fmt.Errorf("transferring %s from balance %s: %w", amount, from.Balance, model.ErrInsufficientFunds)
	}
	from.Balance = from.Balance.Sub(amount)
	to.Balance = to.Balance.Add(amount)
	l.record(from, model.NewTransaction(fromID, model.TxnTransfer, amount, fmt.Sprintf("Transfer to account %d", toID), year))
	l.record(to, model.NewTransaction(toID, model.TxnTransfer, amount, fmt.Sprintf("Transfer from account %d", fromID), year))
	return nil
}

// SettleDebt pays off a debt account from proceeds already accounted
// for by the caller (e.g. a property sale): records a Payment for the
// payoff, snaps the balance to zero, and deactivates. Returns the payoff
// amount.
func (l *Ledger) SettleDebt(accountID, year int, description string) (decimal.Decimal, error) {
	acct, err := l.active(accountID)
	if err != nil {
		return decimal.Zero, err
	}
	if !acct.IsDebt() {
		return decimal.Zero, fmt.Errorf("account %d is not debt-class: %w", accountID, model.ErrInvalidAmount)
	}
	payoff := acct.Debt()
	if payoff.IsPositive() {
		l.record(acct, model.NewTransaction(accountID, model.TxnPayment, payoff, description, year))
	}
	acct.Balance = decimal.Zero
	acct.Active = false
	return payoff, nil
}

// RecordCash appends a cash-level transaction (account handle 0) to the
// global log: purchases, sales, rent and taxes that settle directly
// against the caller's cash.
func (l *Ledger) RecordCash(t model.TransactionType, amount decimal.Decimal, description string, year int) {
	l.log = append(l.log, model.NewTransaction(0, t, amount, description, year))
}

// CloseAccount marks an account inactive, pays any positive balance out
// to cash, and returns the final balance. A debt account with an
// outstanding balance must be paid off first; closing it would silently
// destroy the debt.
func (l *Ledger) CloseAccount(accountID int) (decimal.Decimal, error) {
	acct, ok := l.accounts[accountID]
	if !ok {
		return decimal.Zero, &model.NotFoundError{Kind: "account", ID: accountID}
	}
	if acct.Balance.IsNegative() {
		return decimal.Zero, fmt.Errorf("account %d has outstanding debt %s: %w", accountID, acct.Debt(), model.ErrInvalidAmount)
	}
	final := acct.Balance
	if final.IsPositive() {
		l.cash.SetCash(l.cash.Cash().Add(final))
		acct.Balance = decimal.Zero
	}
	acct.Active = false
	return final, nil
}

// Account looks up an account by handle.
func (l *Ledger) Account(accountID int) (*model.Account, error) {
	acct, ok := l.accounts[accountID]
	if !ok {
		return nil, &model.NotFoundError{Kind: "account", ID: accountID}
	}
	return acct, nil
}

// Accounts returns every account in creation order.
func (l *Ledger) Accounts() []*model.Account {
	out := make([]*model.Account, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.accounts[id])
	}
	return out
}

// ActiveAccounts returns active accounts in creation order.
func (l *Ledger) ActiveAccounts() []*model.Account {
	var out []*model.Account
	for _, id := range l.order {
		if a := l.accounts[id]; a.Active {
			out = append(out, a)
		}
	}
	return out
}

// Log returns the global chronological transaction log.
func (l *Ledger) Log() []model.Transaction { return l.log }

// TransactionsForYear filters the global log by year and, optionally, by
// transaction types.
func (l *Ledger) TransactionsForYear(year int, types ...model.TransactionType) []model.Transaction {
	var out []model.Transaction
	for _, txn := range l.log {
		if txn.Year != year {
			continue
		}
		if len(types) == 0 {
			out = append(out, txn)
			continue
		}
		for _, t := range types {
			if txn.Type == t {
				out = append(out, txn)
				break
			}
		}
	}
	return out
}

// TotalAssets sums active asset-class balances.
func (l *Ledger) TotalAssets() decimal.Decimal {
	total := decimal.Zero
	for _, id := range l.order {
		a := l.accounts[id]
		if a.Active && !a.IsDebt() {
			total = total.Add(a.Balance)
		}
	}
	return total
}

// TotalDebt sums active debt magnitudes.
func (l *Ledger) TotalDebt() decimal.Decimal {
	total := decimal.Zero
	for _, id := range l.order {
		a := l.accounts[id]
		if a.Active {
			total = total.Add(a.Debt())
		}
	}
	return total
}

// Restore rebuilds ledger state from persisted records. Used by snapshot
// decoding only.
func (l *Ledger) Restore(accounts []*model.Account, log []model.Transaction, nextID int) {
	l.accounts = make(map[int]*model.Account, len(accounts))
	l.order = l.order[:0]
	for _, a := range accounts {
		l.accounts[a.ID] = a
		l.order = append(l.order, a.ID)
	}
	l.log = log
	l.nextID = nextID
}

// NextID exposes the arena cursor for persistence.
func (l *Ledger) NextID() int { return l.nextID }

func (l *Ledger) active(accountID int) (*model.Account, error) {
	acct, ok := l.accounts[accountID]
	if !ok {
		return nil, &model.NotFoundError{Kind: "account", ID: accountID}
	}
	if !acct.Active {
		return nil, fmt.Errorf("account %d: %w", accountID, model.ErrAccountInactive)
	}
	return acct, nil
}

func (l *Ledger) record(acct *model.Account, txn model.Transaction) {
	acct.Transactions = append(acct.Transactions, txn)
	l.log = append(l.log, txn)
}
