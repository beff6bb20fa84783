package model

import "github.com/shopspring/decimal"

// AccountType identifies the product behind an account.
type AccountType string

const (
	AccountChecking     AccountType = "checking"
	AccountSavings      AccountType = "savings"
	AccountCreditCard   AccountType = "credit-card"
	AccountCD           AccountType = "cd"
	AccountInvestment   AccountType = "investment"
	AccountMortgage     AccountType = "mortgage"
	AccountAutoLoan     AccountType = "auto-loan"
	AccountStudentLoan  AccountType = "student-loan"
	AccountPersonalLoan AccountType = "personal-loan"
	AccountBusiness     AccountType = "business"
	AccountRetirement   AccountType = "retirement"
)

// AccountClass splits account types into balance-sign classes: asset
// balances stay >= 0, debt balances stay <= 0.
type AccountClass string

const (
	ClassAsset AccountClass = "asset"
	ClassDebt  AccountClass = "debt"
)

// AccountTypeTraits describes per-type behavior consumed everywhere an
// account type matters: interest math, origination defaults, descriptions.
type AccountTypeTraits struct {
	Class        AccountClass
	BaseRate     float64 // annual, before regime effect and jitter
	DefaultTerm  int     // years; 0 = open-ended
	Description  string
	MaturityLock bool // CDs reject withdrawals before term end
	Revolving    bool // credit cards carry a limit instead of a term
}

// accountTraits is the single lookup table for per-type behavior.
var accountTraits = map[AccountType]AccountTypeTraits{
	AccountChecking:     {Class: ClassAsset, BaseRate: 0.001, Description: "Checking Account"},
	AccountSavings:      {Class: ClassAsset, BaseRate: 0.02, Description: "Savings Account"},
	AccountCreditCard:   {Class: ClassDebt, BaseRate: 0.18, Description: "Credit Card", Revolving: true},
	AccountCD:           {Class: ClassAsset, BaseRate: 0.04, DefaultTerm: 2, Description: "Certificate of Deposit", MaturityLock: true},
	AccountInvestment:   {Class: ClassAsset, BaseRate: 0.07, Description: "Investment Account"},
	AccountMortgage:     {Class: ClassDebt, BaseRate: 0.045, DefaultTerm: 30, Description: "Mortgage"},
	AccountAutoLoan:     {Class: ClassDebt, BaseRate: 0.065, DefaultTerm: 5, Description: "Auto Loan"},
	AccountStudentLoan:  {Class: ClassDebt, BaseRate: 0.05, DefaultTerm: 10, Description: "Student Loan"},
	AccountPersonalLoan: {Class: ClassDebt, BaseRate: 0.10, DefaultTerm: 3, Description: "Personal Loan"},
	AccountBusiness:     {Class: ClassAsset, BaseRate: 0.015, Description: "Business Account"},
	AccountRetirement:   {Class: ClassAsset, BaseRate: 0.06, Description: "Retirement Account"},
}

// Traits returns the behavior table entry for a type. Unknown types get
// zero-value asset traits rather than a panic.
func Traits(t AccountType) AccountTypeTraits {
	tr, ok := accountTraits[t]
	if !ok {
		return AccountTypeTraits{Class: ClassAsset}
	}
	return tr
}

// AccountTypes lists every known type in a stable order.
func AccountTypes() []AccountType {
	return []AccountType{
		AccountChecking, AccountSavings, AccountCreditCard, AccountCD,
		AccountInvestment, AccountMortgage, AccountAutoLoan,
		AccountStudentLoan, AccountPersonalLoan, AccountBusiness,
		AccountRetirement,
	}
}

// Account is one ledger account. Balance is signed: asset-class accounts
// keep Balance >= 0, debt-class accounts keep Balance <= 0 (the magnitude
// is the outstanding debt).
type Account struct {
	ID           int
	Type         AccountType
	Balance      decimal.Decimal
	InterestRate float64 // fixed at origination, changed only by refinance
	TermYears    int
	CreationYear int
	CollateralID int             // 0 = unsecured
	PropertyID   int             // 0 = not property-linked
	CreditLimit  decimal.Decimal // revolving accounts only
	Active       bool
	Transactions []Transaction // append-only, chronological
}

// IsDebt reports whether the account's type is debt-class.
func (a *Account) IsDebt() bool {
	return Traits(a.Type).Class == ClassDebt
}

// Debt returns the outstanding debt magnitude, zero for asset accounts.
func (a *Account) Debt() decimal.Decimal {
	if a.Balance.IsNegative() {
		return a.Balance.Neg()
	}
	return decimal.Zero
}

// AvailableCredit returns remaining spend room on a revolving account.
func (a *Account) AvailableCredit() decimal.Decimal {
	if !Traits(a.Type).Revolving {
		return decimal.Zero
	}
	avail := a.CreditLimit.Sub(a.Debt())
	if avail.IsNegative() {
		return decimal.Zero
	}
	return avail
}

// Matured reports whether a term account has reached maturity.
func (a *Account) Matured(year int) bool {
	if a.TermYears <= 0 {
		return true
	}
	return year-a.CreationYear >= a.TermYears
}
