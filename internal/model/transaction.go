package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType classifies ledger transactions. Amounts are always
// stored positive; the sign of the balance effect is implied by the type.
type TransactionType string

const (
	TxnDeposit    TransactionType = "deposit"
	TxnWithdrawal TransactionType = "withdrawal"
	TxnTransfer   TransactionType = "transfer"
	TxnPayment    TransactionType = "payment"
	TxnFee        TransactionType = "fee"
	TxnInterest   TransactionType = "interest"
	TxnLoan       TransactionType = "loan"
	TxnPurchase   TransactionType = "purchase"
	TxnSale       TransactionType = "sale"
	TxnTax        TransactionType = "tax"
	TxnRent       TransactionType = "rent"
)

// TxnCategory groups transaction types for reporting.
type TxnCategory string

const (
	CategoryIncome   TxnCategory = "income"
	CategoryExpense  TxnCategory = "expense"
	CategoryTransfer TxnCategory = "transfer"
	CategoryDebt     TxnCategory = "debt"
	CategoryTax      TxnCategory = "tax"
)

// Transaction is an immutable, append-only audit record.
type Transaction struct {
	ID          string
	AccountID   int
	Type        TransactionType
	Amount      decimal.Decimal // always positive
	Description string
	Year        int
}

// NewTransaction builds a transaction with a fresh ID. The amount is
// normalized to its magnitude and rounded to cents.
func NewTransaction(accountID int, t TransactionType, amount decimal.Decimal, description string, year int) Transaction {
	return Transaction{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		Type:        t,
		Amount:      amount.Abs().Round(2),
		Description: description,
		Year:        year,
	}
}

// Category derives the reporting category from the transaction type.
func (t Transaction) Category() TxnCategory {
	switch t.Type {
	case TxnDeposit, TxnInterest, TxnSale, TxnRent, TxnLoan:
		return CategoryIncome
	case TxnWithdrawal, TxnFee, TxnPurchase:
		return CategoryExpense
	case TxnTransfer:
		return CategoryTransfer
	case TxnPayment:
		return CategoryDebt
	case TxnTax:
		return CategoryTax
	}
	return CategoryExpense
}
