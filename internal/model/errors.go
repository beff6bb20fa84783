package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for the operation taxonomy. Callers match these with
// errors.Is; wrapped messages add context.
var (
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrAccountInactive    = errors.New("account inactive")
	ErrDownPaymentTooLow  = errors.New("down payment too low")
	ErrPriceBelowMortgage = errors.New("sale price below mortgage balance")
	ErrCashOutExceedsMax  = errors.New("cash-out exceeds maximum")
	ErrInvalidAmount      = errors.New("amount must be positive")
)

// NotFoundError reports a missing record by kind and handle.
type NotFoundError struct {
	Kind string // "account", "property", "collateral"
	ID   int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// NotEligibleError reports a failed eligibility gate with its reason.
type NotEligibleError struct {
	Reason string
}

func (e *NotEligibleError) Error() string {
	return fmt.Sprintf("not eligible: %s", e.Reason)
}
