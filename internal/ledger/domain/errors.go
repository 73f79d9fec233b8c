package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrPortfolioNotFound is returned when a portfolio id does not exist.
	ErrPortfolioNotFound = errors.New("portfolio not found")
	// ErrProductNotFound is returned when a product id does not exist.
	ErrProductNotFound = errors.New("product not found")
	// ErrTransactionNotFound is returned when a transaction id does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrInvalidAmount is returned for non-positive deposit amounts.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrInvalidRequest is returned when a request is structurally invalid.
	ErrInvalidRequest = errors.New("invalid transaction request")
	// ErrConcurrencyConflict is returned when the portfolio state changed
	// between resolve and write. The caller may retry with fresh state.
	ErrConcurrencyConflict = errors.New("portfolio modified by a concurrent transaction")
)

// InsufficientFundsError rejects a buy whose cost exceeds the available
// cash. It carries the numbers the caller needs to explain the rejection.
type InsufficientFundsError struct {
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: required %s, available %s",
		e.Required.StringFixed(2), e.Available.StringFixed(2))
}

// InsufficientHoldingsError rejects a sell of more units than held.
type InsufficientHoldingsError struct {
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientHoldingsError) Error() string {
	return fmt.Sprintf("insufficient holdings: trying to sell %s, available %s",
		e.Requested.String(), e.Available.String())
}

// IsBusinessRejection reports whether err is an expected business-rule
// rejection rather than an infrastructure failure.
func IsBusinessRejection(err error) bool {
	var funds *InsufficientFundsError
	var holdings *InsufficientHoldingsError
	return errors.As(err, &funds) ||
		errors.As(err, &holdings) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidRequest)
}
