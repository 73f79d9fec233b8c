package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// ProductCatalog is the external product lookup the processor uses to
// validate product ids and name products in notifications.
type ProductCatalog interface {
	// GetProductName resolves a product id to its display name or returns
	// ErrProductNotFound.
	GetProductName(ctx context.Context, productID uint) (string, error)
}

// TransactionNotifier is told about committed transactions. Calls are
// best-effort: a notification failure never unwinds a committed ledger
// entry.
type TransactionNotifier interface {
	NotifyTransaction(ctx context.Context, accountID uint, txType TransactionType,
		quantity, amount decimal.Decimal, productName, portfolioName string) error
}
