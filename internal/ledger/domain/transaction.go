package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	TransactionTypeBuy     TransactionType = "buy"
	TransactionTypeSell    TransactionType = "sell"
	TransactionTypeDeposit TransactionType = "deposit"
)

// Valid reports whether the type is one of buy, sell, deposit.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeBuy, TransactionTypeSell, TransactionTypeDeposit:
		return true
	}
	return false
}

// Transaction is one immutable entry of the append-only ledger. Rows are
// only ever inserted; the balance and position state is reconstructible
// by replaying them in order.
type Transaction struct {
	gorm.Model
	// TransactionID is the business identifier.
	TransactionID string `gorm:"column:transaction_id;type:varchar(36);uniqueIndex;not null" json:"transaction_id"`
	PortfolioID   uint   `gorm:"column:portfolio_id;index;not null" json:"portfolio_id"`
	// ProductID is nil for pure cash deposits.
	ProductID *uint           `gorm:"column:product_id;index" json:"product_id"`
	Type      TransactionType `gorm:"column:type;type:varchar(10);not null" json:"type"`
	// Quantity and Price are null for deposits.
	Quantity decimal.NullDecimal `gorm:"column:quantity;type:decimal(20,6)" json:"quantity"`
	Price    decimal.NullDecimal `gorm:"column:price;type:decimal(20,2)" json:"price"`
	// Amount is quantity*price for buy/sell, the raw amount for deposits.
	Amount decimal.Decimal `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	Notes  string          `gorm:"column:notes;type:varchar(500)" json:"notes"`
	// TransactionDate is assigned by the server at commit time.
	TransactionDate time.Time `gorm:"column:transaction_date;not null" json:"transaction_date"`
}

func (Transaction) TableName() string { return "transactions" }

// SignedAmount is the entry's effect on the cash balance: deposits and
// sells credit, buys debit.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionTypeBuy {
		return t.Amount.Neg()
	}
	return t.Amount
}

// TransactionView is a transaction joined with the display names the
// audit trail shows.
type TransactionView struct {
	Transaction
	PortfolioName string `json:"portfolio_name"`
	ProductName   string `json:"product_name"`
}
