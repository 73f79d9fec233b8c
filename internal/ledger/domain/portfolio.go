// Package domain holds the ledger's entities and invariants: portfolios,
// positions and the append-only transaction log.
package domain

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Portfolio is an investor's named collection of cash and holdings. Its
// cash balance is mutated only through the transaction processor, never
// directly by callers.
type Portfolio struct {
	gorm.Model
	// AccountID references the owning account.
	AccountID uint `gorm:"column:account_id;index;not null" json:"account_id"`
	// Name is the display name.
	Name string `gorm:"column:name;type:varchar(128);not null" json:"name"`
	// Description is free text.
	Description string `gorm:"column:description;type:text" json:"description"`
	// CashBalance is the uninvested cash, never negative.
	CashBalance decimal.Decimal `gorm:"column:cash_balance;type:decimal(20,2);not null;default:0" json:"cash_balance"`
}

func (Portfolio) TableName() string { return "portfolios" }

// NewPortfolio creates a portfolio with a zero cash balance.
func NewPortfolio(accountID uint, name, description string) *Portfolio {
	return &Portfolio{
		AccountID:   accountID,
		Name:        name,
		Description: description,
		CashBalance: decimal.Zero,
	}
}

// Credit adds cash to the portfolio.
func (p *Portfolio) Credit(amount decimal.Decimal) {
	p.CashBalance = p.CashBalance.Add(amount)
}

// Debit removes cash from the portfolio. It fails with
// InsufficientFundsError when the balance would go negative, leaving the
// portfolio untouched.
func (p *Portfolio) Debit(amount decimal.Decimal) error {
	if p.CashBalance.LessThan(amount) {
		return &InsufficientFundsError{
			Required:  amount,
			Available: p.CashBalance,
		}
	}
	p.CashBalance = p.CashBalance.Sub(amount)
	return nil
}
