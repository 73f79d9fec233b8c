package domain

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Position is the holding of one product inside one portfolio. At most
// one row exists per (portfolio, product) pair; a row with quantity zero
// is valid and is retained after a full sell-off.
type Position struct {
	gorm.Model
	PortfolioID uint `gorm:"column:portfolio_id;uniqueIndex:idx_portfolio_product;not null" json:"portfolio_id"`
	ProductID   uint `gorm:"column:product_id;uniqueIndex:idx_portfolio_product;not null" json:"product_id"`
	// Quantity held, never negative.
	Quantity decimal.Decimal `gorm:"column:quantity;type:decimal(20,6);not null" json:"quantity"`
	// PurchasePrice is the cost-basis reference, fixed at the first buy.
	PurchasePrice decimal.Decimal `gorm:"column:purchase_price;type:decimal(20,2);not null" json:"purchase_price"`
	// CurrentPrice is the latest known market price.
	CurrentPrice decimal.Decimal `gorm:"column:current_price;type:decimal(20,2);not null" json:"current_price"`
}

func (Position) TableName() string { return "positions" }

// NewPosition opens a position on the first buy of a product. Both the
// cost-basis reference and the current price start at the trade price.
func NewPosition(portfolioID, productID uint, quantity, price decimal.Decimal) *Position {
	return &Position{
		PortfolioID:   portfolioID,
		ProductID:     productID,
		Quantity:      quantity,
		PurchasePrice: price,
		CurrentPrice:  price,
	}
}

// Add increases the held quantity.
func (p *Position) Add(quantity decimal.Decimal) {
	p.Quantity = p.Quantity.Add(quantity)
}

// Reduce decreases the held quantity. It fails with
// InsufficientHoldingsError when more is sold than held, leaving the
// position untouched.
func (p *Position) Reduce(quantity decimal.Decimal) error {
	if p.Quantity.LessThan(quantity) {
		return &InsufficientHoldingsError{
			Requested: quantity,
			Available: p.Quantity,
		}
	}
	p.Quantity = p.Quantity.Sub(quantity)
	return nil
}

// IsEmpty reports whether the position holds nothing.
func (p *Position) IsEmpty() bool {
	return p.Quantity.IsZero()
}

// MarketValue values the position at the latest known price.
func (p *Position) MarketValue() decimal.Decimal {
	return p.Quantity.Mul(p.CurrentPrice)
}
