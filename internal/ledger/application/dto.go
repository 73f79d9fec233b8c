package application

import (
	"github.com/shopspring/decimal"
	"github.com/vunguard/ledger/internal/ledger/domain"
)

// TransactionRequest carries one validated buy/sell/deposit against a
// portfolio. Authorization has already happened upstream: the caller
// vouches that the requesting account owns the portfolio.
type TransactionRequest struct {
	PortfolioID uint
	Type        domain.TransactionType
	// ProductID is required for buy/sell and must be zero for deposits.
	ProductID uint
	// Quantity and Price are required positive for buy/sell.
	Quantity decimal.Decimal
	Price    decimal.Decimal
	// Amount is required positive for deposits.
	Amount decimal.Decimal
	Notes  string
}

// TransactionDTO is the committed ledger entry returned to callers.
type TransactionDTO struct {
	TransactionID   string `json:"transaction_id"`
	PortfolioID     uint   `json:"portfolio_id"`
	PortfolioName   string `json:"portfolio_name"`
	ProductID       *uint  `json:"product_id,omitempty"`
	ProductName     string `json:"product_name,omitempty"`
	Type            string `json:"type"`
	Quantity        string `json:"quantity,omitempty"`
	Price           string `json:"price,omitempty"`
	Amount          string `json:"amount"`
	Notes           string `json:"notes,omitempty"`
	TransactionDate int64  `json:"transaction_date"`
}

// PositionDTO is a holding within a portfolio state view.
type PositionDTO struct {
	ProductID     uint   `json:"product_id"`
	Quantity      string `json:"quantity"`
	PurchasePrice string `json:"purchase_price"`
	CurrentPrice  string `json:"current_price"`
	MarketValue   string `json:"market_value"`
}

// PortfolioStateDTO is the resolver's answer: current cash and, when a
// product was asked for, the matching position.
type PortfolioStateDTO struct {
	PortfolioID uint         `json:"portfolio_id"`
	AccountID   uint         `json:"account_id"`
	Name        string       `json:"name"`
	CashBalance string       `json:"cash_balance"`
	Position    *PositionDTO `json:"position,omitempty"`
}

// PortfolioDTO describes a portfolio.
type PortfolioDTO struct {
	ID          uint   `json:"id"`
	AccountID   uint   `json:"account_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CashBalance string `json:"cash_balance"`
	CreatedAt   int64  `json:"created_at"`
}

func toTransactionDTO(t *domain.Transaction, portfolioName, productName string) *TransactionDTO {
	dto := &TransactionDTO{
		TransactionID:   t.TransactionID,
		PortfolioID:     t.PortfolioID,
		PortfolioName:   portfolioName,
		ProductID:       t.ProductID,
		ProductName:     productName,
		Type:            string(t.Type),
		Amount:          t.Amount.StringFixed(2),
		Notes:           t.Notes,
		TransactionDate: t.TransactionDate.Unix(),
	}
	if t.Quantity.Valid {
		dto.Quantity = t.Quantity.Decimal.String()
	}
	if t.Price.Valid {
		dto.Price = t.Price.Decimal.StringFixed(2)
	}
	return dto
}

func toTransactionViewDTO(v *domain.TransactionView) *TransactionDTO {
	return toTransactionDTO(&v.Transaction, v.PortfolioName, v.ProductName)
}

func toPositionDTO(p *domain.Position) *PositionDTO {
	return &PositionDTO{
		ProductID:     p.ProductID,
		Quantity:      p.Quantity.String(),
		PurchasePrice: p.PurchasePrice.StringFixed(2),
		CurrentPrice:  p.CurrentPrice.StringFixed(2),
		MarketValue:   p.MarketValue().StringFixed(2),
	}
}

func toPortfolioDTO(p *domain.Portfolio) *PortfolioDTO {
	return &PortfolioDTO{
		ID:          p.ID,
		AccountID:   p.AccountID,
		Name:        p.Name,
		Description: p.Description,
		CashBalance: p.CashBalance.StringFixed(2),
		CreatedAt:   p.CreatedAt.Unix(),
	}
}
