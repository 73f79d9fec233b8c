package application

import "github.com/vunguard/ledger/internal/catalog/domain"

// ProductDTO is the catalog product returned to callers.
type ProductDTO struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Symbol    string `json:"symbol"`
	Type      string `json:"type"`
	Price     string `json:"price"`
	Active    bool   `json:"active"`
	CreatedAt int64  `json:"created_at"`
}

func toProductDTO(p *domain.Product) *ProductDTO {
	return &ProductDTO{
		ID:        p.ID,
		Name:      p.Name,
		Symbol:    p.Symbol,
		Type:      string(p.Type),
		Price:     p.Price.StringFixed(2),
		Active:    p.Active,
		CreatedAt: p.CreatedAt.Unix(),
	}
}
