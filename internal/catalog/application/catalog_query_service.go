package application

import (
	"context"

	"github.com/vunguard/ledger/internal/catalog/domain"
)

// CatalogQueryService handles catalog reads.
type CatalogQueryService struct {
	repo domain.ProductRepository
}

// NewCatalogQueryService creates the query service.
func NewCatalogQueryService(repo domain.ProductRepository) *CatalogQueryService {
	return &CatalogQueryService{repo: repo}
}

// GetProduct loads one product or returns domain.ErrProductNotFound.
func (s *CatalogQueryService) GetProduct(ctx context.Context, id uint) (*ProductDTO, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProductDTO(product), nil
}

// ListProducts pages through the catalog, optionally by type.
func (s *CatalogQueryService) ListProducts(ctx context.Context, productType domain.ProductType, page, size int) ([]*ProductDTO, int64, error) {
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size
	if offset < 0 {
		offset = 0
	}

	products, total, err := s.repo.List(ctx, productType, offset, size)
	if err != nil {
		return nil, 0, err
	}
	dtos := make([]*ProductDTO, len(products))
	for i, p := range products {
		dtos[i] = toProductDTO(p)
	}
	return dtos, total, nil
}
