// Package gateway adapts sibling contexts to the interfaces the ledger
// domain expects.
package gateway

import (
	"context"
	"errors"

	catalogdomain "github.com/vunguard/ledger/internal/catalog/domain"
	"github.com/vunguard/ledger/internal/ledger/domain"
)

type catalogGateway struct {
	products catalogdomain.ProductRepository
}

// NewCatalogGateway exposes the product catalog to the ledger. Inactive
// products are reported as missing so they cannot be traded.
func NewCatalogGateway(products catalogdomain.ProductRepository) domain.ProductCatalog {
	return &catalogGateway{products: products}
}

func (g *catalogGateway) GetProductName(ctx context.Context, productID uint) (string, error) {
	product, err := g.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, catalogdomain.ErrProductNotFound) {
			return "", domain.ErrProductNotFound
		}
		return "", err
	}
	if !product.Active {
		return "", domain.ErrProductNotFound
	}
	return product.Name, nil
}
