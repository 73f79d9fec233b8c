package domain

import "context"

// ProductRepository is the catalog store.
type ProductRepository interface {
	// Create inserts a new product.
	Create(ctx context.Context, product *Product) error
	// GetByID loads a product or returns ErrProductNotFound.
	GetByID(ctx context.Context, id uint) (*Product, error)
	// List returns products, optionally filtered to one type.
	List(ctx context.Context, productType ProductType, offset, limit int) ([]*Product, int64, error)
	// Save persists a mutated product.
	Save(ctx context.Context, product *Product) error
}
