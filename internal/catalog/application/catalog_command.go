package application

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vunguard/ledger/internal/catalog/domain"
	"github.com/vunguard/ledger/pkg/logger"
)

// CreateProductCommand creates a catalog product.
type CreateProductCommand struct {
	Name   string
	Symbol string
	Type   domain.ProductType
	Price  decimal.Decimal
}

// UpdatePriceCommand moves a product's reference price.
type UpdatePriceCommand struct {
	ProductID uint
	Price     decimal.Decimal
}

// CatalogCommandService handles catalog writes.
type CatalogCommandService struct {
	repo      domain.ProductRepository
	publisher domain.EventPublisher
}

// NewCatalogCommandService creates the command service. publisher may be
// nil when event emission is disabled.
func NewCatalogCommandService(repo domain.ProductRepository, publisher domain.EventPublisher) *CatalogCommandService {
	return &CatalogCommandService{
		repo:      repo,
		publisher: publisher,
	}
}

// CreateProduct validates and inserts a product, then announces it.
func (s *CatalogCommandService) CreateProduct(ctx context.Context, cmd CreateProductCommand) (*ProductDTO, error) {
	if cmd.Name == "" || cmd.Symbol == "" || !cmd.Type.Valid() {
		return nil, fmt.Errorf("%w: name, symbol and type are required", domain.ErrInvalidProduct)
	}
	if cmd.Price.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: price must be positive", domain.ErrInvalidProduct)
	}

	product := domain.NewProduct(cmd.Name, cmd.Symbol, cmd.Type, cmd.Price)
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.publish(ctx, "catalog.product.created", product.Symbol, domain.ProductCreatedEvent{
		ProductID: product.ID,
		Name:      product.Name,
		Symbol:    product.Symbol,
		Type:      product.Type,
		Price:     product.Price,
		Timestamp: time.Now(),
	})

	logger.Info(ctx, "product created",
		"product_id", product.ID, "symbol", product.Symbol, "price", product.Price.StringFixed(2))
	return toProductDTO(product), nil
}

// UpdatePrice moves the reference price and announces the change.
func (s *CatalogCommandService) UpdatePrice(ctx context.Context, cmd UpdatePriceCommand) (*ProductDTO, error) {
	if cmd.Price.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: price must be positive", domain.ErrInvalidProduct)
	}

	product, err := s.repo.GetByID(ctx, cmd.ProductID)
	if err != nil {
		return nil, err
	}

	oldPrice := product.Price
	product.Price = cmd.Price
	if err := s.repo.Save(ctx, product); err != nil {
		return nil, err
	}

	if !oldPrice.Equal(product.Price) {
		s.publish(ctx, "catalog.product.price_changed", product.Symbol, domain.ProductPriceChangedEvent{
			ProductID: product.ID,
			Symbol:    product.Symbol,
			OldPrice:  oldPrice,
			NewPrice:  product.Price,
			Timestamp: time.Now(),
		})
	}

	return toProductDTO(product), nil
}

// publish emits an event best-effort. Catalog writes never fail on a
// broker outage.
func (s *CatalogCommandService) publish(ctx context.Context, topic, key string, event any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, topic, key, event); err != nil {
		logger.Warn(ctx, "failed to publish catalog event", "topic", topic, "key", key, "error", err)
	}
}
