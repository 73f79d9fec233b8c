package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// EventPublisher emits catalog events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, event any) error
}

// ProductCreatedEvent announces a new product.
type ProductCreatedEvent struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Symbol    string          `json:"symbol"`
	Type      ProductType     `json:"type"`
	Price     decimal.Decimal `json:"price"`
	Timestamp time.Time       `json:"timestamp"`
}

// ProductPriceChangedEvent announces a reference price update.
type ProductPriceChangedEvent struct {
	ProductID uint            `json:"product_id"`
	Symbol    string          `json:"symbol"`
	OldPrice  decimal.Decimal `json:"old_price"`
	NewPrice  decimal.Decimal `json:"new_price"`
	Timestamp time.Time       `json:"timestamp"`
}
