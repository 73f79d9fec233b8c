// Package domain holds the product catalog model: the investable
// products that ledger transactions reference.
package domain

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// ErrProductNotFound is returned when a product id does not exist.
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidProduct is returned for structurally invalid product data.
	ErrInvalidProduct = errors.New("invalid product")
)

// ProductType partitions the catalog.
type ProductType string

const (
	ProductTypeStock ProductType = "stock"
	ProductTypeBond  ProductType = "bond"
	ProductTypeFund  ProductType = "fund"
	ProductTypeETF   ProductType = "etf"
)

// Valid reports whether t is a known product type.
func (t ProductType) Valid() bool {
	switch t {
	case ProductTypeStock, ProductTypeBond, ProductTypeFund, ProductTypeETF:
		return true
	}
	return false
}

// Product is an investable instrument. Price is the reference price used
// to value positions, not a quote feed.
type Product struct {
	gorm.Model
	Name   string          `gorm:"column:name;type:varchar(128);not null" json:"name"`
	Symbol string          `gorm:"column:symbol;type:varchar(32);uniqueIndex;not null" json:"symbol"`
	Type   ProductType     `gorm:"column:type;type:varchar(16);not null" json:"type"`
	Price  decimal.Decimal `gorm:"column:price;type:decimal(20,2);not null" json:"price"`
	Active bool            `gorm:"column:active;not null;default:true" json:"active"`
}

func (Product) TableName() string { return "products" }

// NewProduct creates an active product at the given reference price.
func NewProduct(name, symbol string, productType ProductType, price decimal.Decimal) *Product {
	return &Product{
		Name:   name,
		Symbol: symbol,
		Type:   productType,
		Price:  price,
		Active: true,
	}
}
