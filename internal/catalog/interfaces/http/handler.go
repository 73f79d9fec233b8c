// Package http exposes the product catalog over gin.
package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/vunguard/ledger/internal/catalog/application"
	"github.com/vunguard/ledger/internal/catalog/domain"
	"github.com/vunguard/ledger/pkg/logger"
)

// CatalogHandler is the HTTP adapter over the catalog services.
type CatalogHandler struct {
	commands *application.CatalogCommandService
	queries  *application.CatalogQueryService
}

// NewCatalogHandler creates the HTTP adapter.
func NewCatalogHandler(commands *application.CatalogCommandService, queries *application.CatalogQueryService) *CatalogHandler {
	return &CatalogHandler{
		commands: commands,
		queries:  queries,
	}
}

// RegisterRoutes mounts the catalog API.
func (h *CatalogHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		api.POST("/products", h.CreateProduct)
		api.GET("/products", h.ListProducts)
		api.GET("/products/:id", h.GetProduct)
		api.PUT("/products/:id/price", h.UpdatePrice)
	}
}

// CreateProductRequest is the product creation payload.
type CreateProductRequest struct {
	Name   string `json:"name" binding:"required"`
	Symbol string `json:"symbol" binding:"required"`
	Type   string `json:"type" binding:"required"`
	Price  string `json:"price" binding:"required"`
}

// CreateProduct adds a product to the catalog.
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
		return
	}

	product, err := h.commands.CreateProduct(c.Request.Context(), application.CreateProductCommand{
		Name:   req.Name,
		Symbol: req.Symbol,
		Type:   domain.ProductType(req.Type),
		Price:  price,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

// GetProduct returns one product.
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	product, err := h.queries.GetProduct(c.Request.Context(), uint(id))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// ListProducts pages through the catalog.
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "50"))
	productType := domain.ProductType(c.Query("type"))
	if productType != "" && !productType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product type"})
		return
	}

	products, total, err := h.queries.ListProducts(c.Request.Context(), productType, page, size)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products, "total": total})
}

// UpdatePriceRequest is the price update payload.
type UpdatePriceRequest struct {
	Price string `json:"price" binding:"required"`
}

// UpdatePrice moves a product's reference price.
func (h *CatalogHandler) UpdatePrice(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var req UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
		return
	}

	product, err := h.commands.UpdatePrice(c.Request.Context(), application.UpdatePriceCommand{
		ProductID: uint(id),
		Price:     price,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *CatalogHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidProduct):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error(c.Request.Context(), "catalog request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
