// Package http exposes the ledger over gin: transaction submission, the
// audit trail, and portfolio creation and state resolution.
package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/vunguard/ledger/internal/ledger/application"
	"github.com/vunguard/ledger/internal/ledger/domain"
	"github.com/vunguard/ledger/pkg/logger"
)

// accountHeader carries the authenticated account id, set by the edge
// that terminated authentication.
const accountHeader = "X-Account-ID"

// LedgerHandler is the HTTP adapter over the ledger service.
type LedgerHandler struct {
	service *application.LedgerService
}

// NewLedgerHandler creates the HTTP adapter.
func NewLedgerHandler(service *application.LedgerService) *LedgerHandler {
	return &LedgerHandler{service: service}
}

// RegisterRoutes mounts the ledger API.
func (h *LedgerHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		api.POST("/portfolios", h.CreatePortfolio)
		api.GET("/portfolios", h.ListPortfolios)
		api.GET("/portfolios/:id/state", h.GetPortfolioState)
		api.POST("/transactions", h.CreateTransaction)
		api.GET("/transactions", h.ListTransactions)
		api.GET("/transactions/:id", h.GetTransaction)
	}
}

// CreatePortfolioRequest is the portfolio creation payload. Decimal
// fields travel as strings to keep exact values across the wire.
type CreatePortfolioRequest struct {
	Name           string `json:"name" binding:"required"`
	Description    string `json:"description"`
	OpeningDeposit string `json:"opening_deposit"`
}

// CreatePortfolio creates a portfolio for the requesting account.
func (h *LedgerHandler) CreatePortfolio(c *gin.Context) {
	accountID, ok := h.accountID(c)
	if !ok {
		return
	}

	var req CreatePortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opening := decimal.Zero
	if req.OpeningDeposit != "" {
		parsed, err := decimal.NewFromString(req.OpeningDeposit)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid opening_deposit"})
			return
		}
		opening = parsed
	}

	portfolio, err := h.service.CreatePortfolio(c.Request.Context(), &application.CreatePortfolioRequest{
		AccountID:      accountID,
		Name:           req.Name,
		Description:    req.Description,
		OpeningDeposit: opening,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, portfolio)
}

// ListPortfolios returns the requesting account's portfolios.
func (h *LedgerHandler) ListPortfolios(c *gin.Context) {
	accountID, ok := h.accountID(c)
	if !ok {
		return
	}

	portfolios, err := h.service.ListPortfolios(c.Request.Context(), accountID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"portfolios": portfolios})
}

// GetPortfolioState resolves the current cash balance and, when
// product_id is supplied, the matching position.
func (h *LedgerHandler) GetPortfolioState(c *gin.Context) {
	portfolioID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || portfolioID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid portfolio id"})
		return
	}

	var productID *uint
	if raw := c.Query("product_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || parsed == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product_id"})
			return
		}
		id := uint(parsed)
		productID = &id
	}

	state, err := h.service.ResolveState(c.Request.Context(), uint(portfolioID), productID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// TransactionBody is the transaction submission payload.
type TransactionBody struct {
	PortfolioID uint   `json:"portfolio_id" binding:"required"`
	Type        string `json:"type" binding:"required"`
	ProductID   uint   `json:"product_id"`
	Quantity    string `json:"quantity"`
	Price       string `json:"price"`
	Amount      string `json:"amount"`
	Notes       string `json:"notes"`
}

// CreateTransaction applies one buy, sell or deposit.
func (h *LedgerHandler) CreateTransaction(c *gin.Context) {
	var body TransactionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req := &application.TransactionRequest{
		PortfolioID: body.PortfolioID,
		Type:        domain.TransactionType(body.Type),
		ProductID:   body.ProductID,
		Notes:       body.Notes,
	}

	var parseErr error
	req.Quantity, parseErr = parseDecimal(body.Quantity)
	if parseErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quantity"})
		return
	}
	req.Price, parseErr = parseDecimal(body.Price)
	if parseErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
		return
	}
	req.Amount, parseErr = parseDecimal(body.Amount)
	if parseErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}

	transaction, err := h.service.ApplyTransaction(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, transaction)
}

// GetTransaction returns one audit-trail entry by its business id.
func (h *LedgerHandler) GetTransaction(c *gin.Context) {
	transactionID := c.Param("id")
	if transactionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "transaction id is required"})
		return
	}

	transaction, err := h.service.GetTransaction(c.Request.Context(), transactionID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, transaction)
}

// ListTransactions returns audit-trail entries newest first.
func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	var portfolioID *uint
	if raw := c.Query("portfolio_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || parsed == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid portfolio_id"})
			return
		}
		id := uint(parsed)
		portfolioID = &id
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	transactions, total, err := h.service.ListTransactions(c.Request.Context(), portfolioID, limit, offset)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": transactions, "total": total})
}

func (h *LedgerHandler) accountID(c *gin.Context) (uint, bool) {
	raw := c.GetHeader(accountHeader)
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-Account-ID header is required"})
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid X-Account-ID header"})
		return 0, false
	}
	return uint(id), true
}

// writeError maps domain errors onto HTTP statuses: missing entities to
// 404, rejected requests to 400, retryable conflicts to 409, everything
// else to 500.
func (h *LedgerHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrPortfolioNotFound),
		errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrTransactionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case domain.IsBusinessRejection(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrConcurrencyConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseDecimal(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}
