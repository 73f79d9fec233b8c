package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/vunguard/ledger/internal/ledger/application"
	"github.com/vunguard/ledger/internal/ledger/domain"
	"github.com/vunguard/ledger/internal/ledger/infrastructure/persistence/memory"
)

type fixedCatalog struct{}

func (fixedCatalog) GetProductName(_ context.Context, productID uint) (string, error) {
	if productID == 7 {
		return "Global Equity Fund", nil
	}
	return "", domain.ErrProductNotFound
}

func newTestRouter(t *testing.T) (*gin.Engine, *application.LedgerService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := memory.NewRepository()
	repo.SetProductName(7, "Global Equity Fund")
	svc := application.NewLedgerService(repo, fixedCatalog{}, nil, nil)

	router := gin.New()
	NewLedgerHandler(svc).RegisterRoutes(router)
	return router, svc
}

func doJSON(router *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createPortfolio(t *testing.T, router *gin.Engine, opening string) uint {
	t.Helper()
	w := doJSON(router, http.MethodPost, "/api/v1/portfolios", map[string]any{
		"name":            "Growth",
		"opening_deposit": opening,
	}, map[string]string{"X-Account-ID": "1"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create portfolio status = %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		ID uint `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.ID
}

func TestCreatePortfolioRequiresAccountHeader(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/portfolios", map[string]any{"name": "Growth"}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	w = doJSON(router, http.MethodPost, "/api/v1/portfolios", map[string]any{"name": "Growth"},
		map[string]string{"X-Account-ID": "zero"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for malformed header", w.Code)
	}
}

func TestTransactionLifecycleOverHTTP(t *testing.T) {
	router, _ := newTestRouter(t)
	id := createPortfolio(t, router, "1000")

	w := doJSON(router, http.MethodPost, "/api/v1/transactions", map[string]any{
		"portfolio_id": id,
		"type":         "buy",
		"product_id":   7,
		"quantity":     "10",
		"price":        "25.50",
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("buy status = %d, body %s", w.Code, w.Body.String())
	}
	var tx struct {
		TransactionID string `json:"transaction_id"`
		Amount        string `json:"amount"`
		ProductName   string `json:"product_name"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &tx); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tx.Amount != "255.00" || tx.ProductName != "Global Equity Fund" {
		t.Fatalf("tx = %+v", tx)
	}

	w = doJSON(router, http.MethodGet, "/api/v1/transactions/"+tx.TransactionID, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get transaction status = %d", w.Code)
	}

	w = doJSON(router, http.MethodGet, fmt.Sprintf("/api/v1/portfolios/%d/state?product_id=7", id), nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("state status = %d, body %s", w.Code, w.Body.String())
	}
	var state struct {
		CashBalance string `json:"cash_balance"`
		Position    *struct {
			Quantity string `json:"quantity"`
		} `json:"position"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if state.CashBalance != "745.00" || state.Position == nil || state.Position.Quantity != "10" {
		t.Fatalf("state = %+v", state)
	}

	w = doJSON(router, http.MethodGet, fmt.Sprintf("/api/v1/transactions?portfolio_id=%d", id), nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var list struct {
		Total int64 `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	// Opening deposit plus the buy.
	if list.Total != 2 {
		t.Fatalf("total = %d, want 2", list.Total)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	router, _ := newTestRouter(t)
	id := createPortfolio(t, router, "10")

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"unknown portfolio", map[string]any{
			"portfolio_id": 9999, "type": "deposit", "amount": "5",
		}, http.StatusNotFound},
		{"unknown product", map[string]any{
			"portfolio_id": id, "type": "buy", "product_id": 99, "quantity": "1", "price": "1",
		}, http.StatusNotFound},
		{"insufficient funds", map[string]any{
			"portfolio_id": id, "type": "buy", "product_id": 7, "quantity": "10", "price": "100",
		}, http.StatusBadRequest},
		{"insufficient holdings", map[string]any{
			"portfolio_id": id, "type": "sell", "product_id": 7, "quantity": "1", "price": "1",
		}, http.StatusBadRequest},
		{"invalid type", map[string]any{
			"portfolio_id": id, "type": "withdraw", "amount": "5",
		}, http.StatusBadRequest},
		{"malformed quantity", map[string]any{
			"portfolio_id": id, "type": "buy", "product_id": 7, "quantity": "ten", "price": "1",
		}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, "/api/v1/transactions", tt.body, nil)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d, body %s", w.Code, tt.want, w.Body.String())
			}
		})
	}

	if w := doJSON(router, http.MethodGet, "/api/v1/transactions/nope", nil, nil); w.Code != http.StatusNotFound {
		t.Fatalf("missing transaction status = %d, want 404", w.Code)
	}
	if w := doJSON(router, http.MethodGet, "/api/v1/portfolios/abc/state", nil, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad portfolio id status = %d, want 400", w.Code)
	}
}

func TestListPortfoliosScopedToAccount(t *testing.T) {
	router, _ := newTestRouter(t)
	createPortfolio(t, router, "100")

	w := doJSON(router, http.MethodPost, "/api/v1/portfolios", map[string]any{"name": "Other"},
		map[string]string{"X-Account-ID": "2"})
	if w.Code != http.StatusCreated {
		t.Fatalf("second portfolio status = %d", w.Code)
	}

	w = doJSON(router, http.MethodGet, "/api/v1/portfolios", nil, map[string]string{"X-Account-ID": "1"})
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var resp struct {
		Portfolios []struct {
			AccountID uint `json:"account_id"`
		} `json:"portfolios"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Portfolios) != 1 || resp.Portfolios[0].AccountID != 1 {
		t.Fatalf("portfolios = %+v", resp.Portfolios)
	}
}
