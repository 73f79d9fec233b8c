// Package application implements the ledger use cases: the transaction
// processor that applies buys, sells and deposits atomically, and the
// balance/position resolver.
package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vunguard/ledger/internal/ledger/domain"
	"github.com/vunguard/ledger/pkg/logger"
	"github.com/vunguard/ledger/pkg/metrics"
)

// LedgerService coordinates the ledger store, the product catalog and the
// notification emitter. It is the only writer of portfolio balances and
// positions.
type LedgerService struct {
	repo     domain.LedgerRepository
	catalog  domain.ProductCatalog
	notifier domain.TransactionNotifier
	metrics  *metrics.Metrics
}

// NewLedgerService creates the ledger service. notifier and m may be nil.
func NewLedgerService(repo domain.LedgerRepository, catalog domain.ProductCatalog,
	notifier domain.TransactionNotifier, m *metrics.Metrics) *LedgerService {
	return &LedgerService{
		repo:     repo,
		catalog:  catalog,
		notifier: notifier,
		metrics:  m,
	}
}

// ApplyTransaction validates the request, applies it against the current
// portfolio state inside one atomic unit of work, and appends the ledger
// entry. On success the notification emitter is informed best-effort.
func (s *LedgerService) ApplyTransaction(ctx context.Context, req *TransactionRequest) (*TransactionDTO, error) {
	if err := req.validate(); err != nil {
		s.metrics.RecordRejection(rejectionReason(err))
		return nil, err
	}

	// Product existence and name resolution happen before the unit of
	// work: the catalog is never written by ledger transactions.
	var productName string
	if req.Type != domain.TransactionTypeDeposit {
		name, err := s.catalog.GetProductName(ctx, req.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrProductNotFound) {
				s.metrics.RecordRejection("product_not_found")
				return nil, err
			}
			logger.Error(ctx, "product lookup failed", "product_id", req.ProductID, "error", err)
			return nil, fmt.Errorf("failed to resolve product: %w", err)
		}
		productName = name
	}

	var (
		portfolio *domain.Portfolio
		record    *domain.Transaction
	)

	err := s.repo.Transaction(ctx, func(txCtx context.Context) error {
		p, err := s.repo.GetPortfolioForUpdate(txCtx, req.PortfolioID)
		if err != nil {
			return err
		}
		portfolio = p

		switch req.Type {
		case domain.TransactionTypeBuy:
			record, err = s.applyBuy(txCtx, p, req)
		case domain.TransactionTypeSell:
			record, err = s.applySell(txCtx, p, req)
		case domain.TransactionTypeDeposit:
			record, err = s.applyDeposit(txCtx, p, req)
		}
		if err != nil {
			return err
		}

		if err := s.repo.SavePortfolio(txCtx, p); err != nil {
			return err
		}
		return s.repo.CreateTransaction(txCtx, record)
	})
	if err != nil {
		return nil, s.classify(ctx, req, err)
	}

	s.metrics.RecordTransaction(string(req.Type))
	if req.Type == domain.TransactionTypeDeposit {
		amount, _ := req.Amount.Float64()
		s.metrics.RecordDeposit(amount)
	}

	logger.Info(ctx, "transaction committed",
		"transaction_id", record.TransactionID,
		"portfolio_id", portfolio.ID,
		"type", req.Type,
		"amount", record.Amount.StringFixed(2),
		"cash_balance", portfolio.CashBalance.StringFixed(2),
	)

	s.notify(ctx, portfolio, record, productName)

	return toTransactionDTO(record, portfolio.Name, productName), nil
}

func (s *LedgerService) applyBuy(ctx context.Context, p *domain.Portfolio, req *TransactionRequest) (*domain.Transaction, error) {
	cost := req.Quantity.Mul(req.Price).Round(2)
	if err := p.Debit(cost); err != nil {
		return nil, err
	}

	position, err := s.repo.GetPositionForUpdate(ctx, p.ID, req.ProductID)
	if err != nil {
		return nil, err
	}
	if position == nil {
		position = domain.NewPosition(p.ID, req.ProductID, req.Quantity, req.Price)
	} else {
		position.Add(req.Quantity)
	}
	if err := s.repo.SavePosition(ctx, position); err != nil {
		return nil, err
	}

	return s.newRecord(req, cost), nil
}

func (s *LedgerService) applySell(ctx context.Context, p *domain.Portfolio, req *TransactionRequest) (*domain.Transaction, error) {
	position, err := s.repo.GetPositionForUpdate(ctx, p.ID, req.ProductID)
	if err != nil {
		return nil, err
	}
	// An absent row and a zero-quantity row reject identically.
	if position == nil {
		return nil, &domain.InsufficientHoldingsError{
			Requested: req.Quantity,
			Available: decimal.Zero,
		}
	}
	if err := position.Reduce(req.Quantity); err != nil {
		return nil, err
	}

	proceeds := req.Quantity.Mul(req.Price).Round(2)
	p.Credit(proceeds)

	// The row is kept at quantity zero after a full sell-off.
	if err := s.repo.SavePosition(ctx, position); err != nil {
		return nil, err
	}

	return s.newRecord(req, proceeds), nil
}

func (s *LedgerService) applyDeposit(_ context.Context, p *domain.Portfolio, req *TransactionRequest) (*domain.Transaction, error) {
	p.Credit(req.Amount)
	return s.newRecord(req, req.Amount.Round(2)), nil
}

// newRecord builds the append-only ledger entry for a validated request.
func (s *LedgerService) newRecord(req *TransactionRequest, amount decimal.Decimal) *domain.Transaction {
	record := &domain.Transaction{
		TransactionID:   uuid.New().String(),
		PortfolioID:     req.PortfolioID,
		Type:            req.Type,
		Amount:          amount,
		Notes:           req.Notes,
		TransactionDate: time.Now(),
	}
	if req.Type != domain.TransactionTypeDeposit {
		productID := req.ProductID
		record.ProductID = &productID
		record.Quantity = decimal.NewNullDecimal(req.Quantity)
		record.Price = decimal.NewNullDecimal(req.Price)
	}
	return record
}

// classify turns unit-of-work failures into the error the caller should
// see, recording rejection metrics and logging storage failures.
func (s *LedgerService) classify(ctx context.Context, req *TransactionRequest, err error) error {
	switch {
	case errors.Is(err, domain.ErrPortfolioNotFound):
		s.metrics.RecordRejection("portfolio_not_found")
		return err
	case domain.IsBusinessRejection(err):
		s.metrics.RecordRejection(rejectionReason(err))
		logger.Info(ctx, "transaction rejected",
			"portfolio_id", req.PortfolioID, "type", req.Type, "reason", err.Error())
		return err
	case errors.Is(err, domain.ErrConcurrencyConflict):
		s.metrics.RecordRejection("concurrency_conflict")
		logger.Warn(ctx, "transaction conflicted, caller may retry",
			"portfolio_id", req.PortfolioID, "type", req.Type)
		return err
	default:
		logger.Error(ctx, "transaction failed in storage",
			"portfolio_id", req.PortfolioID, "type", req.Type, "error", err)
		return fmt.Errorf("failed to apply transaction: %w", err)
	}
}

func rejectionReason(err error) string {
	var funds *domain.InsufficientFundsError
	if errors.As(err, &funds) {
		return "insufficient_funds"
	}
	var holdings *domain.InsufficientHoldingsError
	if errors.As(err, &holdings) {
		return "insufficient_holdings"
	}
	if errors.Is(err, domain.ErrInvalidAmount) {
		return "invalid_amount"
	}
	return "invalid_request"
}

// notify informs the emitter about a committed transaction. Failures are
// logged and swallowed: notification sits outside the atomicity boundary.
func (s *LedgerService) notify(ctx context.Context, p *domain.Portfolio, record *domain.Transaction, productName string) {
	if s.notifier == nil {
		return
	}
	quantity := decimal.Zero
	if record.Quantity.Valid {
		quantity = record.Quantity.Decimal
	}
	if err := s.notifier.NotifyTransaction(ctx, p.AccountID, record.Type,
		quantity, record.Amount, productName, p.Name); err != nil {
		logger.Warn(ctx, "transaction notification failed",
			"transaction_id", record.TransactionID,
			"account_id", p.AccountID,
			"error", err,
		)
	}
}

// ResolveState reads the portfolio's current cash balance and, when a
// product id is supplied, the matching position. It is a pure read; an
// absent position and a zero-quantity one are both reported as held
// quantity zero.
func (s *LedgerService) ResolveState(ctx context.Context, portfolioID uint, productID *uint) (*PortfolioStateDTO, error) {
	portfolio, err := s.repo.GetPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, err
	}

	state := &PortfolioStateDTO{
		PortfolioID: portfolio.ID,
		AccountID:   portfolio.AccountID,
		Name:        portfolio.Name,
		CashBalance: portfolio.CashBalance.StringFixed(2),
	}

	if productID != nil {
		position, err := s.repo.GetPosition(ctx, portfolioID, *productID)
		if err != nil {
			return nil, err
		}
		if position != nil {
			state.Position = toPositionDTO(position)
		}
	}

	return state, nil
}

// CreatePortfolioRequest creates a portfolio, optionally funded by an
// opening deposit.
type CreatePortfolioRequest struct {
	AccountID      uint
	Name           string
	Description    string
	OpeningDeposit decimal.Decimal
}

// CreatePortfolio initializes a portfolio with a zero balance or an
// opening deposit. An opening deposit also appends a deposit entry so the
// log replays to the initial balance.
func (s *LedgerService) CreatePortfolio(ctx context.Context, req *CreatePortfolioRequest) (*PortfolioDTO, error) {
	if req.AccountID == 0 || req.Name == "" {
		return nil, domain.ErrInvalidRequest
	}
	if req.OpeningDeposit.IsNegative() || exceedsScale(req.OpeningDeposit, 2) {
		return nil, domain.ErrInvalidAmount
	}

	portfolio := domain.NewPortfolio(req.AccountID, req.Name, req.Description)

	err := s.repo.Transaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.CreatePortfolio(txCtx, portfolio); err != nil {
			return err
		}
		if req.OpeningDeposit.IsZero() {
			return nil
		}
		portfolio.Credit(req.OpeningDeposit)
		if err := s.repo.SavePortfolio(txCtx, portfolio); err != nil {
			return err
		}
		record := s.newRecord(&TransactionRequest{
			PortfolioID: portfolio.ID,
			Type:        domain.TransactionTypeDeposit,
			Notes:       "opening deposit",
		}, req.OpeningDeposit.Round(2))
		return s.repo.CreateTransaction(txCtx, record)
	})
	if err != nil {
		logger.Error(ctx, "failed to create portfolio",
			"account_id", req.AccountID, "name", req.Name, "error", err)
		return nil, fmt.Errorf("failed to create portfolio: %w", err)
	}

	logger.Info(ctx, "portfolio created",
		"portfolio_id", portfolio.ID,
		"account_id", portfolio.AccountID,
		"cash_balance", portfolio.CashBalance.StringFixed(2),
	)
	return toPortfolioDTO(portfolio), nil
}

// ListPortfolios returns the portfolios of an account.
func (s *LedgerService) ListPortfolios(ctx context.Context, accountID uint) ([]*PortfolioDTO, error) {
	portfolios, err := s.repo.ListPortfolios(ctx, accountID)
	if err != nil {
		return nil, err
	}
	dtos := make([]*PortfolioDTO, len(portfolios))
	for i, p := range portfolios {
		dtos[i] = toPortfolioDTO(p)
	}
	return dtos, nil
}

// GetTransaction loads one audit-trail entry.
func (s *LedgerService) GetTransaction(ctx context.Context, transactionID string) (*TransactionDTO, error) {
	view, err := s.repo.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	return toTransactionViewDTO(view), nil
}

// ListTransactions returns audit-trail entries newest first.
func (s *LedgerService) ListTransactions(ctx context.Context, portfolioID *uint, limit, offset int) ([]*TransactionDTO, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	views, total, err := s.repo.ListTransactions(ctx, portfolioID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	dtos := make([]*TransactionDTO, len(views))
	for i, v := range views {
		dtos[i] = toTransactionViewDTO(v)
	}
	return dtos, total, nil
}

func (r *TransactionRequest) validate() error {
	if r.PortfolioID == 0 || !r.Type.Valid() {
		return domain.ErrInvalidRequest
	}
	switch r.Type {
	case domain.TransactionTypeDeposit:
		if r.ProductID != 0 || !r.Quantity.IsZero() || !r.Price.IsZero() {
			return domain.ErrInvalidRequest
		}
		if r.Amount.LessThanOrEqual(decimal.Zero) || exceedsScale(r.Amount, 2) {
			return domain.ErrInvalidAmount
		}
	default:
		if r.ProductID == 0 || !r.Amount.IsZero() {
			return domain.ErrInvalidRequest
		}
		if r.Quantity.LessThanOrEqual(decimal.Zero) || r.Price.LessThanOrEqual(decimal.Zero) {
			return domain.ErrInvalidRequest
		}
		if exceedsScale(r.Quantity, 6) || exceedsScale(r.Price, 2) {
			return domain.ErrInvalidRequest
		}
	}
	return nil
}

// exceedsScale reports whether d carries more decimal places than the
// store keeps for the field. Such values would be rounded by storage
// and make the log replay diverge from the balance, so they are
// rejected up front.
func exceedsScale(d decimal.Decimal, scale int32) bool {
	return !d.Equal(d.Round(scale))
}
