// Package memory implements the ledger store on in-process maps. It
// backs tests and local development; the unit of work serializes on one
// mutex and rolls back by restoring a snapshot.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vunguard/ledger/internal/ledger/domain"
	"github.com/vunguard/ledger/pkg/contextx"
)

type positionKey struct {
	portfolioID uint
	productID   uint
}

// Repository is an in-memory domain.LedgerRepository.
type Repository struct {
	mu sync.Mutex

	portfolios   map[uint]*domain.Portfolio
	positions    map[positionKey]*domain.Position
	transactions []*domain.Transaction
	productNames map[uint]string

	nextPortfolioID   uint
	nextPositionID    uint
	nextTransactionID uint
}

// NewRepository creates an empty in-memory ledger store.
func NewRepository() *Repository {
	return &Repository{
		portfolios:   make(map[uint]*domain.Portfolio),
		positions:    make(map[positionKey]*domain.Position),
		productNames: make(map[uint]string),
	}
}

// SetProductName registers a display name used when rendering
// transaction views.
func (r *Repository) SetProductName(productID uint, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.productNames[productID] = name
}

type snapshot struct {
	portfolios        map[uint]*domain.Portfolio
	positions         map[positionKey]*domain.Position
	transactionCount  int
	nextPortfolioID   uint
	nextPositionID    uint
	nextTransactionID uint
}

// Transaction serializes units of work on the store mutex. State is
// snapshotted up front and restored when fn fails, so a mid-sequence
// error leaves no partial writes behind.
func (r *Repository) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if r.inTx(ctx) {
		return fn(ctx)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	snap := r.snapshot()
	if err := fn(contextx.WithTx(ctx, r)); err != nil {
		r.restore(snap)
		return err
	}
	return nil
}

func (r *Repository) inTx(ctx context.Context) bool {
	tx, ok := contextx.GetTx(ctx).(*Repository)
	return ok && tx == r
}

// lock takes the store mutex for a standalone call; calls made inside a
// unit of work already hold it.
func (r *Repository) lock(ctx context.Context) func() {
	if r.inTx(ctx) {
		return func() {}
	}
	r.mu.Lock()
	return r.mu.Unlock
}

func (r *Repository) snapshot() snapshot {
	snap := snapshot{
		portfolios:        make(map[uint]*domain.Portfolio, len(r.portfolios)),
		positions:         make(map[positionKey]*domain.Position, len(r.positions)),
		transactionCount:  len(r.transactions),
		nextPortfolioID:   r.nextPortfolioID,
		nextPositionID:    r.nextPositionID,
		nextTransactionID: r.nextTransactionID,
	}
	for id, p := range r.portfolios {
		snap.portfolios[id] = clonePortfolio(p)
	}
	for key, p := range r.positions {
		snap.positions[key] = clonePosition(p)
	}
	return snap
}

func (r *Repository) restore(snap snapshot) {
	r.portfolios = snap.portfolios
	r.positions = snap.positions
	r.transactions = r.transactions[:snap.transactionCount]
	r.nextPortfolioID = snap.nextPortfolioID
	r.nextPositionID = snap.nextPositionID
	r.nextTransactionID = snap.nextTransactionID
}

func (r *Repository) CreatePortfolio(ctx context.Context, portfolio *domain.Portfolio) error {
	defer r.lock(ctx)()

	r.nextPortfolioID++
	portfolio.ID = r.nextPortfolioID
	portfolio.CreatedAt = time.Now()
	portfolio.UpdatedAt = portfolio.CreatedAt
	r.portfolios[portfolio.ID] = clonePortfolio(portfolio)
	return nil
}

func (r *Repository) GetPortfolio(ctx context.Context, id uint) (*domain.Portfolio, error) {
	defer r.lock(ctx)()

	portfolio, ok := r.portfolios[id]
	if !ok {
		return nil, domain.ErrPortfolioNotFound
	}
	return clonePortfolio(portfolio), nil
}

func (r *Repository) GetPortfolioForUpdate(ctx context.Context, id uint) (*domain.Portfolio, error) {
	return r.GetPortfolio(ctx, id)
}

func (r *Repository) ListPortfolios(ctx context.Context, accountID uint) ([]*domain.Portfolio, error) {
	defer r.lock(ctx)()

	var portfolios []*domain.Portfolio
	for _, p := range r.portfolios {
		if p.AccountID == accountID {
			portfolios = append(portfolios, clonePortfolio(p))
		}
	}
	sort.Slice(portfolios, func(i, j int) bool {
		return portfolios[i].Name < portfolios[j].Name
	})
	return portfolios, nil
}

func (r *Repository) SavePortfolio(ctx context.Context, portfolio *domain.Portfolio) error {
	defer r.lock(ctx)()

	if _, ok := r.portfolios[portfolio.ID]; !ok {
		return domain.ErrPortfolioNotFound
	}
	portfolio.UpdatedAt = time.Now()
	r.portfolios[portfolio.ID] = clonePortfolio(portfolio)
	return nil
}

func (r *Repository) GetPosition(ctx context.Context, portfolioID, productID uint) (*domain.Position, error) {
	defer r.lock(ctx)()

	position, ok := r.positions[positionKey{portfolioID, productID}]
	if !ok {
		return nil, nil
	}
	return clonePosition(position), nil
}

func (r *Repository) GetPositionForUpdate(ctx context.Context, portfolioID, productID uint) (*domain.Position, error) {
	return r.GetPosition(ctx, portfolioID, productID)
}

func (r *Repository) ListPositions(ctx context.Context, portfolioID uint) ([]*domain.Position, error) {
	defer r.lock(ctx)()

	var positions []*domain.Position
	for _, p := range r.positions {
		if p.PortfolioID == portfolioID {
			positions = append(positions, clonePosition(p))
		}
	}
	sort.Slice(positions, func(i, j int) bool {
		return positions[i].ProductID < positions[j].ProductID
	})
	return positions, nil
}

func (r *Repository) SavePosition(ctx context.Context, position *domain.Position) error {
	defer r.lock(ctx)()

	if position.ID == 0 {
		r.nextPositionID++
		position.ID = r.nextPositionID
		position.CreatedAt = time.Now()
	}
	position.UpdatedAt = time.Now()
	r.positions[positionKey{position.PortfolioID, position.ProductID}] = clonePosition(position)
	return nil
}

func (r *Repository) CreateTransaction(ctx context.Context, transaction *domain.Transaction) error {
	defer r.lock(ctx)()

	r.nextTransactionID++
	transaction.ID = r.nextTransactionID
	transaction.CreatedAt = time.Now()
	transaction.UpdatedAt = transaction.CreatedAt
	r.transactions = append(r.transactions, cloneTransaction(transaction))
	return nil
}

func (r *Repository) GetTransaction(ctx context.Context, transactionID string) (*domain.TransactionView, error) {
	defer r.lock(ctx)()

	for _, t := range r.transactions {
		if t.TransactionID == transactionID {
			return r.view(t), nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

func (r *Repository) ListTransactions(ctx context.Context, portfolioID *uint, limit, offset int) ([]*domain.TransactionView, int64, error) {
	defer r.lock(ctx)()

	var matched []*domain.Transaction
	for _, t := range r.transactions {
		if portfolioID == nil || t.PortfolioID == *portfolioID {
			matched = append(matched, t)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].TransactionDate.Equal(matched[j].TransactionDate) {
			return matched[i].TransactionDate.After(matched[j].TransactionDate)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}

	views := make([]*domain.TransactionView, 0, len(matched))
	for _, t := range matched {
		views = append(views, r.view(t))
	}
	return views, total, nil
}

func (r *Repository) view(t *domain.Transaction) *domain.TransactionView {
	view := &domain.TransactionView{Transaction: *cloneTransaction(t)}
	if portfolio, ok := r.portfolios[t.PortfolioID]; ok {
		view.PortfolioName = portfolio.Name
	}
	if t.ProductID != nil {
		view.ProductName = r.productNames[*t.ProductID]
	}
	return view
}

func clonePortfolio(p *domain.Portfolio) *domain.Portfolio {
	cp := *p
	return &cp
}

func clonePosition(p *domain.Position) *domain.Position {
	cp := *p
	return &cp
}

func cloneTransaction(t *domain.Transaction) *domain.Transaction {
	ct := *t
	if t.ProductID != nil {
		productID := *t.ProductID
		ct.ProductID = &productID
	}
	return &ct
}
