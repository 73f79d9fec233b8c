package domain

import "context"

// LedgerRepository is the durable store for portfolios, positions and the
// transaction log, together with the scoped unit of work that makes the
// three writes of one ledger entry atomic.
type LedgerRepository interface {
	// Transaction runs fn inside one atomic unit of work. Every repository
	// call made with the context passed to fn joins that unit; it commits
	// only when fn returns nil and rolls back on any error or cancellation.
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error

	// CreatePortfolio inserts a new portfolio.
	CreatePortfolio(ctx context.Context, portfolio *Portfolio) error
	// GetPortfolio loads a portfolio or returns ErrPortfolioNotFound.
	GetPortfolio(ctx context.Context, id uint) (*Portfolio, error)
	// GetPortfolioForUpdate loads a portfolio with a row lock held for the
	// remainder of the enclosing unit of work.
	GetPortfolioForUpdate(ctx context.Context, id uint) (*Portfolio, error)
	// ListPortfolios returns the portfolios of one account.
	ListPortfolios(ctx context.Context, accountID uint) ([]*Portfolio, error)
	// SavePortfolio persists a mutated portfolio.
	SavePortfolio(ctx context.Context, portfolio *Portfolio) error

	// GetPosition loads the (portfolio, product) position, or nil when the
	// portfolio has never held the product.
	GetPosition(ctx context.Context, portfolioID, productID uint) (*Position, error)
	// GetPositionForUpdate is GetPosition with a row lock.
	GetPositionForUpdate(ctx context.Context, portfolioID, productID uint) (*Position, error)
	// ListPositions returns all positions of a portfolio.
	ListPositions(ctx context.Context, portfolioID uint) ([]*Position, error)
	// SavePosition inserts or updates a position.
	SavePosition(ctx context.Context, position *Position) error

	// CreateTransaction appends one entry to the transaction log.
	CreateTransaction(ctx context.Context, transaction *Transaction) error
	// GetTransaction loads one log entry with display names, or returns
	// ErrTransactionNotFound.
	GetTransaction(ctx context.Context, transactionID string) (*TransactionView, error)
	// ListTransactions returns log entries newest first, optionally
	// filtered to one portfolio.
	ListTransactions(ctx context.Context, portfolioID *uint, limit, offset int) ([]*TransactionView, int64, error)
}
