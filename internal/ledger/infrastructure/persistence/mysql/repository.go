// Package mysql implements the ledger store on GORM/MySQL. All writes of
// one ledger entry run inside a single database transaction; portfolio
// and position rows are read FOR UPDATE so concurrent transactions on the
// same portfolio serialize instead of losing updates.
package mysql

import (
	"context"
	"errors"

	driver "github.com/go-sql-driver/mysql"
	"github.com/vunguard/ledger/internal/ledger/domain"
	"github.com/vunguard/ledger/pkg/contextx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	mysqlErrLockWaitTimeout = 1205
	mysqlErrDeadlock        = 1213
)

type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates the MySQL-backed ledger store.
func NewLedgerRepository(db *gorm.DB) domain.LedgerRepository {
	return &ledgerRepository{db: db}
}

// Transaction runs fn inside one database transaction. The handle rides
// in the context so every repository call within fn joins it; GORM
// commits on nil and rolls back on error or panic.
func (r *ledgerRepository) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(contextx.WithTx(ctx, tx))
	})
	return translateErr(err)
}

func (r *ledgerRepository) CreatePortfolio(ctx context.Context, portfolio *domain.Portfolio) error {
	return translateErr(r.getDB(ctx).Create(portfolio).Error)
}

func (r *ledgerRepository) GetPortfolio(ctx context.Context, id uint) (*domain.Portfolio, error) {
	var portfolio domain.Portfolio
	if err := r.getDB(ctx).First(&portfolio, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPortfolioNotFound
		}
		return nil, translateErr(err)
	}
	return &portfolio, nil
}

// GetPortfolioForUpdate locks the portfolio row for the remainder of the
// enclosing transaction (SELECT ... FOR UPDATE).
func (r *ledgerRepository) GetPortfolioForUpdate(ctx context.Context, id uint) (*domain.Portfolio, error) {
	var portfolio domain.Portfolio
	err := r.getDB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&portfolio, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPortfolioNotFound
		}
		return nil, translateErr(err)
	}
	return &portfolio, nil
}

func (r *ledgerRepository) ListPortfolios(ctx context.Context, accountID uint) ([]*domain.Portfolio, error) {
	var portfolios []*domain.Portfolio
	err := r.getDB(ctx).
		Where("account_id = ?", accountID).
		Order("name ASC").
		Find(&portfolios).Error
	return portfolios, translateErr(err)
}

func (r *ledgerRepository) SavePortfolio(ctx context.Context, portfolio *domain.Portfolio) error {
	return translateErr(r.getDB(ctx).Save(portfolio).Error)
}

func (r *ledgerRepository) GetPosition(ctx context.Context, portfolioID, productID uint) (*domain.Position, error) {
	return r.getPosition(ctx, portfolioID, productID, false)
}

func (r *ledgerRepository) GetPositionForUpdate(ctx context.Context, portfolioID, productID uint) (*domain.Position, error) {
	return r.getPosition(ctx, portfolioID, productID, true)
}

func (r *ledgerRepository) getPosition(ctx context.Context, portfolioID, productID uint, forUpdate bool) (*domain.Position, error) {
	db := r.getDB(ctx)
	if forUpdate {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var position domain.Position
	err := db.
		Where("portfolio_id = ? AND product_id = ?", portfolioID, productID).
		First(&position).Error
	if err != nil {
		// No prior holding is a regular outcome, not an error.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translateErr(err)
	}
	return &position, nil
}

func (r *ledgerRepository) ListPositions(ctx context.Context, portfolioID uint) ([]*domain.Position, error) {
	var positions []*domain.Position
	err := r.getDB(ctx).
		Where("portfolio_id = ?", portfolioID).
		Order("product_id ASC").
		Find(&positions).Error
	return positions, translateErr(err)
}

func (r *ledgerRepository) SavePosition(ctx context.Context, position *domain.Position) error {
	return translateErr(r.getDB(ctx).Save(position).Error)
}

func (r *ledgerRepository) CreateTransaction(ctx context.Context, transaction *domain.Transaction) error {
	return translateErr(r.getDB(ctx).Create(transaction).Error)
}

func (r *ledgerRepository) GetTransaction(ctx context.Context, transactionID string) (*domain.TransactionView, error) {
	var view domain.TransactionView
	err := r.viewQuery(ctx).
		Where("t.transaction_id = ?", transactionID).
		Take(&view).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, translateErr(err)
	}
	return &view, nil
}

func (r *ledgerRepository) ListTransactions(ctx context.Context, portfolioID *uint, limit, offset int) ([]*domain.TransactionView, int64, error) {
	query := r.getDB(ctx).Model(&domain.Transaction{})
	if portfolioID != nil {
		query = query.Where("portfolio_id = ?", *portfolioID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateErr(err)
	}

	listQuery := r.viewQuery(ctx)
	if portfolioID != nil {
		listQuery = listQuery.Where("t.portfolio_id = ?", *portfolioID)
	}

	var views []*domain.TransactionView
	err := listQuery.
		Order("t.transaction_date DESC, t.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&views).Error
	if err != nil {
		return nil, 0, translateErr(err)
	}
	return views, total, nil
}

func (r *ledgerRepository) viewQuery(ctx context.Context) *gorm.DB {
	return r.getDB(ctx).
		Table("transactions t").
		Select("t.*, p.name AS portfolio_name, COALESCE(pr.name, '') AS product_name").
		Joins("JOIN portfolios p ON p.id = t.portfolio_id").
		Joins("LEFT JOIN products pr ON pr.id = t.product_id")
}

// getDB returns the transaction handle from the context when inside a
// unit of work, the root handle otherwise.
func (r *ledgerRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

// translateErr maps MySQL lock contention onto the retryable conflict
// error; everything else passes through as a storage failure.
func translateErr(err error) error {
	if err == nil {
		return err
	}
	var mysqlErr *driver.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case mysqlErrDeadlock, mysqlErrLockWaitTimeout:
			return domain.ErrConcurrencyConflict
		}
	}
	return err
}
