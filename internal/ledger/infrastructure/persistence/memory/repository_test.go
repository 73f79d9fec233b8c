package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/vunguard/ledger/internal/ledger/domain"
)

func seedPortfolio(t *testing.T, repo *Repository, balance string) uint {
	t.Helper()
	portfolio := domain.NewPortfolio(1, "Growth", "")
	portfolio.Credit(decimal.RequireFromString(balance))
	if err := repo.CreatePortfolio(context.Background(), portfolio); err != nil {
		t.Fatalf("create portfolio: %v", err)
	}
	return portfolio.ID
}

func TestTransactionRollsBackOnContextCancellation(t *testing.T) {
	repo := NewRepository()
	id := seedPortfolio(t, repo, "100")

	ctx, cancel := context.WithCancel(context.Background())
	err := repo.Transaction(ctx, func(txCtx context.Context) error {
		portfolio, err := repo.GetPortfolioForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		portfolio.Credit(decimal.RequireFromString("50"))
		if err := repo.SavePortfolio(txCtx, portfolio); err != nil {
			return err
		}
		// The caller gives up mid-sequence.
		cancel()
		return txCtx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}

	portfolio, err := repo.GetPortfolio(context.Background(), id)
	if err != nil {
		t.Fatalf("get portfolio: %v", err)
	}
	if !portfolio.CashBalance.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("cash balance = %s, want 100", portfolio.CashBalance)
	}
}

func TestTransactionCommitKeepsWrites(t *testing.T) {
	repo := NewRepository()
	id := seedPortfolio(t, repo, "100")

	err := repo.Transaction(context.Background(), func(txCtx context.Context) error {
		portfolio, err := repo.GetPortfolioForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		portfolio.Credit(decimal.RequireFromString("50"))
		return repo.SavePortfolio(txCtx, portfolio)
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}

	portfolio, _ := repo.GetPortfolio(context.Background(), id)
	if !portfolio.CashBalance.Equal(decimal.RequireFromString("150")) {
		t.Fatalf("cash balance = %s, want 150", portfolio.CashBalance)
	}
}
