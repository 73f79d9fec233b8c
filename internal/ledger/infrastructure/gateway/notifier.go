package gateway

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/vunguard/ledger/internal/ledger/domain"
	notificationapp "github.com/vunguard/ledger/internal/notification/application"
	notificationdomain "github.com/vunguard/ledger/internal/notification/domain"
)

type transactionNotifier struct {
	notifications *notificationapp.NotificationService
}

// NewTransactionNotifier routes committed-transaction notices to the
// notification service.
func NewTransactionNotifier(notifications *notificationapp.NotificationService) domain.TransactionNotifier {
	return &transactionNotifier{notifications: notifications}
}

func (n *transactionNotifier) NotifyTransaction(ctx context.Context, accountID uint, txType domain.TransactionType,
	quantity, amount decimal.Decimal, productName, portfolioName string) error {

	var title, content string
	switch txType {
	case domain.TransactionTypeBuy:
		title = "Purchase confirmed"
		content = fmt.Sprintf("Bought %s units of %s in portfolio %s for %s.",
			quantity.String(), productName, portfolioName, amount.StringFixed(2))
	case domain.TransactionTypeSell:
		title = "Sale confirmed"
		content = fmt.Sprintf("Sold %s units of %s in portfolio %s for %s.",
			quantity.String(), productName, portfolioName, amount.StringFixed(2))
	case domain.TransactionTypeDeposit:
		title = "Deposit received"
		content = fmt.Sprintf("Deposited %s into portfolio %s.",
			amount.StringFixed(2), portfolioName)
	default:
		return fmt.Errorf("unknown transaction type %q", txType)
	}

	_, err := n.notifications.SendNotification(ctx, notificationapp.SendNotificationCommand{
		AccountID: accountID,
		Type:      notificationdomain.NotificationTypeTransaction,
		Title:     title,
		Content:   content,
	})
	return err
}
