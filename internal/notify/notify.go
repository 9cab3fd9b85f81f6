package notify

import (
	"context"
	"time"

	"property-wallet-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Event is published after a wallet transaction is committed
type Event struct {
	TransactionId string                   `json:"transaction_id"`
	WalletId      string                   `json:"wallet_id"`
	UserId        string                   `json:"user_id"`
	Type          models.TransactionType   `json:"type"`
	Status        models.TransactionStatus `json:"status"`
	Amount        decimal.Decimal          `json:"amount"`
	Currency      string                   `json:"currency"`
	Description   string                   `json:"description"`
	RelatedUserId string                   `json:"related_user_id,omitempty"`
	OccurredAt    time.Time                `json:"occurred_at"`
}

// EventFromTransaction builds the notification for a committed record
func EventFromTransaction(record *models.WalletTransaction) Event {
	occurredAt := record.UpdatedAt
	if occurredAt.IsZero() {
		occurredAt = record.CreatedAt
	}
	return Event{
		TransactionId: record.Id,
		WalletId:      record.WalletId,
		UserId:        record.UserId,
		Type:          record.Type,
		Status:        record.Status,
		Amount:        record.Amount,
		Currency:      record.Currency,
		Description:   record.Description,
		RelatedUserId: record.RelatedUserId,
		OccurredAt:    occurredAt,
	}
}

// Notifier delivers wallet events to whoever informs the user
type Notifier interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// LogNotifier writes events to the structured log
type LogNotifier struct{}

func (LogNotifier) Publish(_ context.Context, event Event) error {
	zap.L().Info("Wallet event",
		zap.String("transaction_id", event.TransactionId),
		zap.String("wallet_id", event.WalletId),
		zap.String("user_id", event.UserId),
		zap.String("type", string(event.Type)),
		zap.String("status", string(event.Status)),
		zap.String("amount", event.Amount.String()),
		zap.String("currency", event.Currency))
	return nil
}

func (LogNotifier) Close() error { return nil }
