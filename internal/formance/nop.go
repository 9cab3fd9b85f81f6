package formance

import (
	"context"

	"property-wallet-go/internal/models"
)

// NopMirror is used when no Formance stack is configured.
type NopMirror struct{}

func (NopMirror) RecordTransaction(context.Context, *models.WalletTransaction) error { return nil }
