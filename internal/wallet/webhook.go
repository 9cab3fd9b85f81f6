package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"property-wallet-go/internal/gateway"
	"property-wallet-go/internal/metrics"
	"property-wallet-go/internal/models"
	"property-wallet-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const paymentStatusPaid = "paid"

// HandleCheckoutCompleted credits a wallet for a paid checkout session.
// Unrelated events are acknowledged and ignored; a redelivered session is a no-op.
// Checkouts naming a missing or foreign wallet are logged and acknowledged.
func (s *Service) HandleCheckoutCompleted(ctx context.Context, payload []byte, signatureHeader string) error {
	event, err := s.gateway.VerifyWebhook(payload, signatureHeader)
	if err != nil {
		s.metrics.ObserveWebhook(metrics.WebhookRejected)
		zap.L().Warn("Rejected webhook delivery", zap.Error(err))
		return err
	}

	if event.Type != gateway.EventCheckoutCompleted {
		s.metrics.ObserveWebhook(metrics.WebhookIgnored)
		zap.L().Debug("Ignoring webhook event", zap.String("event_id", event.Id), zap.String("type", event.Type))
		return nil
	}

	session, err := event.CheckoutSession()
	if err != nil {
		s.metrics.ObserveWebhook(metrics.WebhookFailed)
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if !session.IsWalletDeposit() {
		s.metrics.ObserveWebhook(metrics.WebhookIgnored)
		zap.L().Debug("Ignoring checkout without wallet deposit metadata", zap.String("session_id", session.Id))
		return nil
	}
	if session.PaymentStatus != "" && session.PaymentStatus != paymentStatusPaid {
		s.metrics.ObserveWebhook(metrics.WebhookIgnored)
		zap.L().Info("Ignoring unpaid checkout",
			zap.String("session_id", session.Id),
			zap.String("payment_status", session.PaymentStatus))
		return nil
	}
	if session.AmountTotal <= 0 {
		s.metrics.ObserveWebhook(metrics.WebhookFailed)
		zap.L().Error("Dropping checkout without amount", zap.String("session_id", session.Id))
		return nil
	}

	currency := strings.ToUpper(session.Currency)
	amount := s.currencies.FromMinorUnits(session.AmountTotal, currency)
	walletId := session.Metadata[gateway.MetadataWalletId]

	record, err := s.store.CreditDeposit(ctx, store.CreditDepositParams{
		WalletId:          walletId,
		UserId:            session.Metadata[gateway.MetadataUserId],
		Amount:            amount,
		Currency:          currency,
		ExternalReference: session.Id,
	})
	if errors.Is(err, store.ErrDuplicateTransaction) {
		s.metrics.ObserveWebhook(metrics.WebhookDuplicate)
		zap.L().Info("Checkout already credited", zap.String("session_id", session.Id))
		return nil
	}
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrCurrencyMismatch) {
		// A redelivery cannot succeed, so the event is acknowledged.
		s.metrics.ObserveWebhook(metrics.WebhookFailed)
		zap.L().Error("Dropping checkout that matches no wallet",
			zap.String("session_id", session.Id),
			zap.String("wallet_id", walletId),
			zap.String("currency", currency),
			zap.Error(err))
		return nil
	}
	if err != nil {
		s.metrics.ObserveWebhook(metrics.WebhookFailed)
		return err
	}

	s.metrics.ObserveWebhook(metrics.WebhookCredited)
	s.committed(ctx, record)

	wallet, err := s.store.GetWalletById(ctx, walletId)
	if err != nil {
		zap.L().Warn("Failed to reload wallet after deposit", zap.String("wallet_id", walletId), zap.Error(err))
		return nil
	}
	if wallet.AutoPayout && wallet.InstantPayout {
		s.instantPayout(ctx, wallet, amount, record.Id)
	}
	return nil
}

// instantPayout forwards a fresh deposit to the default bank account.
// The payout debit stays pending until the gateway answers; a gateway
// failure marks it failed and restores the balance.
func (s *Service) instantPayout(ctx context.Context, wallet *models.Wallet, amount decimal.Decimal, depositId string) {
	if !s.cfg.InstantPayoutEnabled {
		zap.L().Info("Instant payout requested but disabled",
			zap.String("wallet_id", wallet.Id),
			zap.String("amount", amount.String()))
		return
	}

	var err error
	defer func() { s.metrics.ObserveOperation("instant_payout", err) }()

	account, err := s.store.GetDefaultBankAccount(ctx, wallet.UserId)
	if err != nil {
		zap.L().Warn("Instant payout skipped, no default bank account",
			zap.String("user_id", wallet.UserId),
			zap.Error(err))
		return
	}

	minorUnits, err := s.currencies.ToMinorUnits(amount, wallet.Currency)
	if err != nil {
		zap.L().Error("Instant payout amount not representable", zap.Error(err))
		return
	}

	pending, err := s.store.StartPayout(ctx, store.StartPayoutParams{
		UserId:        wallet.UserId,
		BankAccountId: account.Id,
		Amount:        amount,
		Reference:     "payout-" + depositId,
	})
	if err != nil {
		zap.L().Error("Failed to start instant payout", zap.String("wallet_id", wallet.Id), zap.Error(err))
		return
	}
	s.committed(ctx, pending)

	payout, payoutErr := s.gateway.CreatePayout(ctx, gateway.PayoutParams{
		Amount:            minorUnits,
		Currency:          wallet.Currency,
		Iban:              account.Iban,
		AccountHolderName: account.AccountHolderName,
		Reference:         pending.Id,
		Metadata:          map[string]string{gateway.MetadataWalletId: wallet.Id},
	})

	reference := ""
	if payoutErr == nil {
		reference = payout.Id
	} else {
		zap.L().Error("Gateway rejected instant payout",
			zap.String("transaction_id", pending.Id),
			zap.Error(payoutErr))
	}

	settled, err := s.store.SettlePayout(ctx, pending.Id, payoutErr == nil, reference)
	if err != nil {
		zap.L().Error("Failed to settle instant payout", zap.String("transaction_id", pending.Id), zap.Error(err))
		return
	}
	s.committed(ctx, settled)
	if payoutErr != nil {
		err = payoutErr
	}
}
