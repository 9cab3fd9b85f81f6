package formance

import (
	"context"
	"fmt"

	"property-wallet-go/internal/models"

	"github.com/formancehq/formance-sdk-go/v3/pkg/models/operations"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"go.uber.org/zap"
)

// Credits are minted from @world; debits leave the wallet for a platform
// account named after the transaction type.
const numscriptCredit = `vars {
  asset $asset
  number $amount
  account $wallet
  string $wallet_tx_id
  string $tx_type
  string $user_id
  string $amount_human
}

send [$asset $amount] (
  source = @world
  destination = @wallets:$wallet
)

set_tx_meta("event_type", "wallet_credit")
set_tx_meta("wallet_tx_id", $wallet_tx_id)
set_tx_meta("tx_type", $tx_type)
set_tx_meta("user_id", $user_id)
set_tx_meta("amount_human", $amount_human)
`

const numscriptDebit = `vars {
  asset $asset
  number $amount
  account $wallet
  account $platform
  string $wallet_tx_id
  string $tx_type
  string $user_id
  string $amount_human
}

send [$asset $amount] (
  source = @wallets:$wallet allowing unbounded overdraft
  destination = @platform:$platform
)

set_tx_meta("event_type", "wallet_debit")
set_tx_meta("wallet_tx_id", $wallet_tx_id)
set_tx_meta("tx_type", $tx_type)
set_tx_meta("user_id", $user_id)
set_tx_meta("amount_human", $amount_human)
`

// numscriptReversal returns a failed debit from the platform account to the wallet.
const numscriptReversal = `vars {
  asset $asset
  number $amount
  account $wallet
  account $platform
  string $wallet_tx_id
  string $tx_type
  string $user_id
  string $amount_human
}

send [$asset $amount] (
  source = @platform:$platform allowing unbounded overdraft
  destination = @wallets:$wallet
)

set_tx_meta("event_type", "wallet_reversal")
set_tx_meta("wallet_tx_id", $wallet_tx_id)
set_tx_meta("tx_type", $tx_type)
set_tx_meta("user_id", $user_id)
set_tx_meta("amount_human", $amount_human)
`

// RecordTransaction posts one wallet transaction. The wallet transaction id
// is the ledger reference, so replays are absorbed as conflicts.
func (m *Mirror) RecordTransaction(ctx context.Context, record *models.WalletTransaction) error {
	postTx, ok := m.postingFor(record)
	if !ok {
		zap.L().Debug("Transaction has nothing to mirror",
			zap.String("transaction_id", record.Id),
			zap.String("status", string(record.Status)))
		return nil
	}

	_, err := m.client.Ledger.V2.CreateTransaction(ctx, operations.V2CreateTransactionRequest{
		Ledger:            m.ledger,
		V2PostTransaction: postTx,
	})
	if err != nil {
		if isConflictError(err) {
			zap.L().Debug("Transaction already mirrored", zap.String("reference", *postTx.Reference))
			return nil
		}
		return fmt.Errorf("error mirroring transaction %s: %w", record.Id, err)
	}

	zap.L().Info("Transaction mirrored to Formance",
		zap.String("reference", *postTx.Reference),
		zap.String("type", string(record.Type)),
		zap.String("amount", record.Amount.String()))
	return nil
}

// postingFor builds the Formance transaction for a wallet transaction.
// Cancelled and zero-amount records are not mirrored.
func (m *Mirror) postingFor(record *models.WalletTransaction) (shared.V2PostTransaction, bool) {
	if record.Amount.IsZero() || record.Status == models.TxStatusCancelled {
		return shared.V2PostTransaction{}, false
	}

	vars := map[string]string{
		"asset":        m.formanceAsset(record.Currency),
		"amount":       record.Amount.Abs().Shift(m.precisionFor(record.Currency)).BigInt().String(),
		"wallet":       record.WalletId,
		"wallet_tx_id": record.Id,
		"tx_type":      string(record.Type),
		"user_id":      record.UserId,
		"amount_human": record.Amount.String(),
	}

	script := numscriptCredit
	reference := record.Id
	if record.Amount.IsNegative() {
		vars["platform"] = string(record.Type)
		script = numscriptDebit
		if record.Status == models.TxStatusFailed {
			script = numscriptReversal
			reference = record.Id + "-reversal"
		}
	} else if record.Status == models.TxStatusFailed {
		return shared.V2PostTransaction{}, false
	}

	postTx := shared.V2PostTransaction{
		Reference: strPtr(reference),
		Script: &shared.V2PostTransactionScript{
			Plain: script,
			Vars:  vars,
		},
	}
	if !record.CreatedAt.IsZero() {
		ts := record.CreatedAt
		postTx.Timestamp = &ts
	}
	return postTx, true
}

func strPtr(s string) *string { return &s }
