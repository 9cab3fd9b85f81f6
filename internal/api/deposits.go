package api

import (
	"fmt"
	"io"
	"net/http"

	"property-wallet-go/internal/gateway"
	"property-wallet-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	actionRelease = "release"
	actionLock    = "lock"
)

// Deposit opens a hosted checkout; the wallet is credited by the webhook
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	id := identity(w, r)
	if id == nil {
		return
	}
	var req models.DepositRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	url, err := h.wallet.InitiateDeposit(r.Context(), id.UserId, req.Amount, req.Currency)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.DepositResponse{Url: url})
}

// PaymentWebhook receives gateway events. The raw body is needed for the signature.
func (h *Handler) PaymentWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, fmt.Errorf("%w: failed to read body", errBadRequest))
		return
	}

	if err := h.wallet.HandleCheckoutCompleted(r.Context(), payload, r.Header.Get(gateway.SignatureHeader)); err != nil {
		zap.L().Warn("Webhook processing failed", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

func (h *Handler) ListSecurityDeposits(w http.ResponseWriter, r *http.Request) {
	id := identity(w, r)
	if id == nil {
		return
	}
	deposits, err := h.wallet.ListSecurityDeposits(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"security_deposits": deposits})
}

// SecurityDepositAction releases a held deposit, or locks a new one when
// action is "lock". Both are landlord operations.
func (h *Handler) SecurityDepositAction(w http.ResponseWriter, r *http.Request) {
	id := identity(w, r)
	if id == nil {
		return
	}
	var req models.SecurityDepositAction
	if err := h.decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	switch req.Action {
	case actionLock:
		deposit, err := h.wallet.LockDeposit(r.Context(), id, req.TenancyId, req.Amount)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"security_deposit": deposit})

	case actionRelease, "":
		var releaseAmount *decimal.Decimal
		if req.ReleaseAmount.Valid {
			releaseAmount = &req.ReleaseAmount.Decimal
		}
		result, err := h.wallet.ReleaseDeposit(r.Context(), id, req.DepositId, releaseAmount, req.DeductionReason)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"security_deposit": result.Deposit,
			"refund":           result.Refund,
			"deduction":        result.Deduction,
		})

	default:
		writeError(w, fmt.Errorf("%w: unknown action %q", errBadRequest, req.Action))
	}
}
