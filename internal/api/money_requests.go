package api

import (
	"net/http"

	"property-wallet-go/internal/models"
	"property-wallet-go/internal/wallet"
)

func (h *Handler) ListMoneyRequests(w http.ResponseWriter, r *http.Request) {
	id := identity(w, r)
	if id == nil {
		return
	}
	requests, err := h.wallet.ListMoneyRequests(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"money_requests": requests})
}

// MoneyRequestAction creates a request for tenants and decides one for landlords
func (h *Handler) MoneyRequestAction(w http.ResponseWriter, r *http.Request) {
	id := identity(w, r)
	if id == nil {
		return
	}
	var req models.MoneyRequestAction
	if err := h.decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	switch id.Role {
	case models.RoleTenant:
		request, err := h.wallet.CreateMoneyRequest(r.Context(), id, req.TenancyId, req.Amount, req.Reason, req.Category)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"money_request": request})

	case models.RoleLandlord:
		request, err := h.wallet.DecideMoneyRequest(r.Context(), id, req.RequestId, req.Action, req.Note)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"money_request": request})

	default:
		writeError(w, wallet.ErrForbidden)
	}
}
