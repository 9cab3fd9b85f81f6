package api

import (
	"fmt"
	"net/http"
	"strconv"

	"property-wallet-go/internal/models"
)

func (h *Handler) GetWallet(w http.ResponseWriter, r *http.Request) {
	id := identity(w, r)
	if id == nil {
		return
	}
	wallet, err := h.wallet.GetWallet(r.Context(), id.UserId)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"wallet": wallet})
}

// ListTransactions pages through the caller's history, newest first
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	id := identity(w, r)
	if id == nil {
		return
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		writeError(w, err)
		return
	}

	page, err := h.wallet.ListTransactions(r.Context(), id.UserId, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	id := identity(w, r)
	if id == nil {
		return
	}
	var req models.SettingsRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	wallet, err := h.wallet.UpdateSettings(r.Context(), id.UserId, req.AutoPayout, req.InstantPayout)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"wallet": wallet})
}

// queryInt reads an optional integer query parameter; absent means zero
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", errBadRequest, name)
	}
	return value, nil
}
