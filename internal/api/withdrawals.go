package api

import (
	"fmt"
	"net/http"

	"property-wallet-go/internal/models"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	id := identity(w, r)
	if id == nil {
		return
	}
	var req models.WithdrawRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	record, err := h.wallet.Withdraw(r.Context(), id.UserId, req.Amount, req.BankAccountId)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.WithdrawResponse{Success: true, Transaction: record})
}

// PayRent pays one rent period of the caller's tenancy from their wallet
func (h *Handler) PayRent(w http.ResponseWriter, r *http.Request) {
	id := identity(w, r)
	if id == nil {
		return
	}
	var req models.RentRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.wallet.PayRent(r.Context(), id, req.TenancyId)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "transaction": result.Debit})
}

func (h *Handler) ListBankAccounts(w http.ResponseWriter, r *http.Request) {
	id := identity(w, r)
	if id == nil {
		return
	}
	accounts, err := h.wallet.ListBankAccounts(r.Context(), id.UserId)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bank_accounts": accounts})
}

func (h *Handler) AddBankAccount(w http.ResponseWriter, r *http.Request) {
	id := identity(w, r)
	if id == nil {
		return
	}
	var req models.BankAccountRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	account, err := h.wallet.AddBankAccount(r.Context(), id.UserId, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"bank_account": account})
}

// DeleteBankAccount takes the account id from the path or the id query parameter
func (h *Handler) DeleteBankAccount(w http.ResponseWriter, r *http.Request) {
	id := identity(w, r)
	if id == nil {
		return
	}
	accountId := chi.URLParam(r, "id")
	if accountId == "" {
		accountId = r.URL.Query().Get("id")
	}
	if accountId == "" {
		writeError(w, fmt.Errorf("%w: bank account id is required", errBadRequest))
		return
	}

	if err := h.wallet.DeleteBankAccount(r.Context(), id.UserId, accountId); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
