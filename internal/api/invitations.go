package api

import (
	"net/http"
	"time"

	"property-wallet-go/internal/models"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) CreateInvitation(w http.ResponseWriter, r *http.Request) {
	id := identity(w, r)
	if id == nil {
		return
	}
	var req models.InvitationRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	invitation, err := h.invitations.Create(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, models.InvitationResponse{
		Token:     invitation.Token,
		ExpiresAt: invitation.ExpiresAt.Format(time.RFC3339),
	})
}

// ResolveInvitation returns the pre-filled details behind a token
func (h *Handler) ResolveInvitation(w http.ResponseWriter, r *http.Request) {
	invitation, err := h.invitations.Resolve(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"invitation": invitation})
}

func (h *Handler) UseInvitation(w http.ResponseWriter, r *http.Request) {
	id := identity(w, r)
	if id == nil {
		return
	}

	_, tenancy, err := h.invitations.Consume(r.Context(), chi.URLParam(r, "token"), id.UserId)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "tenancy": tenancy})
}
