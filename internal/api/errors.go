package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"property-wallet-go/internal/gateway"
	"property-wallet-go/internal/invitation"
	"property-wallet-go/internal/models"
	"property-wallet-go/internal/store"
	"property-wallet-go/internal/wallet"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("bad request")

// statusFor maps a service error onto the HTTP status the client sees
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, invitation.ErrExpired), errors.Is(err, invitation.ErrUsed):
		return http.StatusGone
	case errors.Is(err, wallet.ErrForbidden), errors.Is(err, invitation.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, store.ErrValidation),
		errors.Is(err, store.ErrInsufficientBalance),
		errors.Is(err, store.ErrInvalidState),
		errors.Is(err, gateway.ErrInvalidSignature):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		zap.L().Error("Request failed", zap.Error(err))
	}
	writeJSON(w, status, models.ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Warn("Failed to encode response", zap.Error(err))
	}
}

// decode reads a strict JSON body into dst and validates its tags
func (h *Handler) decode(r *http.Request, dst any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	if err := h.validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %v", store.ErrValidation, err)
	}
	return nil
}
