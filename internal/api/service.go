/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package api

import (
	"context"
	"net/http"

	"property-wallet-go/internal/invitation"
	"property-wallet-go/internal/metrics"
	"property-wallet-go/internal/wallet"

	"github.com/go-playground/validator"
	"go.uber.org/zap"
)

// HealthChecker reports whether a backing service is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler serves the wallet HTTP surface
type Handler struct {
	wallet      *wallet.Service
	invitations *invitation.Service
	health      HealthChecker
	metrics     *metrics.Metrics
	auth        *Authenticator
	validate    *validator.Validate
}

func NewHandler(walletService *wallet.Service, invitations *invitation.Service, health HealthChecker, m *metrics.Metrics, auth *Authenticator) *Handler {
	return &Handler{
		wallet:      walletService,
		invitations: invitations,
		health:      health,
		metrics:     m,
		auth:        auth,
		validate:    validator.New(),
	}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.health.HealthCheck(r.Context()); err != nil {
		zap.L().Error("Health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
