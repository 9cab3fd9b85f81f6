package api

import (
	"net/http"
	"time"

	"property-wallet-go/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

const defaultRequestTimeout = 30 * time.Second

// NewRouter mounts every route on a chi router
func NewRouter(h *Handler, cfg models.ServerConfig) http.Handler {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", h.HealthCheck)
	r.Handle("/metrics", h.metrics.Handler())

	// No session: the gateway authenticates with its signature, invitees have no account yet
	r.Post("/webhooks/payment-gateway", h.PaymentWebhook)
	r.Get("/invitations/{token}", h.ResolveInvitation)

	r.Group(func(r chi.Router) {
		r.Use(h.auth.Middleware)

		r.Post("/invitations", h.CreateInvitation)
		r.Post("/invitations/{token}/use", h.UseInvitation)

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/", h.GetWallet)
			r.Post("/deposit", h.Deposit)
			r.Post("/withdraw", h.Withdraw)
			r.Post("/rent", h.PayRent)
			r.Post("/settings", h.UpdateSettings)
			r.Get("/transactions", h.ListTransactions)

			r.Get("/bank-accounts", h.ListBankAccounts)
			r.Post("/bank-accounts", h.AddBankAccount)
			r.Delete("/bank-accounts", h.DeleteBankAccount)
			r.Delete("/bank-accounts/{id}", h.DeleteBankAccount)

			r.Get("/security-deposits", h.ListSecurityDeposits)
			r.Post("/security-deposits", h.SecurityDepositAction)

			r.Get("/money-requests", h.ListMoneyRequests)
			r.Post("/money-requests", h.MoneyRequestAction)
		})
	})

	return r
}

// requestLogger logs one line per request through the global zap logger
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		zap.L().Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("remote_addr", r.RemoteAddr))
	})
}
