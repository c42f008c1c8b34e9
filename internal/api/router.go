package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/baharkarakas/ledger-bot/internal/api/handlers"
	"github.com/baharkarakas/ledger-bot/internal/auth"
	"github.com/baharkarakas/ledger-bot/internal/config"
	"github.com/baharkarakas/ledger-bot/internal/metrics"
	"github.com/baharkarakas/ledger-bot/internal/middleware"
	"github.com/baharkarakas/ledger-bot/internal/models"
)

type UserService interface {
	handlers.Authenticator
	handlers.UserAdmin
}

type RouterDeps struct {
	Cfg          config.Config
	TM           *auth.TokenManager
	Users        UserService
	Transactions handlers.Approvals
	Dispatcher   handlers.Dispatcher
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.HTTPMetrics, middleware.RateLimit(d.Cfg.RateRPS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-Id", "X-Gateway-Token"},
		ExposedHeaders: []string{"X-Request-Id"},
	}))

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	authMW := middleware.NewAuthMiddleware(d.TM, d.Cfg.Env)
	authH := handlers.NewAuthHandler(d.Users)
	msgH := handlers.NewMessageHandler(d.Dispatcher)
	apprH := handlers.NewApprovalHandler(d.Transactions)
	userH := handlers.NewUserHandler(d.Users)

	r.Route("/api/v1", func(r chi.Router) {
		// ---------- chat gateway ----------
		r.With(middleware.GatewayToken(d.Cfg.GatewayToken)).Post("/messages", msgH.Receive)

		// ---------- auth ----------
		r.Post("/auth/login", authH.Login)
		r.Post("/auth/refresh", authH.Refresh)

		// ---------- approvers ----------
		r.Group(func(r chi.Router) {
			r.Use(authMW.Auth, middleware.RequireRole(models.RoleApprover, models.RoleAdmin))

			r.Get("/approvals/pending", apprH.Pending)
			r.Post("/transactions/{id}/approve", apprH.Approve)
			r.Post("/transactions/{id}/reject", apprH.Reject)
			r.Get("/transactions/{id}", apprH.Get)
			r.Get("/transactions", apprH.ListByUser)
		})

		// ---------- admin ----------
		r.Group(func(r chi.Router) {
			r.Use(authMW.Auth, middleware.RequireRole(models.RoleAdmin))

			r.Post("/users", userH.Create)
			r.Post("/users/{id}/deactivate", userH.Deactivate)
		})
	})

	return r
}
