// Package app wires configuration, storage and services into a running application.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/baharkarakas/ledger-bot/internal/api"
	"github.com/baharkarakas/ledger-bot/internal/auth"
	"github.com/baharkarakas/ledger-bot/internal/catalog"
	"github.com/baharkarakas/ledger-bot/internal/chat"
	"github.com/baharkarakas/ledger-bot/internal/config"
	"github.com/baharkarakas/ledger-bot/internal/db"
	"github.com/baharkarakas/ledger-bot/internal/notify"
	"github.com/baharkarakas/ledger-bot/internal/recovery"
	repo "github.com/baharkarakas/ledger-bot/internal/repository"
	"github.com/baharkarakas/ledger-bot/internal/repository/memory"
	"github.com/baharkarakas/ledger-bot/internal/repository/postgres"
	"github.com/baharkarakas/ledger-bot/internal/scoring"
	"github.com/baharkarakas/ledger-bot/internal/services"
	"github.com/baharkarakas/ledger-bot/internal/session"
	"github.com/baharkarakas/ledger-bot/internal/workflow"
	"github.com/baharkarakas/ledger-bot/internal/worker"
)

const jwtIssuer = "ledger-bot"

type App struct {
	Cfg          config.Config
	DB           *pgxpool.Pool // nil with memory storage
	Repos        repo.Repositories
	Sessions     *session.Store
	Workers      *worker.Pool
	TM           *auth.TokenManager
	Scorer       *scoring.Engine
	Transactions *services.TransactionService
	Users        *services.UserService
	Recovery     *recovery.Manager
	Workflow     *workflow.Engine
	Dispatcher   *chat.Dispatcher
}

// New connects storage (running migrations when configured) and builds every service.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	a := &App{Cfg: cfg}

	switch cfg.Storage {
	case "memory":
		a.Repos = memory.NewRepositories()
	case "postgres", "":
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
		if cfg.Migrate {
			if err := db.RunMigrations(ctx, pool); err != nil {
				pool.Close()
				return nil, fmt.Errorf("migrations: %w", err)
			}
		}
		a.DB = pool
		a.Repos = postgres.NewRepositories(pool)
	default:
		return nil, fmt.Errorf("unknown STORAGE %q", cfg.Storage)
	}

	a.Workers = worker.NewPool(cfg.Workers, 0)
	var sender notify.Sender = notify.LogSender{}
	if cfg.NotifyWebhookURL != "" {
		sender = notify.NewWebhookSender(cfg.NotifyWebhookURL, cfg.GatewayToken)
	}
	notifier := notify.NewAsync(sender, a.Workers, cfg.PersistTimeout)

	a.TM = auth.NewTokenManager(jwtIssuer, cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	a.Sessions = session.NewStore()
	a.Scorer = scoring.NewEngine(a.Repos.Transactions, cfg.Scoring)
	a.Transactions = services.NewTransactionService(a.Repos.Transactions, a.Repos.Users, a.Repos.AuditLogs, a.Scorer, notifier)
	a.Users = services.NewUserService(a.Repos.Users, a.Sessions, a.Repos.Partials, a.Repos.AuditLogs, a.TM)
	a.Recovery = recovery.NewManager(a.Sessions, a.Repos.Partials, a.Transactions, cfg.PersistTimeout)
	a.Workflow = workflow.NewEngine(a.Sessions, catalog.NewDirectory(a.Repos.Categories), a.Recovery)
	a.Dispatcher = chat.NewDispatcher(session.NewLocker(), a.Users, a.Transactions, a.Workflow)

	slog.Info("app ready", "env", cfg.Env, "storage", cfg.Storage, "workers", cfg.Workers)
	return a, nil
}

func (a *App) Router() http.Handler {
	return api.NewRouter(api.RouterDeps{
		Cfg:          a.Cfg,
		TM:           a.TM,
		Users:        a.Users,
		Transactions: a.Transactions,
		Dispatcher:   a.Dispatcher,
	})
}

// Close drains pending notifications and releases the database pool.
func (a *App) Close() {
	a.Workers.Stop()
	if a.DB != nil {
		a.DB.Close()
	}
}
