package repository

import (
	"context"
	"time"

	"github.com/baharkarakas/ledger-bot/internal/models"
)

// SessionStore holds the per-user workflow session. Get returns nil when no session exists.
type SessionStore interface {
	Get(ctx context.Context, userID string) (*models.Session, error)
	Set(ctx context.Context, userID string, s *models.Session) error
	Update(ctx context.Context, userID string, fn func(*models.Session)) error
	Clear(ctx context.Context, userID string) error
}

// PartialDataStore holds recovery snapshots. Load returns nil when none exists.
type PartialDataStore interface {
	Save(ctx context.Context, p models.PartialTransaction) error
	Load(ctx context.Context, userID string) (*models.PartialTransaction, error)
	Clear(ctx context.Context, userID string) error
}

type Categories interface {
	ListActive(ctx context.Context, t models.TransactionType) ([]models.Category, error)
	Create(ctx context.Context, c models.Category) (models.Category, error)
}

// TransactionHistory is the read side the scoring engine aggregates over.
type TransactionHistory interface {
	FindRecentByUser(ctx context.Context, userID string, since time.Time) ([]models.Transaction, error)
	CountRecentByUser(ctx context.Context, userID string, since time.Time) (int, error)
}

type Transactions interface {
	TransactionHistory

	Create(ctx context.Context, tx models.Transaction) (models.Transaction, error)
	GetByID(ctx context.Context, id string) (models.Transaction, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error)
	ListPending(ctx context.Context, limit int) ([]models.Transaction, error)

	// UpdateApprovalStatus applies next only if the stored status equals expected.
	// It reports whether the row was updated.
	UpdateApprovalStatus(ctx context.Context, id string, expected, next models.ApprovalStatus, approverID string, reason *string, at time.Time) (bool, error)
}

type Users interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	ListByRole(ctx context.Context, roles ...models.Role) ([]models.User, error)
	SetActive(ctx context.Context, id string, active bool) error
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}

// Repositories bundles one storage backend's implementations.
type Repositories struct {
	Users        Users
	Categories   Categories
	Transactions Transactions
	Partials     PartialDataStore
	AuditLogs    AuditLogs
}
