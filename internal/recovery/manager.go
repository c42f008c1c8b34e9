// Package recovery snapshots submissions before they are persisted so that a failed
// submission can be resumed, and enforces the bounded retry protocol.
package recovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/baharkarakas/ledger-bot/internal/apperrors"
	"github.com/baharkarakas/ledger-bot/internal/metrics"
	"github.com/baharkarakas/ledger-bot/internal/models"
	"github.com/baharkarakas/ledger-bot/internal/money"
	repo "github.com/baharkarakas/ledger-bot/internal/repository"
	"github.com/baharkarakas/ledger-bot/internal/services"
	"github.com/shopspring/decimal"
)

// MaxRetries is the number of retry requests honoured per snapshot.
const MaxRetries = 3

type Submitter interface {
	Submit(ctx context.Context, req services.SubmitRequest) (services.SubmitResult, error)
}

type RetryStatus int

const (
	RetryRestored RetryStatus = iota
	RetryAbandoned
)

type RetryResult struct {
	Status  RetryStatus
	Attempt int
	Data    models.PartialTransaction
	Session *models.Session
}

type Manager struct {
	sessions  repo.SessionStore
	partials  repo.PartialDataStore
	submitter Submitter
	timeout   time.Duration
}

func NewManager(sessions repo.SessionStore, partials repo.PartialDataStore, submitter Submitter, timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Manager{sessions: sessions, partials: partials, submitter: submitter, timeout: timeout}
}

// Submit snapshots the session's transaction, then persists it. On success the snapshot
// and session are cleared. When persistence fails the snapshot is kept, the session is
// cleared and the returned error wraps apperrors.ErrTransient; the entry can only come
// back through Retry, so every further attempt counts against MaxRetries. A session
// missing required fields yields apperrors.ErrSessionIntegrity and is discarded.
func (m *Manager) Submit(ctx context.Context, userID string, sess *models.Session) (services.SubmitResult, error) {
	p, amount, err := snapshotOf(userID, sess)
	if err != nil {
		m.reset(ctx, userID)
		return services.SubmitResult{}, err
	}

	if err := m.partials.Save(ctx, p); err != nil {
		metrics.SubmissionsFailed.Inc()
		return services.SubmitResult{}, fmt.Errorf("save snapshot: %w: %w", apperrors.ErrTransient, err)
	}

	sctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	res, err := m.submitter.Submit(sctx, services.SubmitRequest{
		UserID:      userID,
		Type:        p.Type,
		Category:    p.Category,
		Amount:      amount,
		Description: p.Description,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			m.reset(ctx, userID)
			return services.SubmitResult{}, fmt.Errorf("%w: %w", apperrors.ErrSessionIntegrity, err)
		}
		metrics.SubmissionsFailed.Inc()
		slog.Warn("submission failed, snapshot kept", "user", userID, "attempt", p.RetryCount, "err", err)
		if cerr := m.sessions.Clear(ctx, userID); cerr != nil {
			slog.Warn("park session after failed submit", "user", userID, "err", cerr)
		}
		return services.SubmitResult{}, fmt.Errorf("submit: %w: %w", apperrors.ErrTransient, err)
	}

	if err := m.partials.Clear(ctx, userID); err != nil {
		slog.Warn("clear snapshot after submit", "user", userID, "err", err)
	}
	if err := m.sessions.Clear(ctx, userID); err != nil {
		slog.Warn("clear session after submit", "user", userID, "err", err)
	}
	return res, nil
}

// Retry counts a retry request. Up to MaxRetries it reloads the snapshot into a fresh
// CONFIRM session; past that the snapshot is discarded and returned for manual re-entry.
func (m *Manager) Retry(ctx context.Context, userID string) (RetryResult, error) {
	p, err := m.partials.Load(ctx, userID)
	if err != nil {
		return RetryResult{}, err
	}
	if p == nil {
		return RetryResult{}, apperrors.ErrNotFound
	}
	sess, err := m.sessions.Get(ctx, userID)
	if err != nil {
		return RetryResult{}, err
	}

	count := p.RetryCount
	if sess != nil && sess.RetryCount > count {
		count = sess.RetryCount
	}
	next := count + 1

	if next > MaxRetries {
		if err := m.Discard(ctx, userID); err != nil {
			return RetryResult{}, err
		}
		metrics.RecoveryRetries.WithLabelValues("abandoned").Inc()
		return RetryResult{Status: RetryAbandoned, Attempt: count, Data: *p}, nil
	}

	p.RetryCount = next
	if err := m.partials.Save(ctx, *p); err != nil {
		return RetryResult{}, err
	}
	fresh := models.NewSession()
	fresh.SetFields(p.Fields())
	fresh.MenuState = models.StateConfirm
	fresh.RetryCount = next
	if err := m.sessions.Set(ctx, userID, fresh); err != nil {
		return RetryResult{}, err
	}
	metrics.RecoveryRetries.WithLabelValues("restored").Inc()
	return RetryResult{Status: RetryRestored, Attempt: next, Data: *p, Session: fresh}, nil
}

// Pending returns the user's snapshot, or nil.
func (m *Manager) Pending(ctx context.Context, userID string) (*models.PartialTransaction, error) {
	return m.partials.Load(ctx, userID)
}

// Discard drops the snapshot and the session.
func (m *Manager) Discard(ctx context.Context, userID string) error {
	if err := m.partials.Clear(ctx, userID); err != nil {
		return err
	}
	return m.sessions.Clear(ctx, userID)
}

func (m *Manager) reset(ctx context.Context, userID string) {
	if err := m.Discard(ctx, userID); err != nil {
		slog.Warn("reset after integrity error", "user", userID, "err", err)
	}
}

func snapshotOf(userID string, sess *models.Session) (models.PartialTransaction, decimal.Decimal, error) {
	if sess == nil || sess.TransactionType == nil || sess.Category == nil || sess.Amount == nil {
		return models.PartialTransaction{}, decimal.Decimal{}, fmt.Errorf("submit without type/category/amount: %w", apperrors.ErrSessionIntegrity)
	}
	amount, err := money.ValidateAmount(*sess.Amount)
	if err != nil {
		return models.PartialTransaction{}, decimal.Decimal{}, fmt.Errorf("stored amount %q: %w", *sess.Amount, apperrors.ErrSessionIntegrity)
	}
	p := models.PartialTransaction{
		UserID:     userID,
		Type:       *sess.TransactionType,
		Category:   *sess.Category,
		Amount:     *sess.Amount,
		RetryCount: sess.RetryCount,
		CreatedAt:  time.Now(),
	}
	if sess.Description != nil {
		d := *sess.Description
		p.Description = &d
	}
	return p, amount, nil
}
