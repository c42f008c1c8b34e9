// Package memory provides in-process implementations of the repository interfaces.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/baharkarakas/ledger-bot/internal/apperrors"
	"github.com/baharkarakas/ledger-bot/internal/models"
	"github.com/google/uuid"
)

type Transactions struct {
	mu   sync.RWMutex
	rows map[string]models.Transaction
	now  func() time.Time
}

func NewTransactions() *Transactions {
	return &Transactions{rows: map[string]models.Transaction{}, now: time.Now}
}

// Insert stores tx as-is, keeping its CreatedAt. Used to seed history.
func (r *Transactions) Insert(tx models.Transaction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	r.rows[tx.ID] = cloneTx(tx)
}

func (r *Transactions) Create(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return models.Transaction{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if _, ok := r.rows[tx.ID]; ok {
		return models.Transaction{}, fmt.Errorf("transaction %s: %w", tx.ID, apperrors.ErrValidation)
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = r.now()
	}
	r.rows[tx.ID] = cloneTx(tx)
	return cloneTx(tx), nil
}

func (r *Transactions) GetByID(ctx context.Context, id string) (models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tx, ok := r.rows[id]
	if !ok {
		return models.Transaction{}, fmt.Errorf("transaction %s: %w", id, apperrors.ErrNotFound)
	}
	return cloneTx(tx), nil
}

func (r *Transactions) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error) {
	out := r.filter(func(tx models.Transaction) bool { return tx.UserID == userID }, true)
	return page(out, limit, offset), nil
}

func (r *Transactions) ListPending(ctx context.Context, limit int) ([]models.Transaction, error) {
	out := r.filter(func(tx models.Transaction) bool { return tx.ApprovalStatus == models.ApprovalPending }, false)
	return page(out, limit, 0), nil
}

func (r *Transactions) FindRecentByUser(ctx context.Context, userID string, since time.Time) ([]models.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.filter(func(tx models.Transaction) bool {
		return tx.UserID == userID && !tx.CreatedAt.Before(since)
	}, true), nil
}

func (r *Transactions) CountRecentByUser(ctx context.Context, userID string, since time.Time) (int, error) {
	txs, err := r.FindRecentByUser(ctx, userID, since)
	return len(txs), err
}

func (r *Transactions) UpdateApprovalStatus(ctx context.Context, id string, expected, next models.ApprovalStatus, approverID string, reason *string, at time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.rows[id]
	if !ok || tx.ApprovalStatus != expected {
		return false, nil
	}
	tx.ApprovalStatus = next
	tx.ApproverID = &approverID
	tx.ApprovedAt = &at
	tx.RejectionReason = reason
	r.rows[id] = tx
	return true, nil
}

func (r *Transactions) filter(keep func(models.Transaction) bool, newestFirst bool) []models.Transaction {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.Transaction
	for _, tx := range r.rows {
		if keep(tx) {
			out = append(out, cloneTx(tx))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func page(txs []models.Transaction, limit, offset int) []models.Transaction {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(txs) {
		return nil
	}
	txs = txs[offset:]
	if limit > 0 && limit < len(txs) {
		txs = txs[:limit]
	}
	return txs
}

func cloneTx(tx models.Transaction) models.Transaction {
	if tx.RiskFlags != nil {
		tx.RiskFlags = append([]string(nil), tx.RiskFlags...)
	}
	return tx
}
