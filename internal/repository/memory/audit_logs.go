package memory

import (
	"context"
	"sync"
	"time"

	"github.com/baharkarakas/ledger-bot/internal/models"
)

type AuditLogs struct {
	mu   sync.Mutex
	logs []models.AuditLog
}

func NewAuditLogs() *AuditLogs { return &AuditLogs{} }

func (r *AuditLogs) Create(ctx context.Context, l models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l.CreatedAt = time.Now()
	r.logs = append(r.logs, l)
	return nil
}

// Entries returns a copy of everything written so far.
func (r *AuditLogs) Entries() []models.AuditLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.AuditLog(nil), r.logs...)
}
