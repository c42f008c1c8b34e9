package memory

import (
	"context"
	"sync"
	"time"

	"github.com/baharkarakas/ledger-bot/internal/models"
)

type Partials struct {
	mu   sync.Mutex
	rows map[string]models.PartialTransaction
}

func NewPartials() *Partials {
	return &Partials{rows: map[string]models.PartialTransaction{}}
}

func (s *Partials) Save(ctx context.Context, p models.PartialTransaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	s.rows[p.UserID] = p
	return nil
}

func (s *Partials) Load(ctx context.Context, userID string) (*models.PartialTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.rows[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *Partials) Clear(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, userID)
	return nil
}
