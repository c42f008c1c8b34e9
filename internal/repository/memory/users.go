package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/baharkarakas/ledger-bot/internal/apperrors"
	"github.com/baharkarakas/ledger-bot/internal/models"
)

type Users struct {
	mu   sync.RWMutex
	rows map[string]models.User
}

func NewUsers() *Users {
	return &Users{rows: map[string]models.User{}}
}

func (r *Users) Create(ctx context.Context, u models.User) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[u.ID]; ok {
		return models.User{}, fmt.Errorf("user %s: %w", u.ID, apperrors.ErrValidation)
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	r.rows[u.ID] = u
	return u, nil
}

func (r *Users) GetByID(ctx context.Context, id string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.rows[id]
	if !ok {
		return models.User{}, fmt.Errorf("user %s: %w", id, apperrors.ErrNotFound)
	}
	return u, nil
}

func (r *Users) GetByEmail(ctx context.Context, email string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.rows {
		if u.Email != nil && *u.Email == email {
			return u, nil
		}
	}
	return models.User{}, fmt.Errorf("user: %w", apperrors.ErrNotFound)
}

func (r *Users) ListByRole(ctx context.Context, roles ...models.Role) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.User
	for _, u := range r.rows {
		if !u.Active {
			continue
		}
		for _, role := range roles {
			if u.Role == role {
				out = append(out, u)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Users) SetActive(ctx context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.Active = active
	u.UpdatedAt = time.Now()
	r.rows[id] = u
	return nil
}
