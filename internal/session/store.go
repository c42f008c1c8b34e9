// Package session keeps per-user workflow sessions in process memory.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/baharkarakas/ledger-bot/internal/models"
)

// Store is a map-backed repository.SessionStore. Values are copied on the way in and
// out so callers never share a *models.Session.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{sessions: map[string]*models.Session{}, now: time.Now}
}

func (s *Store) Get(ctx context.Context, userID string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[userID].Clone(), nil
}

func (s *Store) Set(ctx context.Context, userID string, sess *models.Session) error {
	if sess == nil {
		return s.Clear(ctx, userID)
	}
	c := sess.Clone()
	c.UpdatedAt = s.now()
	s.mu.Lock()
	s.sessions[userID] = c
	s.mu.Unlock()
	return nil
}

// Update applies fn to the stored session, creating a MAIN session if none exists.
func (s *Store) Update(ctx context.Context, userID string, fn func(*models.Session)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.sessions[userID].Clone()
	if sess == nil {
		sess = models.NewSession()
	}
	fn(sess)
	sess.UpdatedAt = s.now()
	s.sessions[userID] = sess
	return nil
}

func (s *Store) Clear(ctx context.Context, userID string) error {
	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()
	return nil
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
