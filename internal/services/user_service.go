package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/baharkarakas/ledger-bot/internal/apperrors"
	"github.com/baharkarakas/ledger-bot/internal/auth"
	"github.com/baharkarakas/ledger-bot/internal/models"
	repo "github.com/baharkarakas/ledger-bot/internal/repository"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type UserService struct {
	r        repo.Users
	sessions repo.SessionStore
	partials repo.PartialDataStore
	log      repo.AuditLogs
	tm       *auth.TokenManager
}

func NewUserService(r repo.Users, sessions repo.SessionStore, partials repo.PartialDataStore, l repo.AuditLogs, tm *auth.TokenManager) *UserService {
	return &UserService{r: r, sessions: sessions, partials: partials, log: l, tm: tm}
}

// Register creates an account that can log in to the approver API.
func (s *UserService) Register(ctx context.Context, chatID, name, email, password string, role models.Role) (models.User, error) {
	email = strings.TrimSpace(email)
	u := models.User{ID: strings.TrimSpace(chatID), Name: strings.TrimSpace(name), Email: &email, Role: role, Active: true}
	if err := u.Validate(); err != nil {
		return models.User{}, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if len(password) < 8 {
		return models.User{}, fmt.Errorf("%w: password too short", apperrors.ErrValidation)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	u.PasswordHash = hash
	return s.r.Create(ctx, u)
}

func (s *UserService) Login(ctx context.Context, email, password string) (auth.Pair, models.User, error) {
	u, err := s.r.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return auth.Pair{}, models.User{}, ErrInvalidCredentials
		}
		return auth.Pair{}, models.User{}, err
	}
	if !u.Active {
		return auth.Pair{}, models.User{}, apperrors.ErrInactiveUser
	}
	if err := auth.VerifyPassword(password, u.PasswordHash); err != nil {
		return auth.Pair{}, models.User{}, ErrInvalidCredentials
	}
	pair, err := s.tm.GeneratePair(u.ID, string(u.Role))
	return pair, u, err
}

func (s *UserService) Refresh(ctx context.Context, refreshToken string) (auth.Pair, error) {
	claims, err := s.tm.ParseRefresh(refreshToken)
	if err != nil {
		return auth.Pair{}, err
	}
	u, err := s.r.GetByID(ctx, claims.UserID)
	if err != nil {
		return auth.Pair{}, err
	}
	if !u.Active {
		return auth.Pair{}, apperrors.ErrInactiveUser
	}
	return s.tm.GeneratePair(u.ID, string(u.Role))
}

// EnsureChatUser returns the user for a chat address, registering a submitter on first contact.
func (s *UserService) EnsureChatUser(ctx context.Context, chatID, name string) (models.User, error) {
	u, err := s.r.GetByID(ctx, chatID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return models.User{}, err
	}
	u = models.User{ID: chatID, Name: strings.TrimSpace(name), Role: models.RoleSubmitter, Active: true}
	if err := u.Validate(); err != nil {
		return models.User{}, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	return s.r.Create(ctx, u)
}

// Deactivate disables the account and drops its session and recovery snapshot.
func (s *UserService) Deactivate(ctx context.Context, id, actor string) error {
	if err := s.r.SetActive(ctx, id, false); err != nil {
		return err
	}
	if err := s.sessions.Clear(ctx, id); err != nil {
		return err
	}
	if err := s.partials.Clear(ctx, id); err != nil {
		return err
	}
	_ = s.log.Create(ctx, models.AuditLog{EntityType: "user", EntityID: &id, Action: "deactivated", Actor: actor})
	return nil
}

func (s *UserService) Get(ctx context.Context, id string) (models.User, error) { return s.r.GetByID(ctx, id) }

func (s *UserService) ListApprovers(ctx context.Context) ([]models.User, error) {
	return s.r.ListByRole(ctx, models.RoleApprover, models.RoleAdmin)
}
