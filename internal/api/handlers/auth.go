package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/baharkarakas/ledger-bot/internal/api/httpx"
	"github.com/baharkarakas/ledger-bot/internal/apperrors"
	"github.com/baharkarakas/ledger-bot/internal/auth"
	"github.com/baharkarakas/ledger-bot/internal/models"
	"github.com/baharkarakas/ledger-bot/internal/services"
)

type Authenticator interface {
	Login(ctx context.Context, email, password string) (auth.Pair, models.User, error)
	Refresh(ctx context.Context, refreshToken string) (auth.Pair, error)
}

type AuthHandler struct {
	users Authenticator
}

func NewAuthHandler(users Authenticator) *AuthHandler {
	return &AuthHandler{users: users}
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenResp struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"` // seconds
	User         *models.User `json:"user,omitempty"`
}

func newTokenResp(p auth.Pair) tokenResp {
	return tokenResp{
		AccessToken:  p.Access,
		RefreshToken: p.Refresh,
		ExpiresIn:    int64(time.Until(p.AccessExp).Truncate(time.Second).Seconds()),
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if !httpx.Decode(w, r, &req) {
		return
	}
	pair, u, err := h.users.Login(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", nil)
		return
	case err != nil:
		httpx.WriteAppError(w, err)
		return
	}
	resp := newTokenResp(pair)
	resp.User = &u
	httpx.WriteJSON(w, http.StatusOK, resp)
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshReq
	if !httpx.Decode(w, r, &req) {
		return
	}
	pair, err := h.users.Refresh(r.Context(), req.RefreshToken)
	switch {
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, apperrors.ErrNotFound):
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid refresh token", nil)
		return
	case err != nil:
		httpx.WriteAppError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newTokenResp(pair))
}
