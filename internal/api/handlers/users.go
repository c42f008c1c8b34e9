package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/ledger-bot/internal/api/httpx"
	"github.com/baharkarakas/ledger-bot/internal/middleware"
	"github.com/baharkarakas/ledger-bot/internal/models"
)

type UserAdmin interface {
	Register(ctx context.Context, chatID, name, email, password string, role models.Role) (models.User, error)
	Deactivate(ctx context.Context, id, actor string) error
}

type UserHandler struct {
	users UserAdmin
}

func NewUserHandler(users UserAdmin) *UserHandler { return &UserHandler{users: users} }

type createUserReq struct {
	ID       string `json:"id" validate:"required,max=64"`
	Name     string `json:"name" validate:"required,max=128"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=submitter approver admin"`
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserReq
	if !httpx.Decode(w, r, &req) {
		return
	}
	u, err := h.users.Register(r.Context(), req.ID, req.Name, req.Email, req.Password, models.Role(req.Role))
	if err != nil {
		httpx.WriteAppError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, u)
}

func (h *UserHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.UserID(r.Context())
	if err := h.users.Deactivate(r.Context(), chi.URLParam(r, "id"), actor); err != nil {
		httpx.WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
