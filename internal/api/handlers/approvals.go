package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/ledger-bot/internal/api/httpx"
	"github.com/baharkarakas/ledger-bot/internal/middleware"
	"github.com/baharkarakas/ledger-bot/internal/models"
	"github.com/baharkarakas/ledger-bot/internal/services"
)

type Approvals interface {
	Approve(ctx context.Context, txID, approverID string) (services.Outcome, models.Transaction, error)
	Reject(ctx context.Context, txID, approverID string, reason *string) (services.Outcome, models.Transaction, error)
	GetByID(ctx context.Context, id string) (models.Transaction, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error)
	ListPending(ctx context.Context, limit int) ([]models.Transaction, error)
}

type ApprovalHandler struct {
	svc Approvals
}

func NewApprovalHandler(svc Approvals) *ApprovalHandler { return &ApprovalHandler{svc: svc} }

type decisionResp struct {
	Outcome     string             `json:"outcome"`
	Transaction models.Transaction `json:"transaction"`
}

type rejectReq struct {
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

func (h *ApprovalHandler) Pending(w http.ResponseWriter, r *http.Request) {
	txs, err := h.svc.ListPending(r.Context(), queryInt(r, "limit", 50))
	if err != nil {
		httpx.WriteAppError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, nonNil(txs))
}

func (h *ApprovalHandler) Approve(w http.ResponseWriter, r *http.Request) {
	approver, _ := middleware.UserID(r.Context())
	outcome, tx, err := h.svc.Approve(r.Context(), chi.URLParam(r, "id"), approver)
	h.writeDecision(w, outcome, tx, err)
}

func (h *ApprovalHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var req rejectReq
	if r.ContentLength != 0 && !httpx.Decode(w, r, &req) {
		return
	}
	approver, _ := middleware.UserID(r.Context())
	outcome, tx, err := h.svc.Reject(r.Context(), chi.URLParam(r, "id"), approver, req.Reason)
	h.writeDecision(w, outcome, tx, err)
}

func (h *ApprovalHandler) writeDecision(w http.ResponseWriter, outcome services.Outcome, tx models.Transaction, err error) {
	if err != nil {
		httpx.WriteAppError(w, err)
		return
	}
	if outcome == services.OutcomeAlreadyProcessed {
		httpx.WriteError(w, http.StatusConflict, outcome.String(), "transaction was already "+string(tx.ApprovalStatus), tx)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, decisionResp{Outcome: outcome.String(), Transaction: tx})
}

func (h *ApprovalHandler) Get(w http.ResponseWriter, r *http.Request) {
	tx, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteAppError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tx)
}

func (h *ApprovalHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	uid := r.URL.Query().Get("user_id")
	if uid == "" {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "user_id required", nil)
		return
	}
	txs, err := h.svc.ListByUser(r.Context(), uid, queryInt(r, "limit", 50), queryInt(r, "offset", 0))
	if err != nil {
		httpx.WriteAppError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, nonNil(txs))
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func nonNil(txs []models.Transaction) []models.Transaction {
	if txs == nil {
		return []models.Transaction{}
	}
	return txs
}
