package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/baharkarakas/ledger-bot/internal/apperrors"
	"github.com/baharkarakas/ledger-bot/internal/metrics"
	"github.com/baharkarakas/ledger-bot/internal/models"
	"github.com/baharkarakas/ledger-bot/internal/notify"
	repo "github.com/baharkarakas/ledger-bot/internal/repository"
	"github.com/baharkarakas/ledger-bot/internal/scoring"
	"github.com/shopspring/decimal"
)

// Outcome of an approve/reject call. A lost race is an outcome, not an error.
type Outcome int

const (
	OutcomeApplied Outcome = iota
	OutcomeAlreadyProcessed
)

func (o Outcome) String() string {
	if o == OutcomeApplied {
		return "applied"
	}
	return "already_processed"
}

type SubmitRequest struct {
	UserID      string
	Type        models.TransactionType
	Category    string
	Amount      decimal.Decimal
	Description *string
}

type SubmitResult struct {
	Transaction models.Transaction
	Analysis    scoring.Analysis
}

type TransactionService struct {
	trx      repo.Transactions
	users    repo.Users
	log      repo.AuditLogs
	scorer   *scoring.Engine
	notifier notify.Notifier
	now      func() time.Time
}

func NewTransactionService(t repo.Transactions, u repo.Users, l repo.AuditLogs, scorer *scoring.Engine, n notify.Notifier) *TransactionService {
	return &TransactionService{trx: t, users: u, log: l, scorer: scorer, notifier: n, now: time.Now}
}

// WithClock overrides the time source used for submissions and decisions.
func (s *TransactionService) WithClock(now func() time.Time) *TransactionService {
	s.now = now
	return s
}

// ----------------- Helpers -----------------

func (s *TransactionService) audit(ctx context.Context, entityID, action, actor string, details map[string]any) {
	if err := s.log.Create(ctx, models.AuditLog{
		EntityType: "transaction",
		EntityID:   &entityID,
		Action:     action,
		Actor:      actor,
		Details:    details,
	}); err != nil {
		slog.Warn("audit write failed", "tx", entityID, "action", action, "err", err)
	}
}

func describe(tx models.Transaction) string {
	s := fmt.Sprintf("%s %s (%s)", tx.Type, tx.Amount.String(), tx.Category)
	if d := tx.DescriptionText(); d != "" {
		s += " - " + d
	}
	return s
}

// ----------------- Submission -----------------

func (s *TransactionService) Submit(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	if !req.Type.Valid() || strings.TrimSpace(req.Category) == "" || !req.Amount.IsPositive() {
		return SubmitResult{}, fmt.Errorf("submit: %w", apperrors.ErrValidation)
	}

	c := scoring.Candidate{
		UserID:   req.UserID,
		Type:     req.Type,
		Amount:   req.Amount,
		Category: req.Category,
		At:       s.now(),
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	analysis, err := s.scorer.Analyze(ctx, c)
	if err != nil {
		metrics.SubmissionsFailed.Inc()
		return SubmitResult{}, fmt.Errorf("score: %w", err)
	}

	tx, err := s.trx.Create(ctx, models.Transaction{
		UserID:         req.UserID,
		Type:           req.Type,
		Category:       req.Category,
		Amount:         req.Amount,
		Description:    req.Description,
		ApprovalStatus: analysis.Status,
		RiskScore:      analysis.ConfidenceScore,
		RiskFlags:      analysis.FlagNames(),
		CreatedAt:      c.At,
	})
	if err != nil {
		metrics.SubmissionsFailed.Inc()
		return SubmitResult{}, fmt.Errorf("create transaction: %w", err)
	}

	metrics.TransactionsSubmitted.WithLabelValues(string(tx.ApprovalStatus)).Inc()
	for _, f := range analysis.Triggered {
		metrics.RiskFlags.WithLabelValues(string(f)).Inc()
	}
	s.audit(ctx, tx.ID, "created", req.UserID, map[string]any{
		"status": tx.ApprovalStatus,
		"score":  analysis.ConfidenceScore,
		"flags":  tx.RiskFlags,
	})
	if analysis.RequiresManualApproval {
		s.notifyApprovers(ctx, tx)
	}
	return SubmitResult{Transaction: tx, Analysis: analysis}, nil
}

func (s *TransactionService) notifyApprovers(ctx context.Context, tx models.Transaction) {
	approvers, err := s.users.ListByRole(ctx, models.RoleApprover, models.RoleAdmin)
	if err != nil {
		slog.Warn("list approvers failed", "tx", tx.ID, "err", err)
		return
	}
	msg := fmt.Sprintf("Approval needed: %s from %s (score %d, flags: %s). Reply \"approve %s\" or \"reject %s <reason>\".",
		describe(tx), tx.UserID, tx.RiskScore, strings.Join(tx.RiskFlags, ", "), tx.ID, tx.ID)
	for _, a := range approvers {
		if a.ID == tx.UserID {
			continue
		}
		s.notifier.Notify(ctx, a.ID, msg)
	}
}

// ----------------- Approval transitions -----------------

func (s *TransactionService) Approve(ctx context.Context, txID, approverID string) (Outcome, models.Transaction, error) {
	return s.decide(ctx, txID, approverID, models.ApprovalApproved, nil)
}

func (s *TransactionService) Reject(ctx context.Context, txID, approverID string, reason *string) (Outcome, models.Transaction, error) {
	return s.decide(ctx, txID, approverID, models.ApprovalRejected, reason)
}

func (s *TransactionService) decide(ctx context.Context, txID, approverID string, next models.ApprovalStatus, reason *string) (Outcome, models.Transaction, error) {
	approver, err := s.users.GetByID(ctx, approverID)
	if err != nil {
		return 0, models.Transaction{}, fmt.Errorf("approver: %w", err)
	}
	if !approver.CanApprove() {
		return 0, models.Transaction{}, apperrors.ErrForbidden
	}

	current, err := s.trx.GetByID(ctx, txID)
	if err != nil {
		return 0, models.Transaction{}, err
	}
	if current.UserID == approverID {
		return 0, models.Transaction{}, fmt.Errorf("cannot decide own transaction: %w", apperrors.ErrForbidden)
	}
	if current.ApprovalStatus != models.ApprovalPending {
		metrics.ApprovalDecisions.WithLabelValues(string(next), OutcomeAlreadyProcessed.String()).Inc()
		return OutcomeAlreadyProcessed, current, nil
	}

	at := s.now()
	ok, err := s.trx.UpdateApprovalStatus(ctx, txID, models.ApprovalPending, next, approverID, reason, at)
	if err != nil {
		return 0, models.Transaction{}, fmt.Errorf("update approval status: %w", err)
	}
	if !ok {
		metrics.ApprovalDecisions.WithLabelValues(string(next), OutcomeAlreadyProcessed.String()).Inc()
		latest, err := s.trx.GetByID(ctx, txID)
		if errors.Is(err, apperrors.ErrNotFound) {
			return 0, models.Transaction{}, err
		}
		return OutcomeAlreadyProcessed, latest, nil
	}

	updated := current
	updated.ApprovalStatus = next
	updated.ApproverID = &approverID
	updated.ApprovedAt = &at
	updated.RejectionReason = reason

	metrics.ApprovalDecisions.WithLabelValues(string(next), OutcomeApplied.String()).Inc()
	details := map[string]any{"from": models.ApprovalPending, "to": next}
	if reason != nil {
		details["reason"] = *reason
	}
	s.audit(ctx, txID, "status_change", approverID, details)

	msg := fmt.Sprintf("Your %s was %s by %s.", describe(updated), next, approver.Name)
	if reason != nil && *reason != "" {
		msg += " Reason: " + *reason
	}
	s.notifier.Notify(ctx, updated.UserID, msg)
	return OutcomeApplied, updated, nil
}

// ----------------- Queries -----------------

func (s *TransactionService) GetByID(ctx context.Context, id string) (models.Transaction, error) {
	return s.trx.GetByID(ctx, id)
}

// DefaultListLimit applies when a caller asks for a non-positive page size.
const DefaultListLimit = 50

func pageSize(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}

func (s *TransactionService) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error) {
	if offset < 0 {
		offset = 0
	}
	return s.trx.ListByUser(ctx, userID, pageSize(limit), offset)
}

func (s *TransactionService) ListPending(ctx context.Context, limit int) ([]models.Transaction, error) {
	return s.trx.ListPending(ctx, pageSize(limit))
}

// Preview scores a candidate without persisting it.
func (s *TransactionService) Preview(ctx context.Context, c scoring.Candidate) (scoring.Analysis, error) {
	return s.scorer.Analyze(ctx, c)
}
