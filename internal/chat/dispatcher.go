// Package chat routes inbound gateway messages to the approver commands or the
// transaction-entry workflow.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/baharkarakas/ledger-bot/internal/apperrors"
	"github.com/baharkarakas/ledger-bot/internal/metrics"
	"github.com/baharkarakas/ledger-bot/internal/models"
	"github.com/baharkarakas/ledger-bot/internal/money"
	"github.com/baharkarakas/ledger-bot/internal/services"
	"github.com/baharkarakas/ledger-bot/internal/session"
	"github.com/baharkarakas/ledger-bot/internal/workflow"
)

type Message struct {
	From string `json:"from" validate:"required,max=64"`
	Name string `json:"name" validate:"max=128"`
	Text string `json:"text" validate:"required,max=1000"`
}

type Users interface {
	EnsureChatUser(ctx context.Context, chatID, name string) (models.User, error)
}

type Approvals interface {
	Approve(ctx context.Context, txID, approverID string) (services.Outcome, models.Transaction, error)
	Reject(ctx context.Context, txID, approverID string, reason *string) (services.Outcome, models.Transaction, error)
	ListPending(ctx context.Context, limit int) ([]models.Transaction, error)
}

type Workflow interface {
	Handle(ctx context.Context, userID, text string) (workflow.Reply, error)
}

const pendingListLimit = 10

type Dispatcher struct {
	locker    *session.Locker
	users     Users
	approvals Approvals
	workflow  Workflow
}

func NewDispatcher(l *session.Locker, u Users, a Approvals, w Workflow) *Dispatcher {
	return &Dispatcher{locker: l, users: u, approvals: a, workflow: w}
}

// Handle processes one message. Messages from the same sender are handled one at a time.
// Inactive users get an empty reply.
func (d *Dispatcher) Handle(ctx context.Context, m Message) (workflow.Reply, error) {
	unlock := d.locker.Lock(m.From)
	defer unlock()

	u, err := d.users.EnsureChatUser(ctx, m.From, m.Name)
	if err != nil {
		metrics.MessagesTotal.WithLabelValues("error").Inc()
		return workflow.Reply{}, fmt.Errorf("ensure user: %w", err)
	}
	if !u.Active {
		metrics.MessagesTotal.WithLabelValues("ignored").Inc()
		slog.Debug("message from inactive user dropped", "user", u.ID)
		return workflow.Reply{}, nil
	}

	if u.CanApprove() {
		if reply, ok, err := d.approverCommand(ctx, u, m.Text); ok {
			outcome := "approval"
			if err != nil {
				outcome = "error"
			}
			metrics.MessagesTotal.WithLabelValues(outcome).Inc()
			return reply, err
		}
	}

	reply, err := d.workflow.Handle(ctx, u.ID, m.Text)
	if err != nil {
		metrics.MessagesTotal.WithLabelValues("error").Inc()
		return workflow.Reply{}, err
	}
	metrics.MessagesTotal.WithLabelValues("workflow").Inc()
	return reply, nil
}

// approverCommand handles "approve <id>", "reject <id> [reason]" and "pending".
// ok is false when text is not one of those commands.
func (d *Dispatcher) approverCommand(ctx context.Context, u models.User, text string) (workflow.Reply, bool, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return workflow.Reply{}, false, nil
	}
	verb := strings.ToLower(fields[0])

	switch {
	case verb == "pending" && len(fields) == 1:
		r, err := d.listPending(ctx)
		return r, true, err
	case verb == "approve" && len(fields) == 2:
		outcome, tx, err := d.approvals.Approve(ctx, fields[1], u.ID)
		r, err := decisionReply(fields[1], outcome, tx, err)
		return r, true, err
	case verb == "reject" && len(fields) >= 2:
		var reason *string
		if len(fields) > 2 {
			r := strings.Join(fields[2:], " ")
			reason = &r
		}
		outcome, tx, err := d.approvals.Reject(ctx, fields[1], u.ID, reason)
		r, err := decisionReply(fields[1], outcome, tx, err)
		return r, true, err
	}
	return workflow.Reply{}, false, nil
}

func decisionReply(id string, outcome services.Outcome, tx models.Transaction, err error) (workflow.Reply, error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return workflow.Reply{Text: fmt.Sprintf("Transaction %s was not found.", id)}, nil
	case errors.Is(err, apperrors.ErrForbidden):
		return workflow.Reply{Text: fmt.Sprintf("You cannot decide transaction %s.", id)}, nil
	case err != nil:
		return workflow.Reply{}, err
	}
	if outcome == services.OutcomeAlreadyProcessed {
		return workflow.Reply{Text: fmt.Sprintf("Transaction %s was already %s.", id, tx.ApprovalStatus)}, nil
	}
	return workflow.Reply{Text: fmt.Sprintf("Transaction %s %s.", id, tx.ApprovalStatus)}, nil
}

func (d *Dispatcher) listPending(ctx context.Context) (workflow.Reply, error) {
	txs, err := d.approvals.ListPending(ctx, pendingListLimit)
	if err != nil {
		return workflow.Reply{}, fmt.Errorf("list pending: %w", err)
	}
	if len(txs) == 0 {
		return workflow.Reply{Text: "No transactions are waiting for approval."}, nil
	}
	var b strings.Builder
	b.WriteString("Waiting for approval:")
	for _, tx := range txs {
		fmt.Fprintf(&b, "\n%s  %s %s %s by %s (score %d)",
			tx.ID, tx.Type, tx.Category, money.FormatAmount(tx.Amount), tx.UserID, tx.RiskScore)
	}
	return workflow.Reply{Text: b.String()}, nil
}
