// Package workflow drives the conversational transaction-entry state machine.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/baharkarakas/ledger-bot/internal/apperrors"
	"github.com/baharkarakas/ledger-bot/internal/models"
	"github.com/baharkarakas/ledger-bot/internal/money"
	"github.com/baharkarakas/ledger-bot/internal/recovery"
	repo "github.com/baharkarakas/ledger-bot/internal/repository"
	"github.com/baharkarakas/ledger-bot/internal/services"
)

type CategoryDirectory interface {
	ListActive(ctx context.Context, t models.TransactionType) ([]models.Category, error)
	Resolve(ctx context.Context, input string, t models.TransactionType) (*models.Category, error)
}

type Recovery interface {
	Submit(ctx context.Context, userID string, sess *models.Session) (services.SubmitResult, error)
	Retry(ctx context.Context, userID string) (recovery.RetryResult, error)
	Pending(ctx context.Context, userID string) (*models.PartialTransaction, error)
	Discard(ctx context.Context, userID string) error
}

type Engine struct {
	sessions   repo.SessionStore
	categories CategoryDirectory
	recovery   Recovery
	now        func() time.Time
}

func NewEngine(sessions repo.SessionStore, categories CategoryDirectory, rec Recovery) *Engine {
	return &Engine{sessions: sessions, categories: categories, recovery: rec, now: time.Now}
}

// Handle advances the user's workflow by one message. Callers serialize calls per user.
// Validation problems are answered with a re-prompt; only store failures are returned.
func (e *Engine) Handle(ctx context.Context, userID, text string) (Reply, error) {
	text = strings.TrimSpace(text)
	cmd := normalize(text)

	sess, err := e.sessions.Get(ctx, userID)
	if err != nil {
		return Reply{}, fmt.Errorf("load session: %w", err)
	}
	if cancelWords.has(cmd) {
		return e.cancel(ctx, userID, sess)
	}

	pending, err := e.recovery.Pending(ctx, userID)
	if err != nil {
		return Reply{}, fmt.Errorf("load snapshot: %w", err)
	}
	if pending != nil {
		switch {
		case retryWords.has(cmd):
			return e.retry(ctx, userID)
		case discardWords.has(cmd):
			if err := e.recovery.Discard(ctx, userID); err != nil {
				return Reply{}, err
			}
			return Reply{Text: "The unsaved transaction was discarded.", Options: mainOptions}, nil
		}
	}

	if sess != nil && sess.MenuState != models.StateMain {
		if err := sess.Validate(); err != nil {
			return e.integrityReset(ctx, userID, sess, err)
		}
		return e.step(ctx, userID, sess, text, cmd)
	}
	if pending != nil {
		return offerReply(pending), nil
	}
	return e.mainMenu(ctx, userID, sess, cmd)
}

func (e *Engine) step(ctx context.Context, userID string, sess *models.Session, text, cmd string) (Reply, error) {
	switch sess.MenuState {
	case models.StateTransactionType:
		return e.onType(ctx, userID, sess, cmd)
	case models.StateCategory:
		return e.onCategory(ctx, userID, sess, text)
	case models.StateAmount:
		return e.onAmount(ctx, userID, sess, text)
	case models.StateConfirm:
		if sess.IsEditing {
			return e.onEdit(ctx, userID, sess, text)
		}
		return e.onConfirm(ctx, userID, sess, cmd)
	}
	return e.integrityReset(ctx, userID, sess, fmt.Errorf("unhandled state %s", sess.MenuState))
}

func (e *Engine) mainMenu(ctx context.Context, userID string, sess *models.Session, cmd string) (Reply, error) {
	if sess == nil {
		sess = models.NewSession()
	}
	if t, ok := shortcutType(cmd); ok {
		sess.TransactionType = &t
		sess.MenuState = models.StateCategory
		return e.listCategories(ctx, userID, sess, "")
	}
	if newWords.has(cmd) {
		sess.MenuState = models.StateTransactionType
		if err := e.save(ctx, userID, sess); err != nil {
			return Reply{}, err
		}
		return typePrompt(), nil
	}
	if err := e.save(ctx, userID, sess); err != nil {
		return Reply{}, err
	}
	return mainMenu(), nil
}

func (e *Engine) onType(ctx context.Context, userID string, sess *models.Session, cmd string) (Reply, error) {
	t, ok := parseType(cmd)
	if !ok {
		return typePrompt(), nil
	}
	sess.TransactionType = &t
	sess.MenuState = models.StateCategory
	return e.listCategories(ctx, userID, sess, "")
}

func (e *Engine) listCategories(ctx context.Context, userID string, sess *models.Session, prefix string) (Reply, error) {
	list, err := e.categories.ListActive(ctx, *sess.TransactionType)
	if err != nil {
		return Reply{}, fmt.Errorf("list categories: %w", err)
	}
	if err := e.save(ctx, userID, sess); err != nil {
		return Reply{}, err
	}
	return categoryPrompt(prefix, list), nil
}

func (e *Engine) onCategory(ctx context.Context, userID string, sess *models.Session, text string) (Reply, error) {
	if sess.TransactionType == nil {
		return e.integrityReset(ctx, userID, sess, errors.New("category step without type"))
	}
	cat, err := e.categories.Resolve(ctx, text, *sess.TransactionType)
	if err != nil {
		return Reply{}, fmt.Errorf("resolve category: %w", err)
	}
	if cat == nil {
		slog.Debug("category not resolved", "user", userID, "input", text)
		return e.listCategories(ctx, userID, sess, fmt.Sprintf("%q does not match a single category.", text))
	}
	sess.Category = &cat.Name
	sess.MenuState = models.StateAmount
	if err := e.save(ctx, userID, sess); err != nil {
		return Reply{}, err
	}
	return amountPrompt(""), nil
}

func (e *Engine) onAmount(ctx context.Context, userID string, sess *models.Session, text string) (Reply, error) {
	if sess.TransactionType == nil || sess.Category == nil {
		return e.integrityReset(ctx, userID, sess, errors.New("amount step without type or category"))
	}
	amount, desc, err := splitAmount(text)
	if err != nil {
		slog.Debug("amount rejected", "user", userID, "input", text, "err", err)
		return amountPrompt(invalidAmount(err)), nil
	}
	sess.Amount = &amount
	sess.Description = desc
	sess.MenuState = models.StateConfirm
	if err := e.save(ctx, userID, sess); err != nil {
		return Reply{}, err
	}
	return summary("", sess), nil
}

func (e *Engine) onConfirm(ctx context.Context, userID string, sess *models.Session, cmd string) (Reply, error) {
	if field, ok := parseEdit(cmd); ok {
		if err := sess.BeginEdit(field); err != nil {
			return Reply{}, err
		}
		if err := e.save(ctx, userID, sess); err != nil {
			return Reply{}, err
		}
		return editPrompt(field), nil
	}
	if !confirmWords.has(cmd) {
		return summary("", sess), nil
	}

	res, err := e.recovery.Submit(ctx, userID, sess)
	switch {
	case err == nil:
		return savedReply(res.Analysis), nil
	case errors.Is(err, apperrors.ErrSessionIntegrity):
		slog.Error("session integrity", "user", userID, "err", err)
		return restartReply(), nil
	case errors.Is(err, apperrors.ErrTransient):
		return failedReply(), nil
	}
	return Reply{}, err
}

func (e *Engine) onEdit(ctx context.Context, userID string, sess *models.Session, text string) (Reply, error) {
	field := *sess.EditingField
	switch field {
	case models.EditAmount:
		if _, err := money.ValidateAmount(text); err != nil {
			return Reply{Text: invalidAmount(err) + "\n" + editPrompt(field).Text}, nil
		}
		sess.Amount = &text
	case models.EditCategory:
		if sess.TransactionType == nil {
			return e.integrityReset(ctx, userID, sess, errors.New("category edit without type"))
		}
		cat, err := e.categories.Resolve(ctx, text, *sess.TransactionType)
		if err != nil {
			return Reply{}, fmt.Errorf("resolve category: %w", err)
		}
		if cat == nil {
			list, err := e.categories.ListActive(ctx, *sess.TransactionType)
			if err != nil {
				return Reply{}, fmt.Errorf("list categories: %w", err)
			}
			return categoryPrompt(fmt.Sprintf("%q does not match a single category.", text), list), nil
		}
		sess.Category = &cat.Name
	case models.EditDescription:
		switch text {
		case "":
			return editPrompt(field), nil
		case "-":
			sess.Description = nil
		default:
			sess.Description = &text
		}
	}
	if err := sess.CommitEdit(); err != nil {
		return Reply{}, err
	}
	if err := e.save(ctx, userID, sess); err != nil {
		return Reply{}, err
	}
	return summary("Updated.", sess), nil
}

func (e *Engine) cancel(ctx context.Context, userID string, sess *models.Session) (Reply, error) {
	if sess != nil && sess.IsEditing {
		if err := sess.RollbackEdit(); err != nil {
			return Reply{}, err
		}
		if err := e.save(ctx, userID, sess); err != nil {
			return Reply{}, err
		}
		return summary("Edit cancelled.", sess), nil
	}
	if err := e.recovery.Discard(ctx, userID); err != nil {
		return Reply{}, fmt.Errorf("cancel: %w", err)
	}
	return Reply{Text: "Cancelled.", Options: mainOptions}, nil
}

func (e *Engine) retry(ctx context.Context, userID string) (Reply, error) {
	res, err := e.recovery.Retry(ctx, userID)
	if err != nil {
		return Reply{}, fmt.Errorf("retry: %w", err)
	}
	if res.Status == recovery.RetryAbandoned {
		slog.Info("recovery abandoned", "user", userID, "attempts", res.Attempt)
		return abandonedReply(res), nil
	}
	prefix := fmt.Sprintf("Restored your unsaved transaction (retry %d of %d).", res.Attempt, recovery.MaxRetries)
	return summary(prefix, res.Session), nil
}

func (e *Engine) integrityReset(ctx context.Context, userID string, sess *models.Session, cause error) (Reply, error) {
	slog.Error("session integrity", "user", userID, "state", sess.MenuState.String(),
		"err", fmt.Errorf("%w: %w", apperrors.ErrSessionIntegrity, cause))
	if err := e.sessions.Clear(ctx, userID); err != nil {
		return Reply{}, err
	}
	return restartReply(), nil
}

func (e *Engine) save(ctx context.Context, userID string, sess *models.Session) error {
	sess.UpdatedAt = e.now()
	if err := e.sessions.Set(ctx, userID, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// splitAmount takes the longest leading run of words that parses as an amount; the
// rest of the message is the description.
func splitAmount(text string) (string, *string, error) {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return "", nil, money.ErrNotNumeric
	}
	var firstErr error
	for n := len(tokens); n >= 1; n-- {
		amount := strings.Join(tokens[:n], " ")
		_, err := money.ValidateAmount(amount)
		if err != nil {
			if n == 1 {
				firstErr = err
			}
			continue
		}
		if n == len(tokens) {
			return amount, nil, nil
		}
		desc := strings.Join(tokens[n:], " ")
		return amount, &desc, nil
	}
	return "", nil, firstErr
}

func invalidAmount(err error) string {
	switch {
	case errors.Is(err, money.ErrNotPositive):
		return "The amount must be greater than zero."
	case errors.Is(err, money.ErrTooLarge):
		return "The amount is too large."
	}
	return "That is not a valid amount."
}
