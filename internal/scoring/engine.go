package scoring

import (
	"context"
	"fmt"
	"time"

	"github.com/baharkarakas/ledger-bot/internal/models"
	repo "github.com/baharkarakas/ledger-bot/internal/repository"
)

type Analysis struct {
	IsDuplicate                 bool                  `json:"is_duplicate"`
	IsUnrealisticAmount         bool                  `json:"is_unrealistic_amount"`
	ExceedsDailyLimit           bool                  `json:"exceeds_daily_limit"`
	ExceedsDailyAmountLimit     bool                  `json:"exceeds_daily_amount_limit"`
	RapidSuccessiveTransactions bool                  `json:"rapid_successive_transactions"`
	HasSuspiciousKeywords       bool                  `json:"has_suspicious_keywords"`
	LacksDescription            bool                  `json:"lacks_description"`
	ConfidenceScore             int                   `json:"confidence_score"`
	Status                      models.ApprovalStatus `json:"status"`
	RequiresManualApproval      bool                  `json:"requires_manual_approval"`
	Triggered                   []Flag                `json:"triggered,omitempty"`
}

// FlagNames returns the triggered flags as strings, in rule order.
func (a Analysis) FlagNames() []string {
	out := make([]string, 0, len(a.Triggered))
	for _, f := range a.Triggered {
		out = append(out, string(f))
	}
	return out
}

// Evaluate runs every rule over the candidate and history and sums the weights of
// those that match. It has no side effects.
func Evaluate(c Candidate, h History, t Thresholds, rules []Rule) Analysis {
	var a Analysis
	for _, r := range rules {
		if !r.Match(c, h, t) {
			continue
		}
		a.ConfidenceScore += r.Weight
		a.Triggered = append(a.Triggered, r.Flag)
		switch r.Flag {
		case FlagDuplicate:
			a.IsDuplicate = true
		case FlagUnrealisticAmount:
			a.IsUnrealisticAmount = true
		case FlagDailyCount:
			a.ExceedsDailyLimit = true
		case FlagDailyAmount:
			a.ExceedsDailyAmountLimit = true
		case FlagRapidSuccession:
			a.RapidSuccessiveTransactions = true
		case FlagSuspiciousWords:
			a.HasSuspiciousKeywords = true
		case FlagLacksDescription:
			a.LacksDescription = true
		}
	}

	// score gate and amount gate are independent
	if a.ConfidenceScore == 0 && c.Amount.LessThan(t.AutoApproveCeiling) {
		a.Status = models.ApprovalApproved
	} else {
		a.Status = models.ApprovalPending
		a.RequiresManualApproval = true
	}
	return a
}

type Engine struct {
	history repo.TransactionHistory
	t       Thresholds
	rules   []Rule
	now     func() time.Time
	loc     *time.Location
}

func NewEngine(h repo.TransactionHistory, t Thresholds) *Engine {
	return &Engine{history: h, t: t, rules: DefaultRules(), now: time.Now, loc: time.Local}
}

// WithClock overrides the time source and the location used for day boundaries.
func (e *Engine) WithClock(now func() time.Time, loc *time.Location) *Engine {
	e.now = now
	if loc != nil {
		e.loc = loc
	}
	return e
}

func (e *Engine) Thresholds() Thresholds { return e.t }

// History loads the submitter's recent transactions. Empty results are valid.
func (e *Engine) History(ctx context.Context, c Candidate) (History, error) {
	at := c.At.In(e.loc)
	dayStart := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, e.loc)
	since := dayStart
	if d := c.At.Add(-e.t.DuplicateWindow); d.Before(since) {
		since = d
	}

	txs, err := e.history.FindRecentByUser(ctx, c.UserID, since)
	if err != nil {
		return History{}, fmt.Errorf("load history: %w", err)
	}
	recent, err := e.history.CountRecentByUser(ctx, c.UserID, c.At.Add(-e.t.RapidWindow))
	if err != nil {
		return History{}, fmt.Errorf("count recent: %w", err)
	}
	return History{Transactions: txs, RecentCount: recent, DayStart: dayStart}, nil
}

func (e *Engine) Analyze(ctx context.Context, c Candidate) (Analysis, error) {
	if c.At.IsZero() {
		c.At = e.now()
	}
	h, err := e.History(ctx, c)
	if err != nil {
		return Analysis{}, err
	}
	return Evaluate(c, h, e.t, e.rules), nil
}
