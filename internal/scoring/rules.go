// Package scoring classifies transaction candidates as auto-approved or pending
// manual review from independent, additive risk rules.
package scoring

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/baharkarakas/ledger-bot/internal/models"
	"github.com/shopspring/decimal"
)

type Flag string

const (
	FlagDuplicate         Flag = "duplicate"
	FlagUnrealisticAmount Flag = "unrealistic_amount"
	FlagDailyCount        Flag = "exceeds_daily_limit"
	FlagDailyAmount       Flag = "exceeds_daily_amount_limit"
	FlagRapidSuccession   Flag = "rapid_successive_transactions"
	FlagSuspiciousWords   Flag = "suspicious_keywords"
	FlagLacksDescription  Flag = "lacks_description"
)

// Candidate is a transaction that has not been persisted yet.
type Candidate struct {
	UserID      string
	Type        models.TransactionType
	Amount      decimal.Decimal
	Category    string
	Description string
	At          time.Time
}

// History is the point-in-time view of the submitter's earlier transactions.
// Transactions covers at least the start of the candidate's day and the duplicate window.
type History struct {
	Transactions []models.Transaction
	RecentCount  int
	DayStart     time.Time
}

type Rule struct {
	Flag   Flag
	Weight int
	Match  func(c Candidate, h History, t Thresholds) bool
}

func DefaultRules() []Rule {
	return []Rule{
		{Flag: FlagDuplicate, Weight: 30, Match: isDuplicate},
		{Flag: FlagUnrealisticAmount, Weight: 40, Match: isUnrealistic},
		{Flag: FlagDailyCount, Weight: 20, Match: exceedsDailyCount},
		{Flag: FlagDailyAmount, Weight: 25, Match: exceedsDailyAmount},
		{Flag: FlagRapidSuccession, Weight: 15, Match: isRapid},
		{Flag: FlagSuspiciousWords, Weight: 10, Match: hasSuspiciousWords},
		{Flag: FlagLacksDescription, Weight: 5, Match: lacksDescription},
	}
}

// isDuplicate: same category, amount within the tolerance band of the candidate,
// created within the duplicate window on either side of the candidate time.
func isDuplicate(c Candidate, h History, t Thresholds) bool {
	band := c.Amount.Mul(t.DuplicateTolerance).Abs()
	for _, tx := range h.Transactions {
		if !strings.EqualFold(strings.TrimSpace(tx.Category), strings.TrimSpace(c.Category)) {
			continue
		}
		gap := c.At.Sub(tx.CreatedAt)
		if gap < 0 {
			gap = -gap
		}
		if gap > t.DuplicateWindow {
			continue
		}
		if tx.Amount.Sub(c.Amount).Abs().LessThanOrEqual(band) {
			return true
		}
	}
	return false
}

func isUnrealistic(c Candidate, _ History, t Thresholds) bool {
	return c.Amount.GreaterThan(t.UnrealisticAmount)
}

func exceedsDailyCount(_ Candidate, h History, t Thresholds) bool {
	n, _ := sameDay(h)
	return n > t.DailyCountLimit
}

func exceedsDailyAmount(_ Candidate, h History, t Thresholds) bool {
	_, total := sameDay(h)
	return total.GreaterThan(t.DailyAmountLimit)
}

func isRapid(_ Candidate, h History, t Thresholds) bool {
	return h.RecentCount >= t.RapidCount
}

func hasSuspiciousWords(c Candidate, _ History, t Thresholds) bool {
	if len(t.Keywords) == 0 {
		return false
	}
	deny := make(map[string]struct{}, len(t.Keywords))
	for _, k := range t.Keywords {
		deny[strings.ToLower(k)] = struct{}{}
	}
	words := strings.FieldsFunc(strings.ToLower(c.Description), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if _, ok := deny[w]; ok {
			return true
		}
	}
	return false
}

func lacksDescription(c Candidate, _ History, t Thresholds) bool {
	return utf8.RuneCountInString(strings.TrimSpace(c.Description)) < t.MinDescriptionLength
}

func sameDay(h History) (int, decimal.Decimal) {
	n := 0
	total := decimal.Zero
	for _, tx := range h.Transactions {
		if tx.CreatedAt.Before(h.DayStart) {
			continue
		}
		n++
		total = total.Add(tx.Amount)
	}
	return n, total
}
