// Package money parses and formats user-entered amounts as exact decimals.
package money

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrNotNumeric  = errors.New("amount is not a number")
	ErrNotPositive = errors.New("amount must be greater than zero")
	ErrTooLarge    = errors.New("amount exceeds the maximum")
)

// MaxAmount is the sanity ceiling for free-text input.
var MaxAmount = decimal.NewFromInt(1_000_000_000)

// A leading zero group is never a thousands group, so 0.500 stays a fraction.
var (
	// 1,234,567 or 1,234,567.89
	commaGrouped = regexp.MustCompile(`^[1-9]\d{0,2}(,\d{3})+(\.\d+)?$`)
	// 1.234.567 or 1.234.567,89
	dotGrouped = regexp.MustCompile(`^[1-9]\d{0,2}(\.\d{3})+(,\d+)?$`)
	// 1 234 567 / 1_234_567
	spaceGrouped = regexp.MustCompile(`^[1-9]\d{0,2}([ _]\d{3})+([.,]\d+)?$`)
	plain        = regexp.MustCompile(`^\d+([.,]\d+)?$`)
	currency     = regexp.MustCompile(`(?i)^(rp\.?|idr|\$)\s*`)
)

// ValidateAmount accepts a positive decimal, with optional thousands separators and
// currency prefix, not greater than MaxAmount.
func ValidateAmount(input string) (decimal.Decimal, error) {
	s := strings.TrimSpace(input)
	s = currency.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrNotPositive
	}

	var normalized string
	switch {
	case commaGrouped.MatchString(s):
		normalized = strings.ReplaceAll(s, ",", "")
	case dotGrouped.MatchString(s):
		normalized = strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")
	case spaceGrouped.MatchString(s):
		normalized = strings.NewReplacer(" ", "", "_", "", ",", ".").Replace(s)
	case plain.MatchString(s):
		normalized = strings.ReplaceAll(s, ",", ".")
	default:
		return decimal.Zero, ErrNotNumeric
	}

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, ErrNotNumeric
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrNotPositive
	}
	if d.GreaterThan(MaxAmount) {
		return decimal.Zero, ErrTooLarge
	}
	return d, nil
}

// FormatAmount renders d with comma thousands separators, keeping every
// significant fractional digit so ValidateAmount(FormatAmount(d)) equals d.
func FormatAmount(d decimal.Decimal) string {
	s := d.String()
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String()
	if len(frac) == 3 && len(intPart) <= 3 {
		// "1.234" would read back as dot-grouped thousands
		frac += "0"
	}
	if frac != "" {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}
