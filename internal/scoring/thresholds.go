package scoring

import (
	"time"

	"github.com/shopspring/decimal"
)

type Thresholds struct {
	DuplicateWindow      time.Duration
	DuplicateTolerance   decimal.Decimal // fraction of the candidate amount
	UnrealisticAmount    decimal.Decimal
	DailyCountLimit      int
	DailyAmountLimit     decimal.Decimal
	RapidWindow          time.Duration
	RapidCount           int
	MinDescriptionLength int
	AutoApproveCeiling   decimal.Decimal
	Keywords             []string
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		DuplicateWindow:      10 * time.Minute,
		DuplicateTolerance:   decimal.RequireFromString("0.05"),
		UnrealisticAmount:    decimal.NewFromInt(100_000_000),
		DailyCountLimit:      50,
		DailyAmountLimit:     decimal.NewFromInt(50_000_000),
		RapidWindow:          5 * time.Minute,
		RapidCount:           3,
		MinDescriptionLength: 3,
		AutoApproveCeiling:   decimal.NewFromInt(10_000_000),
		Keywords:             []string{"test", "testing", "dummy", "coba", "percobaan", "asdf", "sample", "fake"},
	}
}
