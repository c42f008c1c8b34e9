package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
		err  error
	}{
		{"50000", "50000", nil},
		{"50,000", "50000", nil},
		{"50.000", "50000", nil},
		{"1.500.000", "1500000", nil},
		{"1,234,567.89", "1234567.89", nil},
		{"1.234.567,89", "1234567.89", nil},
		{"1 500 000", "1500000", nil},
		{"1_000", "1000", nil},
		{"Rp 25.000", "25000", nil},
		{"rp.25000", "25000", nil},
		{"12.5", "12.5", nil},
		{"12,5", "12.5", nil},
		{"  75000 ", "75000", nil},
		{"0.500", "0.5", nil},
		{"0,250", "0.25", nil},
		{"0.001", "0.001", nil},
		{"00.100", "0.1", nil},
		{"0 500", "", ErrNotNumeric},
		{"1,000.123456", "1000.123456", nil},
		{"1000000000", "1000000000", nil},
		{"1000000001", "", ErrTooLarge},
		{"0", "", ErrNotPositive},
		{"0.00", "", ErrNotPositive},
		{"-5000", "", ErrNotPositive},
		{"abc", "", ErrNotNumeric},
		{"", "", ErrNotNumeric},
		{"12,34,5", "", ErrNotNumeric},
		{"5e3", "", ErrNotNumeric},
		{"50k", "", ErrNotNumeric},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ValidateAmount(tt.in)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "50,000", FormatAmount(decimal.NewFromInt(50000)))
	assert.Equal(t, "999", FormatAmount(decimal.NewFromInt(999)))
	assert.Equal(t, "1,000,000,000", FormatAmount(decimal.NewFromInt(1_000_000_000)))
	assert.Equal(t, "1,234,567.89", FormatAmount(decimal.RequireFromString("1234567.89")))
}

func TestFormatThenValidateRoundTrips(t *testing.T) {
	values := []string{
		"1", "7", "12.5", "999", "1000", "1.234", "12.345", "999.999", "1234.567",
		"50000", "51000", "99999.99", "9999999", "10000000", "123456789.01", "1000000000",
		"0.01", "0.5",
	}
	for _, v := range values {
		t.Run(v, func(t *testing.T) {
			d := decimal.RequireFromString(v)
			got, err := ValidateAmount(FormatAmount(d))
			require.NoError(t, err, "formatted as %q", FormatAmount(d))
			assert.True(t, d.Equal(got), "formatted %q parsed as %s", FormatAmount(d), got)
		})
	}
}
