package catalog

import (
	"context"
	"testing"

	"github.com/baharkarakas/ledger-bot/internal/models"
	"github.com/baharkarakas/ledger-bot/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expenseList() []models.Category {
	return []models.Category{
		{Name: "Food", Type: models.TxnExpense},
		{Name: "Transport", Type: models.TxnExpense},
		{Name: "Office Supplies", Type: models.TxnExpense},
		{Name: "Other Expense", Type: models.TxnExpense},
	}
}

func TestMatch(t *testing.T) {
	list := expenseList()
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"ordinal", "2", "Transport"},
		{"ordinal with dot", "1.", "Food"},
		{"exact case-insensitive", "FOOD", "Food"},
		{"unique substring", "supp", "Office Supplies"},
		{"trimmed", "  transport ", "Transport"},
		{"ordinal out of range", "9", ""},
		{"zero ordinal", "0", ""},
		{"ambiguous substring", "o", ""},
		{"no match", "rent", ""},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Match(list, tt.input)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}

func TestDirectory_ResolveUsesTypeScopedActiveList(t *testing.T) {
	cats := memory.NewCategories(memory.DefaultCategories()...)
	_, _ = cats.Create(context.Background(), models.Category{Name: "Fuel", Type: models.TxnExpense, Active: false, SortOrder: 9})
	d := NewDirectory(cats)

	got, err := d.Resolve(context.Background(), "services", models.TxnExpense)
	require.NoError(t, err)
	assert.Nil(t, got, "income category must not resolve for expense")

	got, err = d.Resolve(context.Background(), "fuel", models.TxnExpense)
	require.NoError(t, err)
	assert.Nil(t, got, "inactive category must not resolve")

	got, err = d.Resolve(context.Background(), "1", models.TxnIncome)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Product Sales", got.Name)
}
