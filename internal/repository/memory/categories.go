package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/baharkarakas/ledger-bot/internal/models"
	"github.com/google/uuid"
)

type Categories struct {
	mu   sync.RWMutex
	rows []models.Category
}

func NewCategories(seed ...models.Category) *Categories {
	c := &Categories{}
	for _, cat := range seed {
		_, _ = c.Create(context.Background(), cat)
	}
	return c
}

// DefaultCategories mirrors the seed migration.
func DefaultCategories() []models.Category {
	return []models.Category{
		{Name: "Product Sales", Type: models.TxnIncome, Active: true, SortOrder: 1},
		{Name: "Services", Type: models.TxnIncome, Active: true, SortOrder: 2},
		{Name: "Other Income", Type: models.TxnIncome, Active: true, SortOrder: 3},
		{Name: "Food", Type: models.TxnExpense, Active: true, SortOrder: 1},
		{Name: "Transport", Type: models.TxnExpense, Active: true, SortOrder: 2},
		{Name: "Office Supplies", Type: models.TxnExpense, Active: true, SortOrder: 3},
		{Name: "Utilities", Type: models.TxnExpense, Active: true, SortOrder: 4},
		{Name: "Salaries", Type: models.TxnExpense, Active: true, SortOrder: 5},
		{Name: "Other Expense", Type: models.TxnExpense, Active: true, SortOrder: 6},
	}
}

func (c *Categories) ListActive(ctx context.Context, t models.TransactionType) ([]models.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []models.Category
	for _, cat := range c.rows {
		if cat.Type == t && cat.Active {
			out = append(out, cat)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (c *Categories) Create(ctx context.Context, cat models.Category) (models.Category, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cat.ID == "" {
		cat.ID = uuid.NewString()
	}
	c.rows = append(c.rows, cat)
	return cat, nil
}
