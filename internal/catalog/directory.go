// Package catalog resolves free-text category selections against the active category list.
package catalog

import (
	"context"
	"strconv"
	"strings"

	"github.com/baharkarakas/ledger-bot/internal/models"
	repo "github.com/baharkarakas/ledger-bot/internal/repository"
)

type Directory struct {
	r repo.Categories
}

func NewDirectory(r repo.Categories) *Directory { return &Directory{r: r} }

func (d *Directory) ListActive(ctx context.Context, t models.TransactionType) ([]models.Category, error) {
	return d.r.ListActive(ctx, t)
}

// Resolve returns nil when input matches no category or more than one.
func (d *Directory) Resolve(ctx context.Context, input string, t models.TransactionType) (*models.Category, error) {
	list, err := d.r.ListActive(ctx, t)
	if err != nil {
		return nil, err
	}
	return Match(list, input), nil
}

// Match selects from list by 1-based ordinal, case-insensitive exact name, or a
// substring that identifies exactly one category.
func Match(list []models.Category, input string) *models.Category {
	in := strings.ToLower(strings.TrimSpace(input))
	if in == "" {
		return nil
	}
	if n, err := strconv.Atoi(strings.TrimSuffix(in, ".")); err == nil {
		if n >= 1 && n <= len(list) {
			c := list[n-1]
			return &c
		}
		return nil
	}

	var hits []models.Category
	for _, c := range list {
		name := strings.ToLower(c.Name)
		if name == in {
			c := c
			return &c
		}
		if strings.Contains(name, in) {
			hits = append(hits, c)
		}
	}
	if len(hits) != 1 {
		return nil
	}
	return &hits[0]
}
