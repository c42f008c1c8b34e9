package postgres

import (
	"context"

	"github.com/baharkarakas/ledger-bot/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type categoriesRepo struct{ pool *pgxpool.Pool }

func (r *categoriesRepo) ListActive(ctx context.Context, t models.TransactionType) ([]models.Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, type, active, sort_order
		   FROM categories
		  WHERE type=$1 AND active
		  ORDER BY sort_order, name`,
		t,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.Active, &c.SortOrder); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *categoriesRepo) Create(ctx context.Context, c models.Category) (models.Category, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO categories(id, name, type, active, sort_order)
		 VALUES($1,$2,$3,$4,$5)
		 RETURNING id, name, type, active, sort_order`,
		c.ID, c.Name, c.Type, c.Active, c.SortOrder,
	).Scan(&c.ID, &c.Name, &c.Type, &c.Active, &c.SortOrder)
	return c, err
}
