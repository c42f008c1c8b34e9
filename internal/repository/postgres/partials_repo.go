package postgres

import (
	"context"
	"errors"

	"github.com/baharkarakas/ledger-bot/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type partialsRepo struct{ pool *pgxpool.Pool }

func (r *partialsRepo) Save(ctx context.Context, p models.PartialTransaction) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO partial_transactions(user_id, type, category, amount, description, retry_count, created_at)
		 VALUES($1,$2,$3,$4,$5,$6,now())
		 ON CONFLICT (user_id) DO UPDATE
		 SET type=EXCLUDED.type,
		     category=EXCLUDED.category,
		     amount=EXCLUDED.amount,
		     description=EXCLUDED.description,
		     retry_count=EXCLUDED.retry_count`,
		p.UserID, p.Type, p.Category, p.Amount, p.Description, p.RetryCount,
	)
	return err
}

func (r *partialsRepo) Load(ctx context.Context, userID string) (*models.PartialTransaction, error) {
	var p models.PartialTransaction
	err := r.pool.QueryRow(ctx,
		`SELECT user_id, type, category, amount, description, retry_count, created_at
		   FROM partial_transactions
		  WHERE user_id=$1`,
		userID,
	).Scan(&p.UserID, &p.Type, &p.Category, &p.Amount, &p.Description, &p.RetryCount, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *partialsRepo) Clear(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM partial_transactions WHERE user_id=$1`, userID)
	return err
}
