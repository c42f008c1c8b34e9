package postgres

import (
	"context"
	"time"

	"github.com/baharkarakas/ledger-bot/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type transactionsRepo struct{ pool *pgxpool.Pool }

const txColumns = `id, user_id, type, category, amount, description, created_at,
  approval_status, approver_id, approved_at, rejection_reason, risk_score, risk_flags`

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var tx models.Transaction
	err := row.Scan(
		&tx.ID, &tx.UserID, &tx.Type, &tx.Category, &tx.Amount, &tx.Description, &tx.CreatedAt,
		&tx.ApprovalStatus, &tx.ApproverID, &tx.ApprovedAt, &tx.RejectionReason, &tx.RiskScore, &tx.RiskFlags,
	)
	return tx, err
}

func collectTransactions(rows pgx.Rows) ([]models.Transaction, error) {
	defer rows.Close()
	var out []models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (r *transactionsRepo) Create(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.RiskFlags == nil {
		tx.RiskFlags = []string{}
	}
	var createdAt *time.Time
	if !tx.CreatedAt.IsZero() {
		createdAt = &tx.CreatedAt
	}
	q := `
INSERT INTO transactions (
  id, user_id, type, category, amount, description, approval_status, risk_score, risk_flags, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9, COALESCE($10, now()))
RETURNING ` + txColumns
	return scanTransaction(r.pool.QueryRow(ctx, q,
		tx.ID, tx.UserID, tx.Type, tx.Category, tx.Amount, tx.Description,
		tx.ApprovalStatus, tx.RiskScore, tx.RiskFlags, createdAt,
	))
}

func (r *transactionsRepo) GetByID(ctx context.Context, id string) (models.Transaction, error) {
	tx, err := scanTransaction(r.pool.QueryRow(ctx,
		`SELECT `+txColumns+` FROM transactions WHERE id=$1`, id))
	return tx, notFound(err, "transaction "+id)
}

// limitArg maps a non-positive limit to NULL, which Postgres reads as LIMIT ALL.
func limitArg(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}

func (r *transactionsRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+txColumns+`
		   FROM transactions
		  WHERE user_id=$1
		  ORDER BY created_at DESC
		  LIMIT $2 OFFSET $3`,
		userID, limitArg(limit), offset,
	)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

func (r *transactionsRepo) ListPending(ctx context.Context, limit int) ([]models.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+txColumns+`
		   FROM transactions
		  WHERE approval_status='pending'
		  ORDER BY created_at ASC
		  LIMIT $1`,
		limitArg(limit),
	)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

func (r *transactionsRepo) FindRecentByUser(ctx context.Context, userID string, since time.Time) ([]models.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+txColumns+`
		   FROM transactions
		  WHERE user_id=$1 AND created_at >= $2
		  ORDER BY created_at DESC`,
		userID, since,
	)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

func (r *transactionsRepo) CountRecentByUser(ctx context.Context, userID string, since time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM transactions WHERE user_id=$1 AND created_at >= $2`,
		userID, since,
	).Scan(&n)
	return n, err
}

// UpdateApprovalStatus is a single conditional UPDATE; concurrent callers racing on
// the same row see exactly one affected row between them.
func (r *transactionsRepo) UpdateApprovalStatus(ctx context.Context, id string, expected, next models.ApprovalStatus, approverID string, reason *string, at time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE transactions
		    SET approval_status=$3,
		        approver_id=$4,
		        approved_at=$5,
		        rejection_reason=$6
		  WHERE id=$1 AND approval_status=$2`,
		id, expected, next, approverID, at, reason,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
