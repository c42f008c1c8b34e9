package postgres

import (
	"errors"
	"fmt"

	"github.com/baharkarakas/ledger-bot/internal/apperrors"
	"github.com/jackc/pgx/v5"
)

// notFound maps pgx.ErrNoRows to apperrors.ErrNotFound and leaves other errors as they are.
func notFound(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, apperrors.ErrNotFound)
	}
	return err
}
