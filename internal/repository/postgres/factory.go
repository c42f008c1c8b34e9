package postgres

import (
	repo "github.com/baharkarakas/ledger-bot/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositories(pool *pgxpool.Pool) repo.Repositories {
	return repo.Repositories{
		Users:        &usersRepo{pool},
		Categories:   &categoriesRepo{pool},
		Transactions: &transactionsRepo{pool},
		Partials:     &partialsRepo{pool},
		AuditLogs:    &auditLogsRepo{pool},
	}
}
