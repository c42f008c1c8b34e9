package memory

import repo "github.com/baharkarakas/ledger-bot/internal/repository"

// NewRepositories returns empty in-process stores with the default categories seeded.
func NewRepositories() repo.Repositories {
	return repo.Repositories{
		Users:        NewUsers(),
		Categories:   NewCategories(DefaultCategories()...),
		Transactions: NewTransactions(),
		Partials:     NewPartials(),
		AuditLogs:    NewAuditLogs(),
	}
}
