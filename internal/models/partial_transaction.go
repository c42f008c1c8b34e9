package models

import "time"

// PartialTransaction is the recovery snapshot written before a submission is persisted.
type PartialTransaction struct {
	UserID      string          `json:"user_id"`
	Type        TransactionType `json:"type"`
	Category    string          `json:"category"`
	Amount      string          `json:"amount"`
	Description *string         `json:"description,omitempty"`
	RetryCount  int             `json:"retry_count"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (p PartialTransaction) Fields() Fields {
	t := p.Type
	cat := p.Category
	amt := p.Amount
	return Fields{Type: &t, Category: &cat, Amount: &amt, Description: clonePtr(p.Description)}
}
