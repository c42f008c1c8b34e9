package models

type Category struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Type      TransactionType `json:"type"`
	Active    bool            `json:"active"`
	SortOrder int             `json:"sort_order"`
}
