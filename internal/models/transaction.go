package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TxnIncome  TransactionType = "income"
	TxnExpense TransactionType = "expense"
)

func (t TransactionType) Valid() bool { return t == TxnIncome || t == TxnExpense }

// ApprovalStatus only moves pending -> approved or pending -> rejected.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

func (s ApprovalStatus) CanTransition(to ApprovalStatus) bool {
	return s == ApprovalPending && (to == ApprovalApproved || to == ApprovalRejected)
}

type Transaction struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Type            TransactionType `json:"type"`
	Category        string          `json:"category"`
	Amount          decimal.Decimal `json:"amount"`
	Description     *string         `json:"description,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	ApprovalStatus  ApprovalStatus  `json:"approval_status"`
	ApproverID      *string         `json:"approver_id,omitempty"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	RejectionReason *string         `json:"rejection_reason,omitempty"`
	RiskScore       int             `json:"risk_score"`
	RiskFlags       []string        `json:"risk_flags,omitempty"`
}

// DescriptionText returns the description or "" when unset.
func (t Transaction) DescriptionText() string {
	if t.Description == nil {
		return ""
	}
	return *t.Description
}
