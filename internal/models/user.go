package models

import (
	"errors"
	"strings"
	"time"
)

type Role string

const (
	RoleSubmitter Role = "submitter"
	RoleApprover  Role = "approver"
	RoleAdmin     Role = "admin"
)

// User is keyed by its chat address; approvers additionally carry login credentials.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        *string   `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) CanApprove() bool {
	return u.Active && (u.Role == RoleApprover || u.Role == RoleAdmin)
}

func (u *User) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return errors.New("chat id required")
	}
	if u.Email != nil && !strings.Contains(*u.Email, "@") {
		return errors.New("invalid email")
	}
	if u.Role == "" {
		u.Role = RoleSubmitter
	}
	return nil
}
