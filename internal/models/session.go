package models

import (
	"errors"
	"time"
)

// MenuState is the closed set of workflow positions a session can be in.
type MenuState int

const (
	StateMain MenuState = iota
	StateTransactionType
	StateCategory
	StateAmount
	StateConfirm
)

func (m MenuState) String() string {
	switch m {
	case StateMain:
		return "MAIN"
	case StateTransactionType:
		return "TRANSACTION_TYPE"
	case StateCategory:
		return "CATEGORY"
	case StateAmount:
		return "AMOUNT"
	case StateConfirm:
		return "CONFIRM"
	}
	return "UNKNOWN"
}

func (m MenuState) Valid() bool { return m >= StateMain && m <= StateConfirm }

type EditField string

const (
	EditAmount      EditField = "amount"
	EditCategory    EditField = "category"
	EditDescription EditField = "description"
)

func (f EditField) Valid() bool {
	return f == EditAmount || f == EditCategory || f == EditDescription
}

// Fields holds the four user-editable transaction fields of a session.
type Fields struct {
	Type        *TransactionType
	Category    *string
	Amount      *string
	Description *string
}

func (f Fields) clone() Fields {
	return Fields{
		Type:        clonePtr(f.Type),
		Category:    clonePtr(f.Category),
		Amount:      clonePtr(f.Amount),
		Description: clonePtr(f.Description),
	}
}

// EditSnapshot is captured when an edit begins and consumed once when it ends.
type EditSnapshot struct {
	fields Fields
}

func (s *EditSnapshot) Fields() Fields { return s.fields.clone() }

var (
	ErrNotConfirming  = errors.New("edit requires CONFIRM state")
	ErrAlreadyEditing = errors.New("an edit is already in progress")
	ErrNotEditing     = errors.New("no edit in progress")
)

type Session struct {
	MenuState       MenuState
	TransactionType *TransactionType
	Category        *string
	Amount          *string
	Description     *string
	IsEditing       bool
	EditingField    *EditField
	EditSnapshot    *EditSnapshot
	RetryCount      int
	UpdatedAt       time.Time
}

func NewSession() *Session {
	return &Session{MenuState: StateMain, UpdatedAt: time.Now()}
}

func (s *Session) Fields() Fields {
	return Fields{
		Type:        s.TransactionType,
		Category:    s.Category,
		Amount:      s.Amount,
		Description: s.Description,
	}.clone()
}

func (s *Session) SetFields(f Fields) {
	f = f.clone()
	s.TransactionType = f.Type
	s.Category = f.Category
	s.Amount = f.Amount
	s.Description = f.Description
}

func (s *Session) BeginEdit(field EditField) error {
	if !field.Valid() {
		return errors.New("unknown edit field")
	}
	if s.MenuState != StateConfirm {
		return ErrNotConfirming
	}
	if s.IsEditing {
		return ErrAlreadyEditing
	}
	s.IsEditing = true
	s.EditingField = &field
	s.EditSnapshot = &EditSnapshot{fields: s.Fields()}
	return nil
}

// CommitEdit keeps the edited fields and drops the snapshot.
func (s *Session) CommitEdit() error {
	if !s.IsEditing {
		return ErrNotEditing
	}
	s.endEdit()
	return nil
}

// RollbackEdit restores the fields captured by BeginEdit.
func (s *Session) RollbackEdit() error {
	if !s.IsEditing || s.EditSnapshot == nil {
		return ErrNotEditing
	}
	s.SetFields(s.EditSnapshot.Fields())
	s.endEdit()
	return nil
}

func (s *Session) endEdit() {
	s.IsEditing = false
	s.EditingField = nil
	s.EditSnapshot = nil
	s.MenuState = StateConfirm
}

func (s *Session) Validate() error {
	if !s.MenuState.Valid() {
		return errors.New("invalid menu state")
	}
	if s.IsEditing && (s.EditingField == nil || s.EditSnapshot == nil) {
		return errors.New("editing session without field or snapshot")
	}
	return nil
}

// Clone returns a deep copy. The snapshot is shared since it is never mutated.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.SetFields(s.Fields())
	c.EditingField = clonePtr(s.EditingField)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }
