package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrSessionIntegrity indicates a session reached a state without the fields that state requires.
var ErrSessionIntegrity = errors.New("session integrity error")

// ErrTransient indicates a failure in an external dependency that may succeed on retry.
var ErrTransient = errors.New("transient failure")

// ErrAlreadyProcessed indicates a transaction was already approved or rejected.
var ErrAlreadyProcessed = errors.New("transaction already processed")

// ErrForbidden indicates the actor is not allowed to perform the operation.
var ErrForbidden = errors.New("forbidden")

// ErrInactiveUser indicates the user account has been deactivated.
var ErrInactiveUser = errors.New("user is inactive")
