package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/baharkarakas/ledger-bot/internal/api/validate"
	"github.com/baharkarakas/ledger-bot/internal/apperrors"
)

const maxBody = 1 << 20

type APIError struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, msg string, details interface{}) {
	WriteJSON(w, status, APIError{
		Error:   msg,
		Code:    code,
		Details: details,
	})
}

// Decode reads a JSON body into dst and runs struct validation on it.
// Failures are written to w and reported as false.
func Decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_request", "invalid JSON body", nil)
		return false
	}
	if errs := validate.Struct(dst); len(errs) > 0 {
		WriteError(w, http.StatusUnprocessableEntity, "validation_failed", "validation failed", errs)
		return false
	}
	return true
}

// WriteAppError maps service errors to HTTP status codes.
func WriteAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "not found", nil)
	case errors.Is(err, apperrors.ErrValidation):
		WriteError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error(), nil)
	case errors.Is(err, apperrors.ErrForbidden):
		WriteError(w, http.StatusForbidden, "forbidden", "forbidden", nil)
	case errors.Is(err, apperrors.ErrInactiveUser):
		WriteError(w, http.StatusForbidden, "inactive_user", "user is deactivated", nil)
	case errors.Is(err, apperrors.ErrAlreadyProcessed):
		WriteError(w, http.StatusConflict, "already_processed", "already processed", nil)
	case errors.Is(err, apperrors.ErrTransient):
		WriteError(w, http.StatusServiceUnavailable, "unavailable", "temporarily unavailable", nil)
	default:
		slog.Error("request failed", "err", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}
