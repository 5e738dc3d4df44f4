package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mtxos/opsboard/internal/domain/catalog"
	"github.com/mtxos/opsboard/internal/domain/notification"
	"github.com/mtxos/opsboard/internal/identity"
	"github.com/mtxos/opsboard/internal/repository"
)

// Error codes returned in the error envelope.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL"
)

type successEnvelope struct {
	OK        bool   `json:"ok"`
	Data      any    `json:"data"`
	RequestID string `json:"requestId"`
}

type errorEnvelope struct {
	OK    bool      `json:"ok"`
	Error ErrorBody `json:"error"`
}

// ErrorBody is the error half of the response envelope.
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"requestId"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteOK writes {ok:true,data,requestId}.
func WriteOK(w http.ResponseWriter, r *http.Request, data any) {
	writeJSON(w, http.StatusOK, successEnvelope{OK: true, Data: data, RequestID: RequestIDFromContext(r.Context())})
}

// WriteError writes {ok:false,error:{code,message,details,requestId}}.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	writeJSON(w, status, errorEnvelope{Error: ErrorBody{
		Code:      code,
		Message:   message,
		Details:   details,
		RequestID: RequestIDFromContext(r.Context()),
	}})
}

// writeDomainError maps a service error onto the envelope.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, notification.ErrNotificationNotFound),
		errors.Is(err, catalog.ErrServiceNotFound),
		errors.Is(err, repository.ErrNotFound):
		WriteError(w, r, http.StatusNotFound, CodeNotFound, err.Error(), nil)
	case errors.Is(err, notification.ErrInvalidInput),
		errors.Is(err, catalog.ErrInvalidRules):
		WriteError(w, r, http.StatusBadRequest, CodeValidation, err.Error(), nil)
	case errors.Is(err, notification.ErrInvalidTransition):
		WriteError(w, r, http.StatusConflict, CodeConflict, err.Error(), nil)
	case errors.Is(err, identity.ErrUnauthorized):
		WriteError(w, r, http.StatusUnauthorized, CodeUnauthorized, "unauthorized", nil)
	default:
		WriteError(w, r, http.StatusInternalServerError, CodeInternal, "internal error", nil)
	}
}
