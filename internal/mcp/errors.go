package mcp

import (
	"errors"
	"fmt"

	"github.com/mtxos/opsboard/internal/domain/activity"
	"github.com/mtxos/opsboard/internal/domain/catalog"
	"github.com/mtxos/opsboard/internal/domain/notification"
	"github.com/mtxos/opsboard/internal/domain/reminder"
	"github.com/mtxos/opsboard/internal/identity"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	if e.RecoveryHint == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.RecoveryHint)
}

// MapError maps domain errors to MCP error codes. It returns nil for
// errors it doesn't recognize.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var stageErr *reminder.StageError
	switch {
	case errors.Is(err, identity.ErrUnauthorized):
		return &APIError{Code: "UNAUTHORIZED", Message: "unauthorized", RecoveryHint: "Send a valid API key as a bearer token"}
	case errors.Is(err, notification.ErrNotificationNotFound):
		return &APIError{Code: "NOT_FOUND", Message: "notification not found", RecoveryHint: "List notifications to find a valid id"}
	case errors.Is(err, notification.ErrInvalidTransition):
		return &APIError{Code: "INVALID_TRANSITION", Message: "notification is already handled", RecoveryHint: "Handled notifications can't change"}
	case errors.Is(err, notification.ErrInvalidInput):
		return &APIError{Code: "VALIDATION_ERROR", Message: err.Error(), RecoveryHint: "Snooze minutes must be 1..20160; type and status must be known values"}
	case errors.Is(err, catalog.ErrServiceNotFound):
		return &APIError{Code: "NOT_FOUND", Message: "service not found", RecoveryHint: "Check the service id"}
	case errors.Is(err, catalog.ErrInvalidRules):
		return &APIError{Code: "VALIDATION_ERROR", Message: err.Error(), RecoveryHint: "Send 1-12 whole days between 0 and 365"}
	case errors.Is(err, activity.ErrInvalidInput):
		return &APIError{Code: "VALIDATION_ERROR", Message: err.Error()}
	case errors.As(err, &stageErr):
		return &APIError{
			Code:         "REMINDER_RUN_FAILED",
			Message:      "reminder run failed",
			Details:      map[string]string{"stage": string(stageErr.Stage)},
			RecoveryHint: "Retry later; nothing was written",
		}
	default:
		return nil
	}
}

func toolError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
