package notification

import "errors"

var (
	// ErrNotificationNotFound indicates the notification doesn't exist in the workspace.
	ErrNotificationNotFound = errors.New("notification not found")
	// ErrInvalidTransition indicates a status change the inbox doesn't allow.
	ErrInvalidTransition = errors.New("invalid notification status transition")
	// ErrInvalidInput indicates invalid input for notification operations.
	ErrInvalidInput = errors.New("invalid notification input")
)
