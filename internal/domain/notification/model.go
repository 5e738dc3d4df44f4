package notification

import "time"

// Type identifies which rule family produced a notification.
type Type string

const (
	TypeRenewal    Type = "RENEWAL"
	TypeTask       Type = "TASK"
	TypeInactivity Type = "INACTIVITY"
	TypeHandover   Type = "HANDOVER"
)

// Status represents the inbox state of a notification.
type Status string

const (
	StatusOpen    Status = "OPEN"
	StatusSnoozed Status = "SNOOZED"
	StatusHandled Status = "HANDLED"
)

// Notification is a workspace-scoped reminder. DedupeKey is unique per workspace.
type Notification struct {
	ID           string         `json:"id"`
	WorkspaceID  string         `json:"workspace_id"`
	Type         Type           `json:"type"`
	Status       Status         `json:"status"`
	EntityType   string         `json:"entity_type"`
	EntityID     string         `json:"entity_id"`
	Title        string         `json:"title"`
	Message      string         `json:"message"`
	DueAt        *time.Time     `json:"due_at,omitempty"`
	DedupeKey    string         `json:"dedupe_key"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	SnoozedUntil *time.Time     `json:"snoozed_until,omitempty"`
	HandledAt    *time.Time     `json:"handled_at,omitempty"`
	HandledByID  *string        `json:"handled_by_id,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// ValidType reports whether t is a known notification type.
func ValidType(t Type) bool {
	switch t {
	case TypeRenewal, TypeTask, TypeInactivity, TypeHandover:
		return true
	}
	return false
}

// ValidStatus reports whether s is a known notification status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusOpen, StatusSnoozed, StatusHandled:
		return true
	}
	return false
}
