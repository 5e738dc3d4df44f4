package activity

import "time"

// Action names an audited operation.
type Action string

const (
	ActionNotificationSnooze      Action = "notification.snooze"
	ActionNotificationMarkHandled Action = "notification.mark_handled"
	ActionServiceReminderRules    Action = "service.update_reminder_rules"
)

// Entry represents an event in the workspace activity log
type Entry struct {
	ID          int64          `json:"id"`
	WorkspaceID string         `json:"workspace_id"`
	ActorID     string         `json:"actor_id"`
	Action      Action         `json:"action"`
	EntityType  string         `json:"entity_type"`
	EntityID    string         `json:"entity_id"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}
