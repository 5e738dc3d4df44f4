package reminder

import (
	"encoding/json"
	"time"
)

// ServiceStatus is the lifecycle state of a client service.
type ServiceStatus string

const (
	ServiceActive   ServiceStatus = "ACTIVE"
	ServiceCanceled ServiceStatus = "CANCELED"
	ServiceUnknown  ServiceStatus = "UNKNOWN"
)

// TaskStatus is the workflow state of a task.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "TODO"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskBlocked    TaskStatus = "BLOCKED"
	TaskDone       TaskStatus = "DONE"
)

// OpenTaskStatuses are the statuses that still receive due-date reminders.
var OpenTaskStatuses = []TaskStatus{TaskTodo, TaskInProgress, TaskBlocked}

// ClientStatus is the relationship state of a client.
type ClientStatus string

const (
	ClientActive   ClientStatus = "ACTIVE"
	ClientPaused   ClientStatus = "PAUSED"
	ClientArchived ClientStatus = "ARCHIVED"
)

// RenewalService is an active service of an active client with a renewal date.
type RenewalService struct {
	ID            string
	WorkspaceID   string
	ClientID      string
	ClientName    string
	Name          string
	Provider      string
	RenewalDate   time.Time
	ReminderRules json.RawMessage
}

// DueTask is an open task with a due date. ClientID and ClientName are empty
// for tasks that aren't attached to a client.
type DueTask struct {
	ID          string
	WorkspaceID string
	Title       string
	Status      TaskStatus
	DueAt       time.Time
	ClientID    string
	ClientName  string
	ProjectID   string
}

// Client is the subset of client fields the inactivity scan needs.
type Client struct {
	ID          string
	WorkspaceID string
	Name        string
	Status      ClientStatus
	UpdatedAt   time.Time
}
