package gormstore

import "time"

// Workspace is a tenant.
type Workspace struct {
	ID        string    `gorm:"column:id;type:varchar(64);primaryKey"`
	Name      string    `gorm:"column:name;type:varchar(200);not null"`
	CreatedAt time.Time `gorm:"column:created_at;type:datetime(3);not null"`
}

func (Workspace) TableName() string { return "workspaces" }

// APIKey maps a hashed bearer token to a workspace actor.
type APIKey struct {
	KeyHash     string     `gorm:"column:key_hash;type:char(64);primaryKey"`
	WorkspaceID string     `gorm:"column:workspace_id;type:varchar(64);index;not null"`
	ActorID     string     `gorm:"column:actor_id;type:varchar(64);not null"`
	Description string     `gorm:"column:description;type:varchar(200);not null;default:''"`
	CreatedAt   time.Time  `gorm:"column:created_at;type:datetime(3);not null"`
	LastUsed    *time.Time `gorm:"column:last_used;type:datetime(3)"`
}

func (APIKey) TableName() string { return "api_keys" }

type Client struct {
	ID          string    `gorm:"column:id;type:varchar(64);primaryKey"`
	WorkspaceID string    `gorm:"column:workspace_id;type:varchar(64);index:idx_clients_workspace;not null"`
	Name        string    `gorm:"column:name;type:varchar(200);not null"`
	Status      string    `gorm:"column:status;type:varchar(20);index:idx_clients_workspace;not null;default:ACTIVE"`
	CreatedAt   time.Time `gorm:"column:created_at;type:datetime(3);not null"`
	UpdatedAt   time.Time `gorm:"column:updated_at;type:datetime(3);not null"`
}

func (Client) TableName() string { return "clients" }

type Service struct {
	ID            string     `gorm:"column:id;type:varchar(64);primaryKey"`
	ClientID      string     `gorm:"column:client_id;type:varchar(64);index;not null"`
	Name          string     `gorm:"column:name;type:varchar(200);not null"`
	Provider      string     `gorm:"column:provider;type:varchar(120);not null"`
	Status        string     `gorm:"column:status;type:varchar(20);not null;default:ACTIVE"`
	RenewalDate   *time.Time `gorm:"column:renewal_date;type:datetime(3)"`
	ReminderRules *string    `gorm:"column:reminder_rules;type:json"`
	CreatedAt     time.Time  `gorm:"column:created_at;type:datetime(3);not null"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;type:datetime(3);not null"`
}

func (Service) TableName() string { return "services" }

type Project struct {
	ID          string    `gorm:"column:id;type:varchar(64);primaryKey"`
	WorkspaceID string    `gorm:"column:workspace_id;type:varchar(64);index;not null"`
	ClientID    *string   `gorm:"column:client_id;type:varchar(64);index"`
	Name        string    `gorm:"column:name;type:varchar(200);not null"`
	CreatedAt   time.Time `gorm:"column:created_at;type:datetime(3);not null"`
	UpdatedAt   time.Time `gorm:"column:updated_at;type:datetime(3);not null"`
}

func (Project) TableName() string { return "projects" }

type Task struct {
	ID          string     `gorm:"column:id;type:varchar(64);primaryKey"`
	WorkspaceID string     `gorm:"column:workspace_id;type:varchar(64);index:idx_tasks_due;not null"`
	ClientID    *string    `gorm:"column:client_id;type:varchar(64);index"`
	ProjectID   *string    `gorm:"column:project_id;type:varchar(64)"`
	Title       string     `gorm:"column:title;type:varchar(300);not null"`
	Status      string     `gorm:"column:status;type:varchar(20);index:idx_tasks_due;not null;default:TODO"`
	DueAt       *time.Time `gorm:"column:due_at;type:datetime(3);index:idx_tasks_due"`
	CreatedAt   time.Time  `gorm:"column:created_at;type:datetime(3);not null"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;type:datetime(3);not null"`
}

func (Task) TableName() string { return "tasks" }

type AssetLink struct {
	ID        string    `gorm:"column:id;type:varchar(64);primaryKey"`
	ClientID  string    `gorm:"column:client_id;type:varchar(64);index;not null"`
	Label     string    `gorm:"column:label;type:varchar(200);not null"`
	URL       string    `gorm:"column:url;type:varchar(2048);not null"`
	CreatedAt time.Time `gorm:"column:created_at;type:datetime(3);not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:datetime(3);not null"`
}

func (AssetLink) TableName() string { return "asset_links" }

type VaultPointer struct {
	ID        string    `gorm:"column:id;type:varchar(64);primaryKey"`
	ClientID  string    `gorm:"column:client_id;type:varchar(64);index;not null"`
	Label     string    `gorm:"column:label;type:varchar(200);not null"`
	ItemRef   string    `gorm:"column:item_ref;type:varchar(200);not null"`
	CreatedAt time.Time `gorm:"column:created_at;type:datetime(3);not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:datetime(3);not null"`
}

func (VaultPointer) TableName() string { return "vault_pointers" }

// EntityRef is the polymorphic owner of notes, decisions, handovers and attachments.
type EntityRef struct {
	WorkspaceID string `gorm:"column:workspace_id;type:varchar(64);not null"`
	EntityType  string `gorm:"column:entity_type;type:varchar(20);index:idx_entity,priority:1;not null"`
	EntityID    string `gorm:"column:entity_id;type:varchar(64);index:idx_entity,priority:2;not null"`
}

type Note struct {
	ID string `gorm:"column:id;type:varchar(64);primaryKey"`
	EntityRef
	Body      string    `gorm:"column:body;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;type:datetime(3);not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:datetime(3);not null"`
}

func (Note) TableName() string { return "notes" }

type Decision struct {
	ID string `gorm:"column:id;type:varchar(64);primaryKey"`
	EntityRef
	Title     string    `gorm:"column:title;type:varchar(300);not null"`
	CreatedAt time.Time `gorm:"column:created_at;type:datetime(3);not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:datetime(3);not null"`
}

func (Decision) TableName() string { return "decisions" }

type Handover struct {
	ID string `gorm:"column:id;type:varchar(64);primaryKey"`
	EntityRef
	Summary   string    `gorm:"column:summary;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;type:datetime(3);not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:datetime(3);not null"`
}

func (Handover) TableName() string { return "handovers" }

type AttachmentLink struct {
	ID string `gorm:"column:id;type:varchar(64);primaryKey"`
	EntityRef
	FileName  string    `gorm:"column:file_name;type:varchar(300);not null"`
	CreatedAt time.Time `gorm:"column:created_at;type:datetime(3);not null"`
}

func (AttachmentLink) TableName() string { return "attachment_links" }

type ActivityLog struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	WorkspaceID string    `gorm:"column:workspace_id;type:varchar(64);index:idx_activity_workspace;not null"`
	ActorID     string    `gorm:"column:actor_id;type:varchar(64);not null"`
	Action      string    `gorm:"column:action;type:varchar(60);not null"`
	EntityType  string    `gorm:"column:entity_type;type:varchar(30);index:idx_activity_entity;not null"`
	EntityID    string    `gorm:"column:entity_id;type:varchar(64);index:idx_activity_entity;not null"`
	Metadata    string    `gorm:"column:metadata;type:json;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;type:datetime(3);index:idx_activity_workspace;not null"`
}

func (ActivityLog) TableName() string { return "activity_log" }

// Notification rows are unique per (workspace_id, dedupe_key).
type Notification struct {
	ID           string     `gorm:"column:id;type:varchar(64);primaryKey"`
	WorkspaceID  string     `gorm:"column:workspace_id;type:varchar(64);uniqueIndex:uniq_notification_dedupe,priority:1;index:idx_notification_inbox,priority:1;not null"`
	Type         string     `gorm:"column:type;type:varchar(20);not null"`
	Status       string     `gorm:"column:status;type:varchar(20);index:idx_notification_inbox,priority:2;not null;default:OPEN"`
	EntityType   string     `gorm:"column:entity_type;type:varchar(30);not null"`
	EntityID     string     `gorm:"column:entity_id;type:varchar(64);not null"`
	Title        string     `gorm:"column:title;type:varchar(200);not null"`
	Message      string     `gorm:"column:message;type:text;not null"`
	DueAt        *time.Time `gorm:"column:due_at;type:datetime(3);index:idx_notification_inbox,priority:3"`
	DedupeKey    string     `gorm:"column:dedupe_key;type:varchar(191);uniqueIndex:uniq_notification_dedupe,priority:2;not null"`
	Metadata     string     `gorm:"column:metadata;type:json;not null"`
	SnoozedUntil *time.Time `gorm:"column:snoozed_until;type:datetime(3)"`
	HandledAt    *time.Time `gorm:"column:handled_at;type:datetime(3)"`
	HandledByID  *string    `gorm:"column:handled_by_id;type:varchar(64)"`
	CreatedAt    time.Time  `gorm:"column:created_at;type:datetime(3);not null"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;type:datetime(3);not null"`
}

func (Notification) TableName() string { return "notifications" }

// Models lists every table AutoMigrate manages.
func Models() []any {
	return []any{
		&Workspace{}, &APIKey{}, &Client{}, &Service{}, &Project{}, &Task{},
		&AssetLink{}, &VaultPointer{}, &Note{}, &Decision{}, &Handover{},
		&AttachmentLink{}, &ActivityLog{}, &Notification{},
	}
}
