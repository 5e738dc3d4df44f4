package catalog

import "time"

// ClientService is a billable service a client depends on, such as a domain
// or hosting plan, with the reminder offsets used for its renewal.
type ClientService struct {
	ID            string     `json:"id"`
	WorkspaceID   string     `json:"workspace_id"`
	ClientID      string     `json:"client_id"`
	Name          string     `json:"name"`
	Provider      string     `json:"provider"`
	Status        string     `json:"status"`
	RenewalDate   *time.Time `json:"renewal_date,omitempty"`
	ReminderRules []int      `json:"reminder_rules"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
