package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `opsboard tracks clients, their billable services, projects and tasks for one workspace, and keeps an inbox of reminders about them.

Reminders come from three rules:
- RENEWAL: a service renews in exactly N days, where N is one of its reminder rules (default 60, 30, 14, 7).
- TASK: an open task is due in 7, 3, 1 or 0 days, or is overdue.
- INACTIVITY: a client has had no recorded activity for 30+ days; re-raised once per 7-day bucket.

Workflow:
1) Call run_reminders to bring the inbox up to date. Repeating it is harmless.
2) Call list_notifications (status=OPEN) to see what needs attention.
3) Act on each item, then snooze_notification or mark_notification_handled. Handled is final.
4) Use get_service / update_reminder_rules to change how early renewals are flagged.
5) get_recent_activity shows who did what.

Docs:
- opsboard://docs/reminders (rule details and dedupe keys)
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "opsboard://docs/reminders",
		Name:        "docs_reminders",
		Title:       "Reminder rules",
		Description: "How renewal, task-due and inactivity reminders fire and how duplicates are avoided.",
		Content: `# Reminder rules

All day arithmetic is done on UTC calendar days.

## Renewal

A service that is ACTIVE, belongs to an ACTIVE client and has a renewal date
fires when the days until renewal equals one of its reminder rules.
Rules are whole days in 0..365, deduplicated and sorted descending; an empty
or invalid rule set falls back to 60, 30, 14, 7.

Dedupe key: ` + "`renewal:{serviceId}:{days}:{renewalDay}`" + `

## Task due

Open tasks (TODO, IN_PROGRESS, BLOCKED) with a due date fire at 7, 3, 1 and 0
days before the due day, and once when the task is overdue.

Dedupe key: ` + "`task:{taskId}:due-{days}:{dueDay}`" + ` or ` + "`task:{taskId}:overdue:{dueDay}`" + `

## Inactivity

An ACTIVE client whose latest activity (client edits, services, projects, tasks,
links, notes, decisions, handovers, attachments, activity log) is 30 or more
days old fires once per 7-day bucket of inactivity.

Dedupe key: ` + "`inactivity:{clientId}:bucket-{bucket}`" + `

## Inbox

OPEN can become SNOOZED or HANDLED. SNOOZED can be snoozed again or HANDLED.
HANDLED never changes. A notification is never created twice for the same key.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
