package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/mtxos/opsboard/internal/domain/activity"
	"github.com/mtxos/opsboard/internal/domain/notification"
	"github.com/mtxos/opsboard/internal/domain/reminder"
)

type runRemindersInput struct{}

type listNotificationsInput struct {
	Type   string `json:"type,omitempty" jsonschema:"Filter by type: RENEWAL, TASK, INACTIVITY or HANDOVER"`
	Status string `json:"status,omitempty" jsonschema:"Filter by status: OPEN, SNOOZED or HANDLED"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum number of notifications (default and cap 200)"`
}

type snoozeInput struct {
	ID      string `json:"id" jsonschema:"Notification id"`
	Minutes *int   `json:"minutes,omitempty" jsonschema:"Snooze length in minutes, 1..20160 (default 1440 when omitted)"`
}

type notificationIDInput struct {
	ID string `json:"id" jsonschema:"Notification id"`
}

type serviceIDInput struct {
	ID string `json:"id" jsonschema:"Service id"`
}

type updateRulesInput struct {
	ServiceID     string    `json:"service_id" jsonschema:"Service id"`
	ReminderRules []float64 `json:"reminder_rules" jsonschema:"Days before renewal to remind, 1-12 whole numbers in 0..365"`
}

type recentActivityInput struct {
	EntityType string `json:"entity_type,omitempty" jsonschema:"Filter by entity type, e.g. Notification or Service"`
	EntityID   string `json:"entity_id,omitempty" jsonschema:"Filter by entity id"`
	Action     string `json:"action,omitempty" jsonschema:"Filter by action, e.g. notification.snooze"`
	Limit      int    `json:"limit,omitempty" jsonschema:"Maximum number of entries"`
	Offset     int    `json:"offset,omitempty" jsonschema:"Offset for pagination"`
}

func registerTools(server *sdkmcp.Server, svc Services) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "run_reminders",
		Description: "Generate renewal, task-due and inactivity notifications for the current workspace. Safe to repeat: existing notifications are never duplicated.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ runRemindersInput) (*sdkmcp.CallToolResult, any, error) {
		p, err := principalFrom(ctx)
		if err != nil {
			return nil, nil, toolError(err)
		}
		res, err := svc.Reminders.Run(ctx, reminder.RunOptions{WorkspaceID: p.WorkspaceID})
		if err != nil {
			return nil, nil, toolError(err)
		}
		return jsonResult(res)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_notifications",
		Description: "List notifications in the workspace inbox, open first, then by due date",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in listNotificationsInput) (*sdkmcp.CallToolResult, any, error) {
		p, err := principalFrom(ctx)
		if err != nil {
			return nil, nil, toolError(err)
		}
		opts := notification.ListOptions{Limit: in.Limit}
		if in.Type != "" {
			t := notification.Type(in.Type)
			opts.Type = &t
		}
		if in.Status != "" {
			s := notification.Status(in.Status)
			opts.Status = &s
		}
		list, err := svc.Notifications.List(ctx, p.WorkspaceID, opts)
		if err != nil {
			return nil, nil, toolError(err)
		}
		if list == nil {
			list = []notification.Notification{}
		}
		return jsonResult(map[string]any{"notifications": list})
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "snooze_notification",
		Description: "Snooze an open or snoozed notification",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in snoozeInput) (*sdkmcp.CallToolResult, any, error) {
		p, err := principalFrom(ctx)
		if err != nil {
			return nil, nil, toolError(err)
		}
		n, err := svc.Notifications.Snooze(ctx, p.WorkspaceID, p.ActorID, in.ID, in.Minutes)
		if err != nil {
			return nil, nil, toolError(err)
		}
		return jsonResult(n)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "mark_notification_handled",
		Description: "Mark a notification handled. Handled notifications are final.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in notificationIDInput) (*sdkmcp.CallToolResult, any, error) {
		p, err := principalFrom(ctx)
		if err != nil {
			return nil, nil, toolError(err)
		}
		n, err := svc.Notifications.MarkHandled(ctx, p.WorkspaceID, p.ActorID, in.ID)
		if err != nil {
			return nil, nil, toolError(err)
		}
		return jsonResult(n)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_service",
		Description: "Get a client service with its renewal date and reminder rules",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in serviceIDInput) (*sdkmcp.CallToolResult, any, error) {
		p, err := principalFrom(ctx)
		if err != nil {
			return nil, nil, toolError(err)
		}
		s, err := svc.Catalog.GetService(ctx, p.WorkspaceID, in.ID)
		if err != nil {
			return nil, nil, toolError(err)
		}
		return jsonResult(s)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "update_reminder_rules",
		Description: "Replace the renewal reminder offsets (days before renewal) of a service",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in updateRulesInput) (*sdkmcp.CallToolResult, any, error) {
		p, err := principalFrom(ctx)
		if err != nil {
			return nil, nil, toolError(err)
		}
		s, err := svc.Catalog.UpdateReminderRules(ctx, p.WorkspaceID, p.ActorID, in.ServiceID, in.ReminderRules)
		if err != nil {
			return nil, nil, toolError(err)
		}
		return jsonResult(s)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_recent_activity",
		Description: "List recent workspace activity, newest first",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in recentActivityInput) (*sdkmcp.CallToolResult, any, error) {
		p, err := principalFrom(ctx)
		if err != nil {
			return nil, nil, toolError(err)
		}
		opts := activity.ListOptions{
			EntityType: in.EntityType,
			EntityID:   in.EntityID,
			Limit:      in.Limit,
			Offset:     in.Offset,
		}
		if in.Action != "" {
			a := activity.Action(in.Action)
			opts.Action = &a
		}
		entries, err := svc.Activity.GetRecentActivity(ctx, p.WorkspaceID, opts)
		if err != nil {
			return nil, nil, toolError(err)
		}
		if entries == nil {
			entries = []activity.Entry{}
		}
		return jsonResult(map[string]any{"activity": entries})
	})
}

func jsonResult(v any) (*sdkmcp.CallToolResult, any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, nil, fmt.Errorf("encode result: %w", err)
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil, nil
}
