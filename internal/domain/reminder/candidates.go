package reminder

import (
	"fmt"
	"slices"
	"time"

	"github.com/mtxos/opsboard/internal/domain/notification"
)

// RenewalCandidates returns one candidate per service whose remaining days
// match one of its reminder rules.
func RenewalCandidates(services []RenewalService, now time.Time) []notification.Notification {
	var out []notification.Notification
	for _, svc := range services {
		if svc.RenewalDate.IsZero() {
			continue
		}
		remaining := DaysUntil(now, svc.RenewalDate)
		if !RulesContain(ParseReminderRules(svc.ReminderRules), remaining) {
			continue
		}

		day := FormatDay(svc.RenewalDate)
		due := svc.RenewalDate.UTC()
		out = append(out, notification.Notification{
			WorkspaceID: svc.WorkspaceID,
			Type:        notification.TypeRenewal,
			Status:      notification.StatusOpen,
			EntityType:  "Service",
			EntityID:    svc.ID,
			Title:       fmt.Sprintf("Renewal in %d %s", remaining, dayNoun(remaining)),
			Message:     fmt.Sprintf("%s · %s (%s) renews on %s.", svc.ClientName, svc.Name, svc.Provider, day),
			DueAt:       &due,
			DedupeKey:   RenewalDedupeKey(svc.ID, remaining, svc.RenewalDate),
			Metadata: map[string]any{
				"clientId":      svc.ClientID,
				"clientName":    svc.ClientName,
				"serviceName":   svc.Name,
				"provider":      svc.Provider,
				"remainingDays": remaining,
			},
		})
	}
	return out
}

// TaskDueCandidates returns candidates for open tasks that are due in one of
// TaskDueReminderDays or became overdue exactly one day ago.
func TaskDueCandidates(tasks []DueTask, now time.Time) []notification.Notification {
	var out []notification.Notification
	for _, task := range tasks {
		if task.DueAt.IsZero() || !isOpenTask(task.Status) {
			continue
		}
		remaining := DaysUntil(now, task.DueAt)
		if remaining != OverdueReminderDay && !RulesContain(TaskDueReminderDays, remaining) {
			continue
		}

		due := task.DueAt.UTC()
		metadata := map[string]any{
			"taskTitle":     task.Title,
			"remainingDays": remaining,
		}
		if task.ClientID != "" {
			metadata["clientId"] = task.ClientID
			metadata["clientName"] = task.ClientName
		}
		if task.ProjectID != "" {
			metadata["projectId"] = task.ProjectID
		}

		out = append(out, notification.Notification{
			WorkspaceID: task.WorkspaceID,
			Type:        notification.TypeTask,
			Status:      notification.StatusOpen,
			EntityType:  "Task",
			EntityID:    task.ID,
			Title:       taskTitle(remaining),
			Message:     taskMessage(task, remaining),
			DueAt:       &due,
			DedupeKey:   TaskDueDedupeKey(task.ID, remaining, task.DueAt),
			Metadata:    metadata,
		})
	}
	return out
}

// InactivityCandidates returns candidates for clients with no activity for at
// least InactivityThresholdDays. latest holds the newest related-record
// timestamp per client; clients missing from it fall back to UpdatedAt.
func InactivityCandidates(clients []Client, latest map[string]time.Time, now time.Time) []notification.Notification {
	var out []notification.Notification
	for _, c := range clients {
		if c.Status != ClientActive {
			continue
		}
		last := c.UpdatedAt
		if ts, ok := latest[c.ID]; ok && ts.After(last) {
			last = ts
		}

		inactive := DaysUntil(last, now)
		if inactive < InactivityThresholdDays {
			continue
		}

		out = append(out, notification.Notification{
			WorkspaceID: c.WorkspaceID,
			Type:        notification.TypeInactivity,
			Status:      notification.StatusOpen,
			EntityType:  "Client",
			EntityID:    c.ID,
			Title:       fmt.Sprintf("Client inactive for %d days", inactive),
			Message:     fmt.Sprintf("%s has had no recorded activity for %d days.", c.Name, inactive),
			DedupeKey:   InactivityDedupeKey(c.ID, inactive),
			Metadata: map[string]any{
				"clientId":       c.ID,
				"clientName":     c.Name,
				"inactiveDays":   inactive,
				"bucket":         InactivityBucket(inactive),
				"lastActivityAt": last.UTC().Format(time.RFC3339),
			},
		})
	}
	return out
}

func isOpenTask(status TaskStatus) bool {
	return slices.Contains(OpenTaskStatuses, status)
}

func taskTitle(remaining int) string {
	switch {
	case remaining < 0:
		return fmt.Sprintf("Task overdue by %d %s", -remaining, dayNoun(-remaining))
	case remaining == 0:
		return "Task due today"
	default:
		return fmt.Sprintf("Task due in %d %s", remaining, dayNoun(remaining))
	}
}

func taskMessage(task DueTask, remaining int) string {
	verb := "is due on"
	if remaining < 0 {
		verb = "was due on"
	}
	msg := fmt.Sprintf("%s %s %s.", task.Title, verb, FormatDay(task.DueAt))
	if task.ClientName != "" {
		msg = task.ClientName + " · " + msg
	}
	return msg
}

func dayNoun(n int) string {
	if n == 1 {
		return "day"
	}
	return "days"
}
