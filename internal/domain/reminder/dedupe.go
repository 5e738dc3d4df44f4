package reminder

import (
	"fmt"
	"time"
)

const (
	// InactivityThresholdDays is the quiet period after which a client is flagged.
	InactivityThresholdDays = 30
	// InactivityBucketDays is the re-alert interval while a client stays inactive.
	InactivityBucketDays = 7
	// OverdueReminderDay is the one-time "just became overdue" offset.
	OverdueReminderDay = -1
)

// TaskDueReminderDays are the fixed offsets before a task's due date that fire.
var TaskDueReminderDays = []int{7, 3, 1, 0}

// RenewalDedupeKey identifies one reminder offset of one renewal date.
func RenewalDedupeKey(serviceID string, remainingDays int, renewalDate time.Time) string {
	return fmt.Sprintf("renewal:%s:%d:%s", serviceID, remainingDays, FormatDay(renewalDate))
}

// TaskDueDedupeKey identifies one due-date bucket of a task.
func TaskDueDedupeKey(taskID string, remainingDays int, dueAt time.Time) string {
	bucket := fmt.Sprintf("due-%d", remainingDays)
	if remainingDays < 0 {
		bucket = "overdue"
	}
	return fmt.Sprintf("task:%s:%s:%s", taskID, bucket, FormatDay(dueAt))
}

// InactivityBucket maps days of inactivity to a weekly bucket index.
func InactivityBucket(inactiveDays int) int {
	if inactiveDays < InactivityThresholdDays {
		return 0
	}
	return (inactiveDays - InactivityThresholdDays) / InactivityBucketDays
}

// InactivityDedupeKey identifies one inactivity bucket of a client.
func InactivityDedupeKey(clientID string, inactiveDays int) string {
	return fmt.Sprintf("inactivity:%s:bucket-%d", clientID, InactivityBucket(inactiveDays))
}
