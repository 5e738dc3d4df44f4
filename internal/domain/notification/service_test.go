package notification_test

import (
	"context"
	"testing"
	"time"

	"github.com/mtxos/opsboard/internal/domain/activity"
	"github.com/mtxos/opsboard/internal/domain/notification"
	"github.com/mtxos/opsboard/internal/repository"
	"github.com/mtxos/opsboard/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func openNotification() *notification.Notification {
	return &notification.Notification{
		ID:          "n1",
		WorkspaceID: "ws1",
		Type:        notification.TypeRenewal,
		Status:      notification.StatusOpen,
		EntityType:  "Service",
		EntityID:    "svc1",
		DedupeKey:   "renewal:svc1:14:2026-04-15",
	}
}

func TestNotificationService_SnoozeDefaultsToOneDay(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.NotificationRepository{}
	activities := &mocks.ActivityRepository{}

	repo.On("Get", ctx, "ws1", "n1").Return(openNotification(), nil)
	repo.On("Update", ctx, "ws1", mock.AnythingOfType("*notification.Notification")).Return(nil)
	activities.On("Log", ctx, "ws1", mock.MatchedBy(func(e *activity.Entry) bool {
		return e.Action == activity.ActionNotificationSnooze && e.ActorID == "user1" && e.EntityID == "n1"
	})).Return(nil)

	svc := notification.NewService(repo, activities, nil)
	before := time.Now().UTC()
	n, err := svc.Snooze(ctx, "ws1", "user1", "n1", nil)
	require.NoError(t, err)
	require.Equal(t, notification.StatusSnoozed, n.Status)
	require.NotNil(t, n.SnoozedUntil)
	require.WithinDuration(t, before.Add(24*time.Hour), *n.SnoozedUntil, time.Minute)
	repo.AssertExpectations(t)
	activities.AssertExpectations(t)
}

func TestNotificationService_SnoozeValidation(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.NotificationRepository{}
	svc := notification.NewService(repo, nil, nil)

	for _, minutes := range []int{-5, 0, notification.MaxSnoozeMinutes + 1} {
		_, err := svc.Snooze(ctx, "ws1", "user1", "n1", &minutes)
		require.ErrorIs(t, err, notification.ErrInvalidInput, "minutes=%d", minutes)
	}
	repo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestNotificationService_MarkHandled(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.NotificationRepository{}
	activities := &mocks.ActivityRepository{}

	repo.On("Get", ctx, "ws1", "n1").Return(openNotification(), nil)
	repo.On("Update", ctx, "ws1", mock.AnythingOfType("*notification.Notification")).Return(nil)
	activities.On("Log", ctx, "ws1", mock.Anything).Return(nil)

	svc := notification.NewService(repo, activities, nil)
	n, err := svc.MarkHandled(ctx, "ws1", "user1", "n1")
	require.NoError(t, err)
	require.Equal(t, notification.StatusHandled, n.Status)
	require.NotNil(t, n.HandledAt)
	require.Equal(t, "user1", *n.HandledByID)
}

func TestNotificationService_HandledIsTerminal(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.NotificationRepository{}
	handled := openNotification()
	handled.Status = notification.StatusHandled
	repo.On("Get", ctx, "ws1", "n1").Return(handled, nil)

	svc := notification.NewService(repo, nil, nil)
	minutes := 30
	_, err := svc.Snooze(ctx, "ws1", "user1", "n1", &minutes)
	require.ErrorIs(t, err, notification.ErrInvalidTransition)
	_, err = svc.MarkHandled(ctx, "ws1", "user1", "n1")
	require.ErrorIs(t, err, notification.ErrInvalidTransition)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestNotificationService_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.NotificationRepository{}
	repo.On("Get", ctx, "ws1", "missing").Return((*notification.Notification)(nil), repository.ErrNotFound)

	svc := notification.NewService(repo, nil, nil)
	_, err := svc.MarkHandled(ctx, "ws1", "user1", "missing")
	require.ErrorIs(t, err, notification.ErrNotificationNotFound)
}

func TestNotificationService_ListClampsLimitAndValidatesFilters(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.NotificationRepository{}
	open := notification.StatusOpen
	repo.On("List", ctx, "ws1", notification.ListOptions{Status: &open, Limit: notification.MaxListLimit}).
		Return([]notification.Notification{*openNotification()}, nil)

	svc := notification.NewService(repo, nil, nil)
	list, err := svc.List(ctx, "ws1", notification.ListOptions{Status: &open, Limit: 5000})
	require.NoError(t, err)
	require.Len(t, list, 1)

	bogus := notification.Type("BOGUS")
	_, err = svc.List(ctx, "ws1", notification.ListOptions{Type: &bogus})
	require.ErrorIs(t, err, notification.ErrInvalidInput)
}

func TestValidateTransition(t *testing.T) {
	cases := []struct {
		from, to notification.Status
		ok       bool
	}{
		{notification.StatusOpen, notification.StatusSnoozed, true},
		{notification.StatusOpen, notification.StatusHandled, true},
		{notification.StatusSnoozed, notification.StatusSnoozed, true},
		{notification.StatusSnoozed, notification.StatusHandled, true},
		{notification.StatusHandled, notification.StatusOpen, false},
		{notification.StatusHandled, notification.StatusSnoozed, false},
		{notification.StatusOpen, notification.StatusOpen, false},
	}
	for _, tc := range cases {
		err := notification.ValidateTransition(tc.from, tc.to)
		if tc.ok {
			require.NoError(t, err, "%s -> %s", tc.from, tc.to)
		} else {
			require.ErrorIs(t, err, notification.ErrInvalidTransition, "%s -> %s", tc.from, tc.to)
		}
	}
}
