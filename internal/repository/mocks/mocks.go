package mocks

import (
	"context"
	"time"

	"github.com/mtxos/opsboard/internal/domain/activity"
	"github.com/mtxos/opsboard/internal/domain/catalog"
	"github.com/mtxos/opsboard/internal/domain/notification"
	"github.com/mtxos/opsboard/internal/domain/reminder"
	"github.com/stretchr/testify/mock"
)

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, workspaceID string, entry *activity.Entry) error {
	args := m.Called(ctx, workspaceID, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, workspaceID string, opts activity.ListOptions) ([]activity.Entry, error) {
	args := m.Called(ctx, workspaceID, opts)
	if list, ok := args.Get(0).([]activity.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// NotificationRepository is a mock for notification.Repository.
type NotificationRepository struct {
	mock.Mock
}

func (m *NotificationRepository) Get(ctx context.Context, workspaceID, id string) (*notification.Notification, error) {
	args := m.Called(ctx, workspaceID, id)
	if n, ok := args.Get(0).(*notification.Notification); ok {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *NotificationRepository) List(ctx context.Context, workspaceID string, opts notification.ListOptions) ([]notification.Notification, error) {
	args := m.Called(ctx, workspaceID, opts)
	if list, ok := args.Get(0).([]notification.Notification); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *NotificationRepository) Update(ctx context.Context, workspaceID string, n *notification.Notification) error {
	args := m.Called(ctx, workspaceID, n)
	return args.Error(0)
}

// ReminderRepository is a mock for reminder.Repository.
type ReminderRepository struct {
	mock.Mock
}

func (m *ReminderRepository) ListWorkspaceIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if ids, ok := args.Get(0).([]string); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ReminderRepository) ListActiveServicesWithRenewalDue(ctx context.Context, workspaceID string) ([]reminder.RenewalService, error) {
	args := m.Called(ctx, workspaceID)
	if list, ok := args.Get(0).([]reminder.RenewalService); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ReminderRepository) ListOpenTasksWithDueDate(ctx context.Context, workspaceID string) ([]reminder.DueTask, error) {
	args := m.Called(ctx, workspaceID)
	if list, ok := args.Get(0).([]reminder.DueTask); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ReminderRepository) ListActiveClients(ctx context.Context, workspaceID string) ([]reminder.Client, error) {
	args := m.Called(ctx, workspaceID)
	if list, ok := args.Get(0).([]reminder.Client); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ReminderRepository) LatestActivityByClient(ctx context.Context, workspaceID string, clientIDs []string) (map[string]time.Time, error) {
	args := m.Called(ctx, workspaceID, clientIDs)
	if latest, ok := args.Get(0).(map[string]time.Time); ok {
		return latest, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ReminderRepository) InsertNotificationsSkippingDuplicates(ctx context.Context, candidates []notification.Notification) (int, error) {
	args := m.Called(ctx, candidates)
	return args.Int(0), args.Error(1)
}

// CatalogRepository is a mock for catalog.Repository.
type CatalogRepository struct {
	mock.Mock
}

func (m *CatalogRepository) GetService(ctx context.Context, workspaceID, id string) (*catalog.ClientService, error) {
	args := m.Called(ctx, workspaceID, id)
	if svc, ok := args.Get(0).(*catalog.ClientService); ok {
		return svc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CatalogRepository) UpdateReminderRules(ctx context.Context, workspaceID, id string, rules []int, updatedAt time.Time) error {
	args := m.Called(ctx, workspaceID, id, rules, updatedAt)
	return args.Error(0)
}
