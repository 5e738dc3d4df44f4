package catalog_test

import (
	"context"
	"testing"

	"github.com/mtxos/opsboard/internal/domain/activity"
	"github.com/mtxos/opsboard/internal/domain/catalog"
	"github.com/mtxos/opsboard/internal/repository"
	"github.com/mtxos/opsboard/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_UpdateReminderRulesNormalizes(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.CatalogRepository{}
	activities := &mocks.ActivityRepository{}

	repo.On("GetService", ctx, "ws1", "svc1").Return(&catalog.ClientService{
		ID:            "svc1",
		WorkspaceID:   "ws1",
		ClientID:      "c1",
		Name:          "example.com",
		ReminderRules: []int{60, 30, 14, 7},
	}, nil)
	repo.On("UpdateReminderRules", ctx, "ws1", "svc1", []int{90, 30, 7, 0}, mock.Anything).Return(nil)
	activities.On("Log", ctx, "ws1", mock.MatchedBy(func(e *activity.Entry) bool {
		return e.Action == activity.ActionServiceReminderRules && e.EntityID == "svc1" && e.Metadata["clientId"] == "c1"
	})).Return(nil)

	svc := catalog.NewService(repo, activities, nil)
	updated, err := svc.UpdateReminderRules(ctx, "ws1", "user1", "svc1", []float64{7, 30, 0, 90, 30})
	require.NoError(t, err)
	require.Equal(t, []int{90, 30, 7, 0}, updated.ReminderRules)
	repo.AssertExpectations(t)
	activities.AssertExpectations(t)
}

func TestCatalogService_UpdateReminderRulesRejects(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.CatalogRepository{}
	svc := catalog.NewService(repo, nil, nil)

	cases := map[string][]float64{
		"empty":        {},
		"too many":     {1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13},
		"negative":     {30, -1},
		"out of range": {366},
		"fractional":   {7.5},
	}
	for name, rules := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.UpdateReminderRules(ctx, "ws1", "user1", "svc1", rules)
			require.ErrorIs(t, err, catalog.ErrInvalidRules)
		})
	}
	repo.AssertNotCalled(t, "GetService", mock.Anything, mock.Anything, mock.Anything)
}

func TestCatalogService_GetServiceNotFound(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.CatalogRepository{}
	repo.On("GetService", ctx, "ws1", "missing").Return((*catalog.ClientService)(nil), repository.ErrNotFound)

	svc := catalog.NewService(repo, nil, nil)
	_, err := svc.UpdateReminderRules(ctx, "ws1", "user1", "missing", []float64{14})
	require.ErrorIs(t, err, catalog.ErrServiceNotFound)
}
