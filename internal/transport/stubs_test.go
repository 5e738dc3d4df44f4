package transport

import (
	"context"

	"github.com/mtxos/opsboard/internal/domain/catalog"
	"github.com/mtxos/opsboard/internal/domain/notification"
	"github.com/mtxos/opsboard/internal/domain/reminder"
	"github.com/mtxos/opsboard/internal/identity"
)

type runnerStub struct {
	runFn func(context.Context, reminder.RunOptions) (*reminder.Result, error)
}

func (s runnerStub) Run(ctx context.Context, opts reminder.RunOptions) (*reminder.Result, error) {
	return s.runFn(ctx, opts)
}

type notificationStub struct {
	listFn        func(context.Context, string, notification.ListOptions) ([]notification.Notification, error)
	snoozeFn      func(context.Context, string, string, string, *int) (*notification.Notification, error)
	markHandledFn func(context.Context, string, string, string) (*notification.Notification, error)
}

func (s notificationStub) List(ctx context.Context, workspaceID string, opts notification.ListOptions) ([]notification.Notification, error) {
	return s.listFn(ctx, workspaceID, opts)
}
func (s notificationStub) Snooze(ctx context.Context, workspaceID, actorID, id string, minutes *int) (*notification.Notification, error) {
	return s.snoozeFn(ctx, workspaceID, actorID, id, minutes)
}
func (s notificationStub) MarkHandled(ctx context.Context, workspaceID, actorID, id string) (*notification.Notification, error) {
	return s.markHandledFn(ctx, workspaceID, actorID, id)
}

type catalogStub struct {
	updateFn func(context.Context, string, string, string, []float64) (*catalog.ClientService, error)
}

func (s catalogStub) UpdateReminderRules(ctx context.Context, workspaceID, actorID, id string, rules []float64) (*catalog.ClientService, error) {
	return s.updateFn(ctx, workspaceID, actorID, id, rules)
}

type testResolver struct {
	tokens map[string]identity.Principal
	err    error
}

func (r *testResolver) ResolvePrincipal(_ context.Context, token string) (identity.Principal, error) {
	if r.err != nil {
		return identity.Principal{}, r.err
	}
	p, ok := r.tokens[token]
	if !ok {
		return identity.Principal{}, identity.ErrUnauthorized
	}
	return p, nil
}
