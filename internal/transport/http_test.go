package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mtxos/opsboard/internal/domain/catalog"
	"github.com/mtxos/opsboard/internal/domain/notification"
	"github.com/mtxos/opsboard/internal/domain/reminder"
	"github.com/mtxos/opsboard/internal/identity"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	OK        bool            `json:"ok"`
	Data      json.RawMessage `json:"data"`
	RequestID string          `json:"requestId"`
	Error     *ErrorBody      `json:"error"`
}

func do(t *testing.T, h http.Handler, method, path, body string, headers map[string]string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec.Code, env
}

func TestHTTPServer_Health(t *testing.T) {
	server := httptest.NewServer(NewServer(Config{}))
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCron_RunsEngine(t *testing.T) {
	var calls int
	h := NewServer(Config{
		Reminders: runnerStub{runFn: func(_ context.Context, opts reminder.RunOptions) (*reminder.Result, error) {
			calls++
			require.Empty(t, opts.WorkspaceID)
			return &reminder.Result{Generated: 4, Message: reminder.RunMessage}, nil
		}},
	})

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		code, env := do(t, h, method, "/api/cron/notifications", "", map[string]string{RequestIDHeader: "req-1"})
		require.Equal(t, http.StatusOK, code)
		require.True(t, env.OK)
		require.Equal(t, "req-1", env.RequestID)

		var data cronResponse
		require.NoError(t, json.Unmarshal(env.Data, &data))
		require.Equal(t, 4, data.Generated)
		require.Equal(t, reminder.RunMessage, data.Message)
	}
	require.Equal(t, 2, calls)
}

func TestCron_SecretRequired(t *testing.T) {
	h := NewServer(Config{
		CronSecret: "s3cret",
		Reminders: runnerStub{runFn: func(context.Context, reminder.RunOptions) (*reminder.Result, error) {
			return &reminder.Result{Message: reminder.RunMessage}, nil
		}},
	})

	code, env := do(t, h, http.MethodPost, "/api/cron/notifications", "", nil)
	require.Equal(t, http.StatusForbidden, code)
	require.False(t, env.OK)
	require.Equal(t, CodeForbidden, env.Error.Code)
	require.NotEmpty(t, env.Error.RequestID)

	code, _ = do(t, h, http.MethodPost, "/api/cron/notifications", "", map[string]string{CronSecretHeader: "wrong"})
	require.Equal(t, http.StatusForbidden, code)

	code, env = do(t, h, http.MethodPost, "/api/cron/notifications", "", map[string]string{CronSecretHeader: "s3cret"})
	require.Equal(t, http.StatusOK, code)
	require.True(t, env.OK)
}

func TestCron_EngineFailure(t *testing.T) {
	h := NewServer(Config{
		Reminders: runnerStub{runFn: func(context.Context, reminder.RunOptions) (*reminder.Result, error) {
			return nil, &reminder.StageError{Stage: reminder.StageRenewal, WorkspaceID: "ws1", Kind: reminder.ErrReadFailure, Err: errors.New("db down")}
		}},
	})

	code, env := do(t, h, http.MethodGet, "/api/cron/notifications", "", nil)
	require.Equal(t, http.StatusInternalServerError, code)
	require.Equal(t, CodeInternal, env.Error.Code)
	require.Equal(t, "Notification cron failed", env.Error.Message)
}

func TestNotifications_ListPassesFilters(t *testing.T) {
	h := NewServer(Config{
		AuthEnabled: true,
		Resolver: &testResolver{tokens: map[string]identity.Principal{
			"key": {WorkspaceID: "ws1", ActorID: "user1"},
		}},
		Notifications: notificationStub{listFn: func(_ context.Context, ws string, opts notification.ListOptions) ([]notification.Notification, error) {
			require.Equal(t, "ws1", ws)
			require.Equal(t, notification.TypeRenewal, *opts.Type)
			require.Equal(t, notification.StatusOpen, *opts.Status)
			require.Equal(t, 5, opts.Limit)
			return []notification.Notification{{ID: "n1", Type: notification.TypeRenewal}}, nil
		}},
	})

	code, _ := do(t, h, http.MethodGet, "/api/notifications", "", nil)
	require.Equal(t, http.StatusUnauthorized, code)

	code, env := do(t, h, http.MethodGet, "/api/notifications?type=RENEWAL&status=OPEN&limit=5", "", map[string]string{"Authorization": "Bearer key"})
	require.Equal(t, http.StatusOK, code)
	var list notificationList
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list.Notifications, 1)
	require.Equal(t, "n1", list.Notifications[0].ID)

	code, env = do(t, h, http.MethodGet, "/api/notifications?limit=abc", "", map[string]string{"Authorization": "Bearer key"})
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, CodeValidation, env.Error.Code)
}

func TestNotifications_EmptyListIsWrapped(t *testing.T) {
	h := NewServer(Config{
		DefaultPrincipal: identity.Principal{WorkspaceID: "ws1", ActorID: "user1"},
		Notifications: notificationStub{listFn: func(context.Context, string, notification.ListOptions) ([]notification.Notification, error) {
			return nil, nil
		}},
	})

	code, env := do(t, h, http.MethodGet, "/api/notifications", "", nil)
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `{"notifications":[]}`, string(env.Data))
}

func TestNotifications_SnoozeAndMarkHandled(t *testing.T) {
	principal := identity.Principal{WorkspaceID: "ws1", ActorID: "user1"}
	var seen []*int
	h := NewServer(Config{
		DefaultPrincipal: principal,
		Notifications: notificationStub{
			snoozeFn: func(_ context.Context, ws, actor, id string, minutes *int) (*notification.Notification, error) {
				require.Equal(t, "user1", actor)
				if id == "missing" {
					return nil, notification.ErrNotificationNotFound
				}
				if _, err := notification.ValidateSnoozeMinutes(minutes); err != nil {
					return nil, err
				}
				seen = append(seen, minutes)
				return &notification.Notification{ID: id, WorkspaceID: ws, Status: notification.StatusSnoozed}, nil
			},
			markHandledFn: func(_ context.Context, _, _, id string) (*notification.Notification, error) {
				if id == "done" {
					return nil, notification.ErrInvalidTransition
				}
				return &notification.Notification{ID: id, Status: notification.StatusHandled}, nil
			},
		},
	})

	code, env := do(t, h, http.MethodPost, "/api/notifications/n1/snooze", `{"minutes":60}`, nil)
	require.Equal(t, http.StatusOK, code)
	var n notification.Notification
	require.NoError(t, json.Unmarshal(env.Data, &n))
	require.Equal(t, notification.StatusSnoozed, n.Status)

	code, _ = do(t, h, http.MethodPost, "/api/notifications/n1/snooze", "", nil)
	require.Equal(t, http.StatusOK, code)

	code, env = do(t, h, http.MethodPost, "/api/notifications/missing/snooze", "", nil)
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, CodeNotFound, env.Error.Code)

	code, env = do(t, h, http.MethodPost, "/api/notifications/n1/snooze", `{"minutes":-5}`, nil)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, CodeValidation, env.Error.Code)

	code, env = do(t, h, http.MethodPost, "/api/notifications/n1/snooze", `{"minutes":0}`, nil)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, CodeValidation, env.Error.Code)

	code, _ = do(t, h, http.MethodPost, "/api/notifications/n1/snooze", `{}`, nil)
	require.Equal(t, http.StatusOK, code)

	require.Len(t, seen, 3)
	require.Equal(t, 60, *seen[0])
	require.Nil(t, seen[1], "empty body leaves the length to the default")
	require.Nil(t, seen[2])

	code, _ = do(t, h, http.MethodPost, "/api/notifications/n1/snooze", `{"minutes":`, nil)
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, h, http.MethodPost, "/api/notifications/n1/mark-handled", "", nil)
	require.Equal(t, http.StatusOK, code)

	code, env = do(t, h, http.MethodPost, "/api/notifications/done/mark-handled", "", nil)
	require.Equal(t, http.StatusConflict, code)
	require.Equal(t, CodeConflict, env.Error.Code)
}

func TestServices_UpdateReminderRules(t *testing.T) {
	h := NewServer(Config{
		DefaultPrincipal: identity.Principal{WorkspaceID: "ws1", ActorID: "user1"},
		Catalog: catalogStub{updateFn: func(_ context.Context, ws, _, id string, rules []float64) (*catalog.ClientService, error) {
			if len(rules) == 0 {
				return nil, catalog.ErrInvalidRules
			}
			return &catalog.ClientService{ID: id, WorkspaceID: ws, ReminderRules: []int{30, 7}}, nil
		}},
	})

	code, env := do(t, h, http.MethodPatch, "/api/services/svc1/reminder-rules", `{"reminderRules":[7,30,7]}`, nil)
	require.Equal(t, http.StatusOK, code)
	var svc catalog.ClientService
	require.NoError(t, json.Unmarshal(env.Data, &svc))
	require.Equal(t, []int{30, 7}, svc.ReminderRules)

	code, env = do(t, h, http.MethodPatch, "/api/services/svc1/reminder-rules", `{"reminderRules":[]}`, nil)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, CodeValidation, env.Error.Code)
}

func TestRequestID_Generated(t *testing.T) {
	h := NewServer(Config{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}
