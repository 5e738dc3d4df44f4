package testserver

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/mtxos/opsboard/internal/domain/catalog"
	"github.com/mtxos/opsboard/internal/domain/notification"
	"github.com/mtxos/opsboard/internal/identity"
	"github.com/mtxos/opsboard/internal/transport"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	OK        bool                 `json:"ok"`
	Data      json.RawMessage      `json:"data"`
	RequestID string               `json:"requestId"`
	Error     *transport.ErrorBody `json:"error"`
}

func decode(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

var (
	principal = identity.Principal{WorkspaceID: "ws1", ActorID: "user1"}
	clock     = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
)

func seeded(t *testing.T) *TestServer {
	ts := New(t, "key-1", principal, clock)
	ts.AddClient("c1", "Acme", 2)
	ts.AddService("c1", "s1", "Hosting", "Hetzner", 30, "")
	ts.AddTask("c1", "t1", "Renew SSL", 3)
	ts.AddClient("c2", "Dormant Co", 45)
	return ts
}

func cron(t *testing.T, ts *TestServer) (int, string) {
	t.Helper()
	resp := ts.Do(http.MethodPost, "/api/cron/notifications", "", false, map[string]string{transport.CronSecretHeader: CronSecret})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	env := decode(t, resp)
	var data struct {
		Generated int    `json:"generated"`
		Message   string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.Generated, data.Message
}

func listNotifications(t *testing.T, ts *TestServer, query string) []notification.Notification {
	t.Helper()
	resp := ts.Do(http.MethodGet, "/api/notifications"+query, "", true, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Notifications []notification.Notification `json:"notifications"`
	}
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &body))
	return body.Notifications
}

func TestCronGeneratesOnceAndInboxWorkflow(t *testing.T) {
	ts := seeded(t)

	resp := ts.Do(http.MethodPost, "/api/cron/notifications", "", false, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	generated, message := cron(t, ts)
	require.Equal(t, 3, generated)
	require.Equal(t, "Reminder notifications processed", message)

	generated, _ = cron(t, ts)
	require.Equal(t, 0, generated)

	list := listNotifications(t, ts, "")
	require.Len(t, list, 3)
	byType := map[notification.Type]notification.Notification{}
	for _, n := range list {
		require.Equal(t, notification.StatusOpen, n.Status)
		byType[n.Type] = n
	}
	require.Equal(t, "renewal:s1:30:2026-04-09", byType[notification.TypeRenewal].DedupeKey)
	require.Equal(t, "task:t1:due-3:2026-03-13", byType[notification.TypeTask].DedupeKey)
	require.Equal(t, "inactivity:c2:bucket-2", byType[notification.TypeInactivity].DedupeKey)

	renewalID := byType[notification.TypeRenewal].ID
	resp = ts.Do(http.MethodPost, "/api/notifications/"+renewalID+"/snooze", `{"minutes":120}`, true, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.Do(http.MethodPost, "/api/notifications/"+renewalID+"/mark-handled", "", true, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.Do(http.MethodPost, "/api/notifications/"+renewalID+"/mark-handled", "", true, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, transport.CodeConflict, decode(t, resp).Error.Code)

	handled := listNotifications(t, ts, "?status=HANDLED")
	require.Len(t, handled, 1)
	require.Equal(t, "user1", *handled[0].HandledByID)

	// Handled notifications still block their dedupe key.
	generated, _ = cron(t, ts)
	require.Equal(t, 0, generated)
}

func TestAPIRequiresKey(t *testing.T) {
	ts := seeded(t)

	resp := ts.Do(http.MethodGet, "/api/notifications", "", false, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, transport.CodeUnauthorized, decode(t, resp).Error.Code)
}

func TestUpdateReminderRulesChangesRenewalOffsets(t *testing.T) {
	ts := seeded(t)

	resp := ts.Do(http.MethodPatch, "/api/services/s1/reminder-rules", `{"reminderRules":[10,30,30,45.0]}`, true, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var svc catalog.ClientService
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &svc))
	require.Equal(t, []int{45, 30, 10}, svc.ReminderRules)

	resp = ts.Do(http.MethodPatch, "/api/services/s1/reminder-rules", `{"reminderRules":[400]}`, true, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.Do(http.MethodPatch, "/api/services/missing/reminder-rules", `{"reminderRules":[7]}`, true, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMCPOverHTTP(t *testing.T) {
	ts := seeded(t)
	cs := ts.ConnectMCP()
	ctx := context.Background()

	res, err := cs.CallTool(ctx, &sdkmcp.CallToolParams{Name: "run_reminders", Arguments: map[string]any{}})
	require.NoError(t, err)
	require.False(t, res.IsError)

	res, err = cs.CallTool(ctx, &sdkmcp.CallToolParams{Name: "list_notifications", Arguments: map[string]any{"type": "TASK"}})
	require.NoError(t, err)
	require.False(t, res.IsError)

	var out struct {
		Notifications []notification.Notification `json:"notifications"`
	}
	text := res.Content[0].(*sdkmcp.TextContent).Text
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	require.Len(t, out.Notifications, 1)
	require.Equal(t, "Task due in 3 days", out.Notifications[0].Title)
}
