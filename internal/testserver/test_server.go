// Package testserver runs the full HTTP stack over an in-memory SQLite
// database for end-to-end tests.
package testserver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/mtxos/opsboard/internal/domain/activity"
	"github.com/mtxos/opsboard/internal/domain/catalog"
	"github.com/mtxos/opsboard/internal/domain/notification"
	"github.com/mtxos/opsboard/internal/domain/reminder"
	"github.com/mtxos/opsboard/internal/identity"
	"github.com/mtxos/opsboard/internal/mcp"
	"github.com/mtxos/opsboard/internal/sqlite"
	"github.com/mtxos/opsboard/internal/transport"
	"github.com/stretchr/testify/require"
)

// CronSecret is the secret the test server's cron endpoint expects.
const CronSecret = "test-cron-secret"

type TestServer struct {
	Server    *httptest.Server
	DB        *sqlite.DB
	Token     string
	Principal identity.Principal
	// Now is the reminder engine's clock.
	Now time.Time

	t *testing.T
}

// New starts a server with auth enabled and one API key for principal.
func New(t *testing.T, token string, principal identity.Principal, now time.Time) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)

	apiKeys := sqlite.NewAPIKeyRepository(db)
	activityRepo := sqlite.NewActivityRepository(db)

	engine := reminder.NewEngine(sqlite.NewReminderRepository(db), nil, reminder.WithClock(func() time.Time { return now }))
	notificationSvc := notification.NewService(sqlite.NewNotificationRepository(db), activityRepo, nil)
	catalogSvc := catalog.NewService(sqlite.NewCatalogRepository(db), activityRepo, nil)
	activitySvc := activity.NewService(activityRepo, nil)

	mcpServer := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Reminders:     engine,
			Notifications: notificationSvc,
			Catalog:       catalogSvc,
			Activity:      activitySvc,
		},
		Resolver:      apiKeys,
		AuthEnabled:   true,
		TransportMode: "http",
	})
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{Stateless: true},
	)

	server := httptest.NewServer(transport.NewServer(transport.Config{
		Reminders:     engine,
		Notifications: notificationSvc,
		Catalog:       catalogSvc,
		Resolver:      apiKeys,
		AuthEnabled:   true,
		CronSecret:    CronSecret,
		MCP:           mcpHandler,
	}))

	ts := &TestServer{
		Server:    server,
		DB:        db,
		Token:     token,
		Principal: principal,
		Now:       now,
		t:         t,
	}

	ctx := context.Background()
	require.NoError(t, apiKeys.EnsureWorkspace(ctx, principal.WorkspaceID, principal.WorkspaceID))
	require.NoError(t, apiKeys.Create(ctx, token, principal, "test key"))

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return ts
}

func (ts *TestServer) exec(query string, args ...any) {
	ts.t.Helper()
	_, err := ts.DB.ExecContext(context.Background(), query, args...)
	require.NoError(ts.t, err)
}

// AddClient inserts an ACTIVE client last edited daysAgo days before Now.
func (ts *TestServer) AddClient(id, name string, daysAgo int) {
	ts.t.Helper()
	updated := ts.Now.AddDate(0, 0, -daysAgo).UTC()
	ts.exec(`INSERT INTO clients (id, workspace_id, name, status, created_at, updated_at) VALUES (?, ?, ?, 'ACTIVE', ?, ?)`,
		id, ts.Principal.WorkspaceID, name, updated, updated)
}

// AddService inserts an ACTIVE service renewing inDays days after Now.
// An empty rules string stores NULL.
func (ts *TestServer) AddService(clientID, id, name, provider string, inDays int, rules string) {
	ts.t.Helper()
	renewal := ts.Now.AddDate(0, 0, inDays).UTC()
	var rulesArg any
	if rules != "" {
		rulesArg = rules
	}
	ts.exec(`INSERT INTO services (id, client_id, name, provider, status, renewal_date, reminder_rules, created_at, updated_at)
		VALUES (?, ?, ?, ?, 'ACTIVE', ?, ?, ?, ?)`,
		id, clientID, name, provider, renewal, rulesArg, ts.Now.UTC(), ts.Now.UTC())
}

// AddTask inserts a TODO task due inDays days after Now.
func (ts *TestServer) AddTask(clientID, id, title string, inDays int) {
	ts.t.Helper()
	due := ts.Now.AddDate(0, 0, inDays).UTC()
	ts.exec(`INSERT INTO tasks (id, workspace_id, client_id, title, status, due_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, 'TODO', ?, ?, ?)`,
		id, ts.Principal.WorkspaceID, clientID, title, due, ts.Now.UTC(), ts.Now.UTC())
}

// Do sends a request, with the API key unless auth is false.
func (ts *TestServer) Do(method, path, body string, auth bool, headers map[string]string) *http.Response {
	ts.t.Helper()
	req, err := http.NewRequest(method, ts.Server.URL+path, strings.NewReader(body))
	require.NoError(ts.t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		req.Header.Set("Authorization", "Bearer "+ts.Token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(ts.t, err)
	ts.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// ConnectMCP opens an MCP client session over streamable HTTP using the API key.
func (ts *TestServer) ConnectMCP() *sdkmcp.ClientSession {
	ts.t.Helper()
	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "testserver", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(context.Background(), &sdkmcp.StreamableClientTransport{
		Endpoint:   ts.Server.URL + "/mcp",
		HTTPClient: &http.Client{Transport: bearerTransport{token: ts.Token}},
	}, nil)
	require.NoError(ts.t, err)
	ts.t.Cleanup(func() { _ = cs.Close() })
	return cs
}

type bearerTransport struct {
	token string
}

func (b bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+b.token)
	return http.DefaultTransport.RoundTrip(req)
}
