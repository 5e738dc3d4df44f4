package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/mtxos/opsboard/internal/domain/activity"
	"github.com/mtxos/opsboard/internal/domain/catalog"
	"github.com/mtxos/opsboard/internal/domain/notification"
	"github.com/mtxos/opsboard/internal/domain/reminder"
	"github.com/mtxos/opsboard/internal/identity"
)

// ReminderRunner runs the reminder engine.
type ReminderRunner interface {
	Run(ctx context.Context, opts reminder.RunOptions) (*reminder.Result, error)
}

// NotificationService defines inbox operations needed by MCP.
type NotificationService interface {
	List(ctx context.Context, workspaceID string, opts notification.ListOptions) ([]notification.Notification, error)
	Snooze(ctx context.Context, workspaceID, actorID, id string, minutes *int) (*notification.Notification, error)
	MarkHandled(ctx context.Context, workspaceID, actorID, id string) (*notification.Notification, error)
}

// CatalogService defines service catalog operations needed by MCP.
type CatalogService interface {
	GetService(ctx context.Context, workspaceID, id string) (*catalog.ClientService, error)
	UpdateReminderRules(ctx context.Context, workspaceID, actorID, id string, rules []float64) (*catalog.ClientService, error)
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, workspaceID string, opts activity.ListOptions) ([]activity.Entry, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Reminders     ReminderRunner
	Notifications NotificationService
	Catalog       CatalogService
	Activity      ActivityService
}

// Config contains server configuration.
type Config struct {
	Services         Services
	Resolver         identity.Resolver
	AuthEnabled      bool
	TransportMode    string // "stdio" or "http"
	DefaultPrincipal identity.Principal
	Version          string
	Logger           *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "opsboard",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Stdio is local-only, so it always acts as the default principal.
	auth := noAuthMiddleware(cfg.DefaultPrincipal)
	if cfg.TransportMode != "stdio" && cfg.AuthEnabled {
		auth = authMiddleware(cfg.Resolver)
	}
	// The first middleware runs first, so traffic logs see the principal.
	server.AddReceivingMiddleware(auth, trafficLogger(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLogger(cfg.Logger, "outbound"))

	registerTools(server, cfg.Services)

	return server
}
