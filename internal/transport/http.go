package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mtxos/opsboard/internal/domain/catalog"
	"github.com/mtxos/opsboard/internal/domain/notification"
	"github.com/mtxos/opsboard/internal/domain/reminder"
	"github.com/mtxos/opsboard/internal/identity"
)

// ReminderRunner runs the reminder engine.
type ReminderRunner interface {
	Run(ctx context.Context, opts reminder.RunOptions) (*reminder.Result, error)
}

// NotificationService defines inbox operations exposed over HTTP.
type NotificationService interface {
	List(ctx context.Context, workspaceID string, opts notification.ListOptions) ([]notification.Notification, error)
	Snooze(ctx context.Context, workspaceID, actorID, id string, minutes *int) (*notification.Notification, error)
	MarkHandled(ctx context.Context, workspaceID, actorID, id string) (*notification.Notification, error)
}

// CatalogService defines service catalog writes exposed over HTTP.
type CatalogService interface {
	UpdateReminderRules(ctx context.Context, workspaceID, actorID, id string, rules []float64) (*catalog.ClientService, error)
}

// Config wires the HTTP server.
type Config struct {
	Reminders     ReminderRunner
	Notifications NotificationService
	Catalog       CatalogService

	// Resolver authenticates /api requests when AuthEnabled is set;
	// otherwise every request acts as DefaultPrincipal.
	Resolver         identity.Resolver
	AuthEnabled      bool
	DefaultPrincipal identity.Principal

	CronSecret string
	// MCP, when set, is mounted at /mcp.
	MCP    http.Handler
	Logger *slog.Logger
}

// Server holds the HTTP handlers.
type Server struct {
	reminders     ReminderRunner
	notifications NotificationService
	catalog       CatalogService
	cronSecret    string
	logger        *slog.Logger
}

// NewServer creates the HTTP router.
func NewServer(cfg Config) *chi.Mux {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	srv := &Server{
		reminders:     cfg.Reminders,
		notifications: cfg.Notifications,
		catalog:       cfg.Catalog,
		cronSecret:    cfg.CronSecret,
		logger:        logger,
	}

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)

	r.Get("/health", srv.handleHealth)
	r.Get("/api/cron/notifications", srv.handleCron)
	r.Post("/api/cron/notifications", srv.handleCron)

	r.Group(func(r chi.Router) {
		if cfg.AuthEnabled {
			r.Use(AuthMiddleware(cfg.Resolver))
		} else {
			r.Use(StaticPrincipalMiddleware(cfg.DefaultPrincipal))
		}
		r.Get("/api/notifications", srv.handleListNotifications)
		r.Post("/api/notifications/{id}/snooze", srv.handleSnooze)
		r.Post("/api/notifications/{id}/mark-handled", srv.handleMarkHandled)
		r.Patch("/api/services/{id}/reminder-rules", srv.handleUpdateReminderRules)
	})

	if cfg.MCP != nil {
		r.Handle("/mcp", cfg.MCP)
		r.Handle("/mcp/*", cfg.MCP)
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	principal, ok := identity.FromContext(r.Context())
	if !ok {
		WriteError(w, r, http.StatusUnauthorized, CodeUnauthorized, "unauthorized", nil)
		return
	}

	var opts notification.ListOptions
	q := r.URL.Query()
	if v := q.Get("type"); v != "" {
		t := notification.Type(v)
		opts.Type = &t
	}
	if v := q.Get("status"); v != "" {
		st := notification.Status(v)
		opts.Status = &st
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			WriteError(w, r, http.StatusBadRequest, CodeValidation, "limit must be an integer", nil)
			return
		}
		opts.Limit = limit
	}

	list, err := s.notifications.List(r.Context(), principal.WorkspaceID, opts)
	if err != nil {
		s.fail(w, r, "list notifications", err)
		return
	}
	if list == nil {
		list = []notification.Notification{}
	}
	WriteOK(w, r, notificationList{Notifications: list})
}

type notificationList struct {
	Notifications []notification.Notification `json:"notifications"`
}

// Minutes is optional; an absent value selects the default length.
type snoozeRequest struct {
	Minutes *int `json:"minutes"`
}

func (s *Server) handleSnooze(w http.ResponseWriter, r *http.Request) {
	principal, ok := identity.FromContext(r.Context())
	if !ok {
		WriteError(w, r, http.StatusUnauthorized, CodeUnauthorized, "unauthorized", nil)
		return
	}

	var req snoozeRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, CodeValidation, "invalid request body", nil)
		return
	}

	n, err := s.notifications.Snooze(r.Context(), principal.WorkspaceID, principal.ActorID, chi.URLParam(r, "id"), req.Minutes)
	if err != nil {
		s.fail(w, r, "snooze notification", err)
		return
	}
	WriteOK(w, r, n)
}

func (s *Server) handleMarkHandled(w http.ResponseWriter, r *http.Request) {
	principal, ok := identity.FromContext(r.Context())
	if !ok {
		WriteError(w, r, http.StatusUnauthorized, CodeUnauthorized, "unauthorized", nil)
		return
	}

	n, err := s.notifications.MarkHandled(r.Context(), principal.WorkspaceID, principal.ActorID, chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, "mark notification handled", err)
		return
	}
	WriteOK(w, r, n)
}

type reminderRulesRequest struct {
	ReminderRules []float64 `json:"reminderRules"`
}

func (s *Server) handleUpdateReminderRules(w http.ResponseWriter, r *http.Request) {
	principal, ok := identity.FromContext(r.Context())
	if !ok {
		WriteError(w, r, http.StatusUnauthorized, CodeUnauthorized, "unauthorized", nil)
		return
	}

	var req reminderRulesRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, CodeValidation, "invalid request body", nil)
		return
	}

	svc, err := s.catalog.UpdateReminderRules(r.Context(), principal.WorkspaceID, principal.ActorID, chi.URLParam(r, "id"), req.ReminderRules)
	if err != nil {
		s.fail(w, r, "update reminder rules", err)
		return
	}
	WriteOK(w, r, svc)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	s.logger.Warn(op+" failed", "request_id", RequestIDFromContext(r.Context()), "error", err)
	writeDomainError(w, r, err)
}

// decodeBody decodes a JSON body; an empty body leaves out untouched.
func decodeBody(r *http.Request, out any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(out)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
