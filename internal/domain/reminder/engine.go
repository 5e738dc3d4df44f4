package reminder

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mtxos/opsboard/internal/domain/notification"
)

// RunMessage is reported with every successful run.
const RunMessage = "Reminder notifications processed"

// Engine generates renewal, task-due and inactivity notifications.
type Engine struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source used to evaluate rules.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator overrides how notification IDs are minted.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// NewEngine creates a reminder engine.
func NewEngine(repo Repository, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	e := &Engine{
		repo:   repo,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunOptions selects what a run scans. An empty WorkspaceID scans every workspace.
type RunOptions struct {
	WorkspaceID string
}

// Result summarizes a run. Generated counts rows actually inserted, so a
// repeated run over unchanged data reports 0.
type Result struct {
	Generated  int                       `json:"generated"`
	Candidates int                       `json:"candidates"`
	ByType     map[notification.Type]int `json:"byType"`
	Message    string                    `json:"message"`
}

// Run scans the selected workspaces and inserts every fired candidate that
// doesn't already exist. Nothing is written unless all scans succeed.
func (e *Engine) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	now := e.now()

	workspaces := []string{opts.WorkspaceID}
	if opts.WorkspaceID == "" {
		ids, err := e.repo.ListWorkspaceIDs(ctx)
		if err != nil {
			return nil, e.fail(readFailure(StageWorkspaces, "", err))
		}
		workspaces = ids
	}

	var candidates []notification.Notification
	for _, ws := range workspaces {
		found, err := e.Scan(ctx, ws, now)
		if err != nil {
			return nil, e.fail(err)
		}
		candidates = append(candidates, found...)
	}

	result := &Result{
		Candidates: len(candidates),
		ByType:     make(map[notification.Type]int),
		Message:    RunMessage,
	}
	for _, c := range candidates {
		result.ByType[c.Type]++
	}

	if len(candidates) > 0 {
		stamped := now.UTC()
		for i := range candidates {
			candidates[i].ID = e.newID()
			candidates[i].CreatedAt = stamped
			candidates[i].UpdatedAt = stamped
		}
		inserted, err := e.repo.InsertNotificationsSkippingDuplicates(ctx, candidates)
		if err != nil {
			return nil, e.fail(writeFailure(StagePersist, err))
		}
		result.Generated = inserted
	}

	e.logger.Info("reminder run complete",
		"workspaces", len(workspaces),
		"candidates", result.Candidates,
		"generated", result.Generated,
	)
	return result, nil
}

// Scan computes the candidates for one workspace without writing anything.
func (e *Engine) Scan(ctx context.Context, workspaceID string, now time.Time) ([]notification.Notification, error) {
	services, err := e.repo.ListActiveServicesWithRenewalDue(ctx, workspaceID)
	if err != nil {
		return nil, readFailure(StageRenewal, workspaceID, err)
	}
	candidates := RenewalCandidates(services, now)

	tasks, err := e.repo.ListOpenTasksWithDueDate(ctx, workspaceID)
	if err != nil {
		return nil, readFailure(StageTaskDue, workspaceID, err)
	}
	candidates = append(candidates, TaskDueCandidates(tasks, now)...)

	clients, err := e.repo.ListActiveClients(ctx, workspaceID)
	if err != nil {
		return nil, readFailure(StageInactivity, workspaceID, err)
	}
	if len(clients) > 0 {
		ids := make([]string, len(clients))
		for i, c := range clients {
			ids[i] = c.ID
		}
		latest, err := e.repo.LatestActivityByClient(ctx, workspaceID, ids)
		if err != nil {
			return nil, readFailure(StageInactivity, workspaceID, err)
		}
		candidates = append(candidates, InactivityCandidates(clients, latest, now)...)
	}

	e.logger.Debug("workspace scanned", "workspace_id", workspaceID, "candidates", len(candidates))
	return candidates, nil
}

func (e *Engine) fail(err error) error {
	if se, ok := err.(*StageError); ok {
		e.logger.Error("reminder run failed",
			"stage", se.Stage,
			"workspace_id", se.WorkspaceID,
			"error", se.Err,
		)
	}
	return err
}
