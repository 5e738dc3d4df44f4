package reminder

import (
	"errors"
	"fmt"
)

var (
	// ErrReadFailure marks a run that failed while reading entities.
	ErrReadFailure = errors.New("reminder read failure")
	// ErrWriteFailure marks a run that failed while inserting notifications.
	ErrWriteFailure = errors.New("reminder write failure")
)

// Stage names the step of a run that failed.
type Stage string

const (
	StageWorkspaces Stage = "workspaces"
	StageRenewal    Stage = "renewal"
	StageTaskDue    Stage = "task_due"
	StageInactivity Stage = "inactivity"
	StagePersist    Stage = "persist"
)

// StageError reports a failed run. errors.Is matches both Kind and the
// underlying cause.
type StageError struct {
	Stage       Stage
	WorkspaceID string
	Kind        error
	Err         error
}

func (e *StageError) Error() string {
	if e.WorkspaceID != "" {
		return fmt.Sprintf("%v in %s stage (workspace %s): %v", e.Kind, e.Stage, e.WorkspaceID, e.Err)
	}
	return fmt.Sprintf("%v in %s stage: %v", e.Kind, e.Stage, e.Err)
}

func (e *StageError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func readFailure(stage Stage, workspaceID string, err error) *StageError {
	return &StageError{Stage: stage, WorkspaceID: workspaceID, Kind: ErrReadFailure, Err: err}
}

func writeFailure(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Kind: ErrWriteFailure, Err: err}
}
