package transport

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/mtxos/opsboard/internal/domain/reminder"
)

// CronSecretHeader authenticates scheduler callers of the cron endpoint.
const CronSecretHeader = "x-cron-secret"

type cronResponse struct {
	Generated int    `json:"generated"`
	Message   string `json:"message"`
}

func (s *Server) handleCron(w http.ResponseWriter, r *http.Request) {
	if s.cronSecret != "" {
		got := r.Header.Get(CronSecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.cronSecret)) != 1 {
			WriteError(w, r, http.StatusForbidden, CodeForbidden, "Invalid cron secret", nil)
			return
		}
	}

	res, err := s.reminders.Run(r.Context(), reminder.RunOptions{})
	if err != nil {
		attrs := []any{"request_id", RequestIDFromContext(r.Context()), "error", err}
		var stageErr *reminder.StageError
		if errors.As(err, &stageErr) {
			attrs = append(attrs, "stage", string(stageErr.Stage), "workspace_id", stageErr.WorkspaceID)
		}
		s.logger.Error("notification cron failed", attrs...)
		WriteError(w, r, http.StatusInternalServerError, CodeInternal, "Notification cron failed", nil)
		return
	}

	WriteOK(w, r, cronResponse{Generated: res.Generated, Message: res.Message})
}
