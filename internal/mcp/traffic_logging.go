package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/mtxos/opsboard/internal/identity"
)

// maxLoggedPayload caps the params and result text in traffic logs.
const maxLoggedPayload = 2048

// trafficLogger logs every MCP message at debug level, tagged with the
// caller's workspace, the tool being called and the handler duration.
func trafficLogger(logger *slog.Logger, direction string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if logger == nil || !logger.Enabled(ctx, slog.LevelDebug) {
				return next(ctx, method, req)
			}

			log := logger.With("direction", direction, "method", method)
			if p, ok := identity.FromContext(ctx); ok {
				log = log.With("workspace_id", p.WorkspaceID, "actor_id", p.ActorID)
			}
			if call, ok := req.(*sdkmcp.CallToolRequest); ok && call.Params != nil {
				log = log.With("tool", call.Params.Name)
			}
			if id := sessionID(req); id != "" {
				log = log.With("session_id", id)
			}
			log.Debug("mcp request", "params", payloadText(requestParams(req)))

			started := time.Now()
			result, err := next(ctx, method, req)
			if strings.HasPrefix(method, "notifications/") {
				return result, err
			}

			attrs := []any{"duration", time.Since(started), "result", payloadText(result)}
			if res, ok := result.(*sdkmcp.CallToolResult); ok && res.IsError {
				attrs = append(attrs, "tool_error", true)
			}
			if err != nil {
				attrs = append(attrs, "error", err)
			}
			log.Debug("mcp response", attrs...)
			return result, err
		}
	}
}

// sessionID and requestParams recover because some request kinds panic
// when their session or params are unset.
func sessionID(req sdkmcp.Request) (id string) {
	if req == nil {
		return ""
	}
	defer func() {
		if recover() != nil {
			id = ""
		}
	}()
	if s := req.GetSession(); s != nil {
		return s.ID()
	}
	return ""
}

func requestParams(req sdkmcp.Request) (params any) {
	if req == nil {
		return nil
	}
	defer func() {
		if recover() != nil {
			params = nil
		}
	}()
	return req.GetParams()
}

func payloadText(payload any) string {
	if payload == nil {
		return "<nil>"
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("<%T>", payload)
	}
	return truncate(string(data), maxLoggedPayload)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return fmt.Sprintf("%s...(%d bytes)", s[:cut], len(s))
}
