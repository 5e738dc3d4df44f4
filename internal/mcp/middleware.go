package mcp

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/mtxos/opsboard/internal/identity"
)

// authMiddleware implements bearer API key authentication as MCP middleware.
func authMiddleware(resolver identity.Resolver) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			// Protocol handshake carries no workspace.
			if method == "initialize" || method == "ping" || method == "notifications/initialized" {
				return next(ctx, method, req)
			}

			extra := req.GetExtra()
			if extra == nil || extra.Header == nil {
				return nil, fmt.Errorf("%w: missing headers", identity.ErrUnauthorized)
			}

			token := identity.BearerToken(extra.Header.Get("Authorization"))
			if token == "" {
				return nil, fmt.Errorf("%w: missing bearer token", identity.ErrUnauthorized)
			}

			principal, err := resolver.ResolvePrincipal(ctx, token)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", identity.ErrUnauthorized, err)
			}
			if principal.WorkspaceID == "" {
				return nil, fmt.Errorf("%w: invalid bearer token", identity.ErrUnauthorized)
			}

			return next(identity.WithPrincipal(ctx, principal), method, req)
		}
	}
}

// noAuthMiddleware injects a fixed principal when auth is disabled.
func noAuthMiddleware(principal identity.Principal) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			return next(identity.WithPrincipal(ctx, principal), method, req)
		}
	}
}

func principalFrom(ctx context.Context) (identity.Principal, error) {
	p, ok := identity.FromContext(ctx)
	if !ok {
		return identity.Principal{}, identity.ErrUnauthorized
	}
	return p, nil
}
