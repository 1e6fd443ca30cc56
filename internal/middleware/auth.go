package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/adoptly/adoptly/internal/auth"
	"github.com/adoptly/adoptly/internal/metrics"
	"github.com/adoptly/adoptly/internal/model"
)

// Auditor records best-effort audit events without blocking the request.
type Auditor interface {
	PublishAsync(event model.AuditEvent)
}

// AuthConfig holds configuration for the auth middleware.
// Auditor may be nil; successful authentications are then not audited.
type AuthConfig struct {
	Logger  *slog.Logger
	Tokens  *auth.TokenService
	Metrics metrics.Recorder
	Auditor Auditor
}

// Auth returns a middleware that authenticates requests by verifying the
// bearer token from the Authorization header and injecting the resulting
// identity into the request context.
//
// Verification is purely local: signature and expiry checks against the
// signing secret, no store lookup. Failures are distinguished for clients:
// a missing or malformed header, a bad token, and an expired token each get
// their own error code, all under 401.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := extractBearerToken(r)
			if !ok {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "missing_token"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				recorder.IncTokenRejected("missing")
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
				return
			}

			identity, err := cfg.Tokens.Verify(token)
			if err != nil {
				if errors.Is(err, auth.ErrTokenExpired) {
					cfg.Logger.Warn("authentication failed",
						slog.String("reason", "token_expired"),
						slog.String("ip", r.RemoteAddr),
						slog.String("endpoint", r.Method+" "+r.URL.Path),
						slog.String("request_id", GetRequestID(r.Context())),
					)
					recorder.IncTokenRejected("expired")
					writeError(w, http.StatusUnauthorized, "TOKEN_EXPIRED", "Token has expired")
					return
				}

				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "invalid_token"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				recorder.IncTokenRejected("invalid")
				writeError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid token")
				return
			}

			if cfg.Auditor != nil {
				cfg.Auditor.PublishAsync(model.AuditEvent{
					Actor:      identity.ID,
					Action:     model.AuditActionAuthenticated,
					Subject:    r.Method + " " + r.URL.Path,
					OccurredAt: time.Now().UTC(),
				})
			}

			ctx := auth.ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken extracts the bearer token from the Authorization
// header. Only the "Bearer <token>" scheme is accepted.
func extractBearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if token == "" {
		return "", false
	}
	return token, true
}
