package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/planetsapi/planets/internal/auth"
	"github.com/planetsapi/planets/internal/model"
)

// TokenVerifier validates a bearer token.
type TokenVerifier interface {
	Verify(token string) (*model.Principal, error)
}

// BearerConfig holds configuration for RequireBearer.
type BearerConfig struct {
	Logger   *slog.Logger
	Verifier TokenVerifier
}

// RequireBearer rejects requests without a valid "Authorization: Bearer <token>" header
// with 401 before next runs. The verified principal is stored in the request context.
func RequireBearer(cfg BearerConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, reason := extractBearer(r)
			if reason != "" {
				logAuthFailure(cfg.Logger, r, reason)
				writeAuthError(w)
				return
			}

			principal, err := cfg.Verifier.Verify(token)
			if err != nil {
				reason := "invalid_token"
				if errors.Is(err, auth.ErrTokenExpired) {
					reason = "expired_token"
				}
				logAuthFailure(cfg.Logger, r, reason)
				writeAuthError(w)
				return
			}

			ctx := auth.ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearer returns the token or the reason it could not be read.
func extractBearer(r *http.Request) (token, reason string) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", "missing_token"
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", "malformed_header"
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", "malformed_header"
	}
	return token, ""
}

func logAuthFailure(logger *slog.Logger, r *http.Request, reason string) {
	logger.Warn("authentication failed",
		slog.String("reason", reason),
		slog.String("ip", clientIP(r)),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="planets"`)
	writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid access token")
}
