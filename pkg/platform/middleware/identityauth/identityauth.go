// Package identityauth turns a Bearer identity assertion into a verified
// identity on the request context. Authorization decisions (admin membership)
// stay in the services; this middleware only answers "who is calling".
package identityauth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"regdesk/pkg/domain"
	"regdesk/pkg/requestcontext"
)

// Verifier exchanges an opaque assertion token for a verified identity.
type Verifier interface {
	Verify(ctx context.Context, assertion string) (domain.Identity, error)
}

const bearerPrefix = "Bearer "

// Require rejects requests without a valid assertion. The response body is
// deliberately uniform so callers learn nothing beyond "not authorized".
func Require(verifier Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
			if !ok || token == "" {
				logger.WarnContext(ctx, "missing identity assertion",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeUnauthorized(w)
				return
			}
			ident, err := verifier.Verify(ctx, token)
			if err != nil {
				logger.WarnContext(ctx, "invalid identity assertion",
					"request_id", requestcontext.RequestID(ctx),
					"error", err.Error(),
				)
				writeUnauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(requestcontext.WithIdentity(ctx, ident)))
		})
	}
}

// Optional verifies an assertion when one is presented and otherwise lets the
// request through anonymously. A presented-but-invalid assertion is still
// rejected so a forged token can never downgrade to anonymous.
func Optional(verifier Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
			if !ok || token == "" {
				next.ServeHTTP(w, r)
				return
			}
			ident, err := verifier.Verify(ctx, token)
			if err != nil {
				logger.WarnContext(ctx, "invalid identity assertion",
					"request_id", requestcontext.RequestID(ctx),
					"error", err.Error(),
				)
				writeUnauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(requestcontext.WithIdentity(ctx, ident)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
}
