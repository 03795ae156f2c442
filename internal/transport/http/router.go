// Package httptransport composes the HTTP surface: public submission and
// event endpoints, the admin moderation surface, and operational endpoints.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	approvalhandler "regdesk/internal/approval/handler"
	eventhandler "regdesk/internal/eventconfig/handler"
	reghandler "regdesk/internal/registration/handler"
	"regdesk/pkg/platform/middleware/identityauth"
	"regdesk/pkg/platform/middleware/request"
	"regdesk/pkg/platform/middleware/requesttime"
)

const requestTimeout = 15 * time.Second

// Deps carries everything the router mounts.
type Deps struct {
	Logger       *slog.Logger
	Verifier     identityauth.Verifier
	Event        *eventhandler.Handler
	Registration *reghandler.Handler
	Approval     *approvalhandler.Handler
	// Health reports readiness of the backing store; nil means always ready.
	Health func() error
}

// NewRouter wires the middleware chain and all endpoints. Submission routes
// accept an optional identity assertion; admin routes require one.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(d.Logger))
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(request.Logger(d.Logger))
	r.Use(request.Timeout(requestTimeout))
	r.Use(request.ContentTypeJSON)

	r.Get("/healthz", handleHealth(d.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	d.Event.Register(r)

	r.Group(func(r chi.Router) {
		r.Use(identityauth.Optional(d.Verifier, d.Logger))
		d.Registration.Register(r)
	})

	// Moderation routes share the /registrations prefix but are method-distinct
	// from the public ones, so the chains never overlap.
	r.Group(func(r chi.Router) {
		r.Use(identityauth.Require(d.Verifier, d.Logger))
		d.Approval.Register(r)
	})

	return r
}

func handleHealth(check func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if check != nil {
			if err := check(); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
