// Package handler exposes the admin moderation endpoints. Every route sits
// behind identity verification; allowlist membership is enforced by the
// approval service per request.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"regdesk/internal/approval"
	"regdesk/internal/registration"
	reghandler "regdesk/internal/registration/handler"
	"regdesk/pkg/domain"
	dErrors "regdesk/pkg/domain-errors"
	"regdesk/pkg/platform/httputil"
	"regdesk/pkg/requestcontext"
)

// Service defines the moderation operations the handler depends on.
type Service interface {
	Decide(ctx context.Context, id domain.RegistrationID, action approval.Action, admin domain.Identity) (*registration.Registration, error)
	Get(ctx context.Context, id domain.RegistrationID, admin domain.Identity) (*registration.Registration, error)
	List(ctx context.Context, status registration.Status, admin domain.Identity) ([]*registration.Registration, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts moderation endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/registrations/{id}/decision", h.HandleDecide)
	r.Get("/registrations/{id}", h.HandleGet)
	r.Get("/registrations", h.HandleList)
}

// DecideRequest is the HTTP request body for POST /registrations/{id}/decision.
type DecideRequest struct {
	Action string `json:"action"`

	parsedAction approval.Action
}

func (r *DecideRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "request body is required")
	}
	action, err := approval.ParseAction(r.Action)
	if err != nil {
		return err
	}
	r.parsedAction = action
	return nil
}

// listResponse wraps the moderation queue.
type listResponse struct {
	Registrations []reghandler.RegistrationResponse `json:"registrations"`
}

// HandleDecide handles POST /registrations/{id}/decision.
func (h *Handler) HandleDecide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	regID, err := domain.ParseRegistrationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[DecideRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	reg, err := h.service.Decide(ctx, regID, req.parsedAction, requestcontext.Identity(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnavailable) {
			h.logger.ErrorContext(ctx, "decision failed",
				"request_id", requestID,
				"registration_id", regID.String(),
				"action", req.Action,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "decision applied",
		"request_id", requestID,
		"registration_id", regID.String(),
		"status", string(reg.Status),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, reghandler.FromRegistration(reg))
}

// HandleGet handles GET /registrations/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	regID, err := domain.ParseRegistrationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	reg, err := h.service.Get(ctx, regID, requestcontext.Identity(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, reghandler.FromRegistration(reg))
}

// HandleList handles GET /registrations?status=pending. The status filter
// defaults to pending, the moderation queue's natural view.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := registration.StatusPending
	if raw := r.URL.Query().Get("status"); raw != "" {
		status = registration.Status(raw)
	}

	regs, err := h.service.List(ctx, status, requestcontext.Identity(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	resp := listResponse{Registrations: make([]reghandler.RegistrationResponse, 0, len(regs))}
	for _, reg := range regs {
		resp.Registrations = append(resp.Registrations, reghandler.FromRegistration(reg))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
