package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"regdesk/internal/registration"
	"regdesk/pkg/domain"
	dErrors "regdesk/pkg/domain-errors"
	"regdesk/pkg/platform/httputil"
	"regdesk/pkg/requestcontext"
)

// Service defines the submission operations the handler depends on.
type Service interface {
	Submit(ctx context.Context, sub registration.Submission) (*registration.Registration, error)
	AttachPaymentReference(ctx context.Context, id domain.RegistrationID, reference string) (*registration.Registration, error)
}

// Handler wires the public submission endpoints to the registration service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts submission endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/registrations", h.HandleSubmit)
	r.Post("/registrations/{id}/payment", h.HandleAttachPayment)
}

// HandleSubmit handles POST /registrations. When the caller presented a
// verified identity assertion, its email overrides whatever the body claims.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[SubmitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	sub := req.Submission()
	if ident := requestcontext.Identity(ctx); ident.Email != "" {
		sub.Email = ident.Email
		if sub.DisplayName == "" {
			sub.DisplayName = ident.DisplayName
		}
	}

	reg, err := h.service.Submit(ctx, sub)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnavailable) || dErrors.HasCode(err, dErrors.CodeConfiguration) {
			h.logger.ErrorContext(ctx, "submission failed",
				"request_id", requestID,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "submission accepted",
		"request_id", requestID,
		"registration_id", reg.ID.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, FromRegistration(reg))
}

// HandleAttachPayment handles POST /registrations/{id}/payment.
func (h *Handler) HandleAttachPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	regID, err := domain.ParseRegistrationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[PaymentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	reg, err := h.service.AttachPaymentReference(ctx, regID, req.PaymentReference)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnavailable) {
			h.logger.ErrorContext(ctx, "payment attach failed",
				"request_id", requestID,
				"registration_id", regID.String(),
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromRegistration(reg))
}
