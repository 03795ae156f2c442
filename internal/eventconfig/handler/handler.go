// Package handler exposes the public event configuration endpoint.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"regdesk/internal/eventconfig"
	dErrors "regdesk/pkg/domain-errors"
	"regdesk/pkg/platform/httputil"
	"regdesk/pkg/requestcontext"
)

// Resolver yields the current configuration snapshot.
type Resolver interface {
	Resolve(ctx context.Context) (eventconfig.Snapshot, error)
}

type Handler struct {
	logger   *slog.Logger
	resolver Resolver
}

func New(resolver Resolver, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, resolver: resolver}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/event", h.handleGetEvent)
}

// eventResponse is the sanitized public view of the snapshot. Admin emails
// never leave the server.
type eventResponse struct {
	EventName        string                    `json:"event_name"`
	EventSubtitle    string                    `json:"event_subtitle,omitempty"`
	EventDate        string                    `json:"event_date,omitempty"`
	EventDescription string                    `json:"event_description,omitempty"`
	Currency         string                    `json:"currency"`
	TicketPrice      int64                     `json:"ticket_price"`
	Offers           []eventconfig.Offer       `json:"offers,omitempty"`
	Categories       []string                  `json:"categories"`
	UPIID            string                    `json:"upi_id,omitempty"`
	UPIName          string                    `json:"upi_name,omitempty"`
	SupportEmail     string                    `json:"support_email,omitempty"`
	SupportPhone     string                    `json:"support_phone,omitempty"`
	HelpContacts     []eventconfig.HelpContact `json:"help_contacts,omitempty"`
}

func (h *Handler) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	snap, err := h.resolver.Resolve(ctx)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeUnavailable) {
			h.logger.ErrorContext(ctx, "failed to resolve event configuration",
				"request_id", requestcontext.RequestID(ctx),
				"error", err.Error(),
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, eventResponse{
		EventName:        snap.EventName,
		EventSubtitle:    snap.EventSubtitle,
		EventDate:        snap.EventDate,
		EventDescription: snap.EventDescription,
		Currency:         snap.Currency,
		TicketPrice:      snap.TicketPrice,
		Offers:           snap.Offers,
		Categories:       snap.Categories,
		UPIID:            snap.UPIID,
		UPIName:          snap.UPIName,
		SupportEmail:     snap.SupportEmail,
		SupportPhone:     snap.SupportPhone,
		HelpContacts:     snap.HelpContacts,
	})
}
