package eventconfig

import (
	"context"
	"log/slog"
	"strings"
	"time"

	dErrors "regdesk/pkg/domain-errors"
	"regdesk/pkg/requestcontext"
)

// Source is the external configuration collaborator. Implementations must be
// safe for concurrent use and must reflect external mutation on the next
// Fetch.
type Source interface {
	Fetch(ctx context.Context) (Snapshot, error)
}

const defaultFetchTimeout = 5 * time.Second

// Resolver fetches, normalizes, and validates configuration snapshots. A
// snapshot that fails validation is fatal to the request and logged for
// operator attention; it is never silently defaulted.
type Resolver struct {
	source  Source
	logger  *slog.Logger
	timeout time.Duration
}

func NewResolver(source Source, logger *slog.Logger) *Resolver {
	return &Resolver{source: source, logger: logger, timeout: defaultFetchTimeout}
}

// Resolve returns the current snapshot or a typed error: unavailable when the
// source cannot be reached, configuration_error when the snapshot is unusable.
func (r *Resolver) Resolve(ctx context.Context) (Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	snap, err := r.source.Fetch(ctx)
	if err != nil {
		r.logger.WarnContext(ctx, "configuration source unavailable",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		return Snapshot{}, dErrors.Wrap(dErrors.CodeUnavailable, "configuration source unavailable", err)
	}

	normalize(&snap)

	if err := validate(snap); err != nil {
		r.logger.ErrorContext(ctx, "configuration snapshot rejected",
			"request_id", requestcontext.RequestID(ctx),
			"version", snap.Version,
			"error", err.Error(),
		)
		return Snapshot{}, err
	}
	return snap, nil
}

func normalize(snap *Snapshot) {
	for i, c := range snap.Categories {
		snap.Categories[i] = strings.TrimSpace(c)
	}
	if snap.Currency == "" {
		snap.Currency = "INR"
	}
}

func validate(snap Snapshot) error {
	if snap.TicketPrice <= 0 {
		return dErrors.New(dErrors.CodeConfiguration, "ticket price must be positive")
	}
	if len(snap.Categories) == 0 {
		return dErrors.New(dErrors.CodeConfiguration, "category list is empty")
	}
	for _, c := range snap.Categories {
		if c == "" {
			return dErrors.New(dErrors.CodeConfiguration, "category list contains an empty entry")
		}
	}
	for _, offer := range snap.Offers {
		if !offer.StartsAt.Before(offer.EndsAt) {
			return dErrors.New(dErrors.CodeConfiguration, "offer window is inverted: "+offer.Name)
		}
		if offer.PercentOff < 0 || offer.PercentOff > 100 {
			return dErrors.New(dErrors.CodeConfiguration, "offer percent out of range: "+offer.Name)
		}
		if offer.Price < 0 {
			return dErrors.New(dErrors.CodeConfiguration, "offer price is negative: "+offer.Name)
		}
		if offer.Price == 0 && offer.PercentOff == 0 {
			return dErrors.New(dErrors.CodeConfiguration, "offer defines neither price nor percent: "+offer.Name)
		}
	}
	return nil
}
