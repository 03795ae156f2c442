package eventconfig

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "regdesk/pkg/domain-errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validSnapshot() Snapshot {
	return Snapshot{
		Version:     3,
		EventName:   "Tarang#1",
		Currency:    "INR",
		TicketPrice: 8500,
		Categories:  []string{"2025 batch", "2026 batch"},
		AdminEmails: []string{"Admin@Example.com"},
	}
}

func TestResolver_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("returns validated snapshot", func(t *testing.T) {
		r := NewResolver(&StaticSource{Snap: validSnapshot()}, testLogger())
		snap, err := r.Resolve(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(8500), snap.TicketPrice)
		assert.True(t, snap.HasCategory("2025 batch"))
	})

	t.Run("source failure maps to unavailable", func(t *testing.T) {
		r := NewResolver(&StaticSource{Err: errors.New("connection refused")}, testLogger())
		_, err := r.Resolve(ctx)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	})

	t.Run("non-positive ticket price is a configuration error", func(t *testing.T) {
		snap := validSnapshot()
		snap.TicketPrice = 0
		r := NewResolver(&StaticSource{Snap: snap}, testLogger())
		_, err := r.Resolve(ctx)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConfiguration))
	})

	t.Run("empty category list is a configuration error", func(t *testing.T) {
		snap := validSnapshot()
		snap.Categories = nil
		r := NewResolver(&StaticSource{Snap: snap}, testLogger())
		_, err := r.Resolve(ctx)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConfiguration))
	})

	t.Run("inverted offer window is a configuration error", func(t *testing.T) {
		snap := validSnapshot()
		now := time.Now()
		snap.Offers = []Offer{{Name: "late", Price: 9000, StartsAt: now, EndsAt: now.Add(-time.Hour)}}
		r := NewResolver(&StaticSource{Snap: snap}, testLogger())
		_, err := r.Resolve(ctx)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConfiguration))
	})

	t.Run("defaults currency when omitted", func(t *testing.T) {
		snap := validSnapshot()
		snap.Currency = ""
		r := NewResolver(&StaticSource{Snap: snap}, testLogger())
		resolved, err := r.Resolve(ctx)
		require.NoError(t, err)
		assert.Equal(t, "INR", resolved.Currency)
	})
}

func TestSnapshot_IsAdmin(t *testing.T) {
	snap := validSnapshot()

	t.Run("membership is case-insensitive and trimmed", func(t *testing.T) {
		assert.True(t, snap.IsAdmin("  admin@example.COM "))
	})

	t.Run("unknown email is not admin", func(t *testing.T) {
		assert.False(t, snap.IsAdmin("someone@example.com"))
	})

	t.Run("empty email is never admin", func(t *testing.T) {
		assert.False(t, snap.IsAdmin("   "))
	})
}

func TestOffer_Active(t *testing.T) {
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(7 * 24 * time.Hour)
	offer := Offer{Name: "early bird", Price: 7500, StartsAt: start, EndsAt: end}

	assert.True(t, offer.Active("2025 batch", start))
	assert.True(t, offer.Active("2025 batch", end.Add(-time.Second)))
	assert.False(t, offer.Active("2025 batch", end), "window end is exclusive")
	assert.False(t, offer.Active("2025 batch", start.Add(-time.Second)))

	scoped := offer
	scoped.Categories = []string{"2026 batch"}
	assert.False(t, scoped.Active("2025 batch", start))
	assert.True(t, scoped.Active("2026 batch", start))
}
