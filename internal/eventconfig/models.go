// Package eventconfig resolves the event-wide configuration snapshot: ticket
// price, offer windows, the category enumeration, and the admin identity set.
// The snapshot lives in a mutable external source and is re-read per request;
// nothing here caches across requests, so config changes and admin revocation
// take effect immediately.
package eventconfig

import (
	"time"

	"regdesk/pkg/domain"
)

// Offer is a configured price override. At most one offer applies to a
// submission; offers are evaluated in slice order and the first active match
// wins, so the slice order is the priority order.
type Offer struct {
	Name string `json:"name"`
	// Price is the alternate ticket price in currency minor units. Mutually
	// exclusive with PercentOff.
	Price int64 `json:"price,omitempty"`
	// PercentOff discounts the base price; the result is rounded half-up to
	// the minor unit.
	PercentOff int64 `json:"percent_off,omitempty"`
	// Categories restricts the offer to the listed categories. Empty means
	// the offer applies to every category.
	Categories []string  `json:"categories,omitempty"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
}

// Active reports whether the offer window contains now and the offer covers
// the category.
func (o Offer) Active(category string, now time.Time) bool {
	if now.Before(o.StartsAt) || !now.Before(o.EndsAt) {
		return false
	}
	if len(o.Categories) == 0 {
		return true
	}
	for _, c := range o.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// HelpContact is a named support contact shown on the public event page.
type HelpContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Post  string `json:"post"`
}

// Snapshot is one versioned read of the event configuration. It is read-only
// to the core; services receive it by value and never mutate it.
type Snapshot struct {
	Version          int    `json:"version"`
	EventName        string `json:"event_name"`
	EventSubtitle    string `json:"event_subtitle,omitempty"`
	EventDate        string `json:"event_date,omitempty"`
	EventDescription string `json:"event_description,omitempty"`

	Currency string `json:"currency"`
	// TicketPrice is the base price in currency minor units.
	TicketPrice int64   `json:"ticket_price"`
	Offers      []Offer `json:"offers,omitempty"`

	Categories  []string `json:"categories"`
	AdminEmails []string `json:"admin_emails"`

	UPIID        string        `json:"upi_id,omitempty"`
	UPIName      string        `json:"upi_name,omitempty"`
	SupportEmail string        `json:"support_email,omitempty"`
	SupportPhone string        `json:"support_phone,omitempty"`
	HelpContacts []HelpContact `json:"help_contacts,omitempty"`
}

// HasCategory reports whether category belongs to the configured enumeration.
func (s Snapshot) HasCategory(category string) bool {
	for _, c := range s.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the normalized email belongs to the admin identity
// set. Membership is checked per call against the snapshot, never cached, so
// revocation applies on the next request.
func (s Snapshot) IsAdmin(email string) bool {
	normalized := domain.NormalizeEmail(email)
	if normalized == "" {
		return false
	}
	for _, admin := range s.AdminEmails {
		if domain.NormalizeEmail(admin) == normalized {
			return true
		}
	}
	return false
}
