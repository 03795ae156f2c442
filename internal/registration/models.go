// Package registration implements the submission workflow: structural and
// business-rule validation, duplicate detection on the normalized email,
// dynamic fee resolution, and record creation.
package registration

import (
	"time"

	"regdesk/pkg/domain"
)

// Status is the registration lifecycle state. Pending is the only initial
// state; Approved and Rejected are terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Terminal reports whether no further transition is permitted.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Valid reports whether s is a known status value. Used when loading rows
// from external storage.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// Submission is the raw, untrusted payload from a registrant.
type Submission struct {
	DisplayName      string `json:"display_name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Category         string `json:"category"`
	PaymentReference string `json:"payment_reference,omitempty"`
}

// Registration is one participant's submitted intent to attend. Records are
// never physically deleted; rejection is a terminal status, not erasure.
type Registration struct {
	ID       domain.RegistrationID
	Identity struct {
		Email       string
		DisplayName string
		Phone       string
	}
	Category string
	// AmountDue is computed at creation in currency minor units and frozen;
	// later configuration changes never recompute it.
	AmountDue int64
	// PaymentReference is the user-asserted proof token. Optional at
	// creation, required before approval.
	PaymentReference string
	Status           Status
	CreatedAt        time.Time
	DecidedAt        *time.Time
	DecidedBy        string
}

// Decision captures a terminal admin verdict applied to a Pending record.
type Decision struct {
	Status    Status
	DecidedBy string
	DecidedAt time.Time
}
