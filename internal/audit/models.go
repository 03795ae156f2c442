// Package audit records the append-only trail of registration lifecycle
// actions for operator review.
package audit

import "time"

// Action names a recorded lifecycle step.
type Action string

const (
	ActionRegistrationCreated  Action = "registration_created"
	ActionRegistrationApproved Action = "registration_approved"
	ActionRegistrationRejected Action = "registration_rejected"
	ActionPaymentAttached      Action = "payment_reference_attached"
	ActionDecisionDenied       Action = "decision_denied"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp      time.Time `json:"timestamp"`
	Action         Action    `json:"action"`
	RegistrationID string    `json:"registration_id,omitempty"`
	Email          string    `json:"email,omitempty"`
	Actor          string    `json:"actor,omitempty"`
	Reason         string    `json:"reason,omitempty"`
	RequestID      string    `json:"request_id,omitempty"`
}
