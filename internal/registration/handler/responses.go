package handler

import (
	"time"

	"regdesk/internal/registration"
)

// RegistrationResponse is the wire view of a registration.
type RegistrationResponse struct {
	ID               string     `json:"id"`
	DisplayName      string     `json:"display_name"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone"`
	Category         string     `json:"category"`
	AmountDue        int64      `json:"amount_due"`
	PaymentReference string     `json:"payment_reference,omitempty"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	DecidedAt        *time.Time `json:"decided_at,omitempty"`
	DecidedBy        string     `json:"decided_by,omitempty"`
}

// FromRegistration maps a domain registration to its wire form.
func FromRegistration(reg *registration.Registration) RegistrationResponse {
	return RegistrationResponse{
		ID:               reg.ID.String(),
		DisplayName:      reg.Identity.DisplayName,
		Email:            reg.Identity.Email,
		Phone:            reg.Identity.Phone,
		Category:         reg.Category,
		AmountDue:        reg.AmountDue,
		PaymentReference: reg.PaymentReference,
		Status:           string(reg.Status),
		CreatedAt:        reg.CreatedAt,
		DecidedAt:        reg.DecidedAt,
		DecidedBy:        reg.DecidedBy,
	}
}
