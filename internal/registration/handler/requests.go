package handler

import (
	"strings"

	"regdesk/internal/registration"
	dErrors "regdesk/pkg/domain-errors"
)

// SubmitRequest is the HTTP request body for POST /registrations.
type SubmitRequest struct {
	DisplayName      string `json:"display_name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Category         string `json:"category"`
	PaymentReference string `json:"payment_reference"`
}

// Validate only checks structural shape here; field-level rules live in the
// registration package so they apply regardless of transport.
func (r *SubmitRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "request body is required")
	}
	return nil
}

// Submission converts the request body to the domain submission.
func (r *SubmitRequest) Submission() registration.Submission {
	return registration.Submission{
		DisplayName:      r.DisplayName,
		Email:            r.Email,
		Phone:            r.Phone,
		Category:         r.Category,
		PaymentReference: r.PaymentReference,
	}
}

// PaymentRequest is the HTTP request body for POST /registrations/{id}/payment.
type PaymentRequest struct {
	PaymentReference string `json:"payment_reference"`
}

func (r *PaymentRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "request body is required")
	}
	r.PaymentReference = strings.TrimSpace(r.PaymentReference)
	if r.PaymentReference == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "payment_reference is required")
	}
	return nil
}
