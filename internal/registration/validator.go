package registration

import (
	"strings"

	"github.com/asaskevich/govalidator"

	"regdesk/internal/eventconfig"
	"regdesk/pkg/domain"
	dErrors "regdesk/pkg/domain-errors"
)

const (
	maxPhoneDigits      = 15
	minPhoneDigits      = 7
	maxPaymentRefLength = 64
	maxFieldLength      = 200
)

// ValidateSubmission runs the ordered submission checks and returns the
// normalized submission. The first failing check wins and nothing else is
// evaluated. Pure function of its inputs.
func ValidateSubmission(sub Submission, snap eventconfig.Snapshot) (Submission, error) {
	norm := Submission{
		DisplayName:      strings.TrimSpace(sub.DisplayName),
		Email:            domain.NormalizeEmail(sub.Email),
		Phone:            strings.TrimSpace(sub.Phone),
		Category:         strings.TrimSpace(sub.Category),
		PaymentReference: strings.TrimSpace(sub.PaymentReference),
	}

	switch {
	case norm.DisplayName == "":
		return Submission{}, dErrors.New(dErrors.CodeInvalidInput, "display name is required")
	case norm.Email == "":
		return Submission{}, dErrors.New(dErrors.CodeInvalidInput, "email is required")
	case norm.Phone == "":
		return Submission{}, dErrors.New(dErrors.CodeInvalidInput, "phone is required")
	case norm.Category == "":
		return Submission{}, dErrors.New(dErrors.CodeInvalidInput, "category is required")
	}

	if len(norm.DisplayName) > maxFieldLength {
		return Submission{}, dErrors.New(dErrors.CodeInvalidInput, "display name is too long")
	}
	if !govalidator.IsEmail(norm.Email) {
		return Submission{}, dErrors.New(dErrors.CodeInvalidInput, "email is not a valid address")
	}
	if err := validatePhone(norm.Phone); err != nil {
		return Submission{}, err
	}
	if !snap.HasCategory(norm.Category) {
		return Submission{}, dErrors.New(dErrors.CodeInvalidInput, "category is not open for registration")
	}
	if err := ValidatePaymentReference(norm.PaymentReference); err != nil {
		return Submission{}, err
	}
	return norm, nil
}

// validatePhone accepts an optional leading +, digits, and common separators,
// and requires a sane digit count.
func validatePhone(phone string) error {
	digits := 0
	for i, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-':
		default:
			return dErrors.New(dErrors.CodeInvalidInput, "phone contains invalid characters")
		}
	}
	if digits < minPhoneDigits || digits > maxPhoneDigits {
		return dErrors.New(dErrors.CodeInvalidInput, "phone must contain 7 to 15 digits")
	}
	return nil
}

// ValidatePaymentReference bounds a user-asserted proof token. An empty
// reference is allowed at submission time; the approval workflow enforces
// presence before approval.
func ValidatePaymentReference(ref string) error {
	if len(ref) > maxPaymentRefLength {
		return dErrors.New(dErrors.CodeInvalidInput, "payment reference is too long")
	}
	return nil
}
