package registration

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regdesk/internal/eventconfig"
	dErrors "regdesk/pkg/domain-errors"
)

func testSnapshot() eventconfig.Snapshot {
	return eventconfig.Snapshot{
		Currency:    "INR",
		TicketPrice: 8500,
		Categories:  []string{"2025 batch", "2026 batch"},
	}
}

func validSubmission() Submission {
	return Submission{
		DisplayName: "Asha Rao",
		Email:       "asha@example.com",
		Phone:       "+91 86819 74507",
		Category:    "2025 batch",
	}
}

func TestValidateSubmission(t *testing.T) {
	snap := testSnapshot()

	t.Run("accepts and normalizes a valid submission", func(t *testing.T) {
		sub := validSubmission()
		sub.Email = "  Asha@Example.COM "
		sub.DisplayName = " Asha Rao "
		sub.PaymentReference = " UPI-123 "

		norm, err := ValidateSubmission(sub, snap)
		require.NoError(t, err)
		assert.Equal(t, "asha@example.com", norm.Email)
		assert.Equal(t, "Asha Rao", norm.DisplayName)
		assert.Equal(t, "UPI-123", norm.PaymentReference)
	})

	t.Run("payment reference may be absent", func(t *testing.T) {
		_, err := ValidateSubmission(validSubmission(), snap)
		require.NoError(t, err)
	})

	// Checks run in a fixed order; the first failure wins.
	t.Run("missing fields fail in declaration order", func(t *testing.T) {
		sub := Submission{}
		_, err := ValidateSubmission(sub, snap)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "display name")

		sub.DisplayName = "Asha"
		_, err = ValidateSubmission(sub, snap)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "email")

		sub.Email = "asha@example.com"
		_, err = ValidateSubmission(sub, snap)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "phone")

		sub.Phone = "9876543210"
		_, err = ValidateSubmission(sub, snap)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "category")
	})

	t.Run("whitespace-only fields count as missing", func(t *testing.T) {
		sub := validSubmission()
		sub.DisplayName = "   "
		_, err := ValidateSubmission(sub, snap)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		sub := validSubmission()
		sub.Email = "not-an-email"
		_, err := ValidateSubmission(sub, snap)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects bad phones", func(t *testing.T) {
		for _, phone := range []string{"12345", "abc-def-ghij", "123456789012345678"} {
			sub := validSubmission()
			sub.Phone = phone
			_, err := ValidateSubmission(sub, snap)
			require.Error(t, err, "phone %q should be rejected", phone)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		}
	})

	t.Run("rejects category outside the configured set", func(t *testing.T) {
		sub := validSubmission()
		sub.Category = "2030 batch"
		_, err := ValidateSubmission(sub, snap)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects oversized payment reference", func(t *testing.T) {
		sub := validSubmission()
		sub.PaymentReference = strings.Repeat("x", 65)
		_, err := ValidateSubmission(sub, snap)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}
