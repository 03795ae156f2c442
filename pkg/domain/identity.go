package domain

import "strings"

// Identity is a verified (email, display name) pair produced by the identity
// verifier. The email is always normalized.
type Identity struct {
	Email       string
	DisplayName string
}

// NormalizeEmail lower-cases and trims an email address. Normalized emails are
// the stable dedup key for registrations and the comparison key for admin
// membership, so every email crossing a trust boundary goes through here.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
