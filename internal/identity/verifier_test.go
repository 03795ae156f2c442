package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regdesk/pkg/domain"
	dErrors "regdesk/pkg/domain-errors"
)

const (
	testKey      = "test-signing-key"
	testIssuer   = "identity-provider"
	testAudience = "regdesk"
)

func newVerifier() *TokenVerifier {
	return NewTokenVerifier(testKey, testIssuer, testAudience)
}

func TestTokenVerifier_Verify(t *testing.T) {
	ctx := context.Background()

	t.Run("round-trips a signed identity with normalized email", func(t *testing.T) {
		v := newVerifier()
		assertion, err := v.Sign(domain.Identity{Email: " Admin@Example.COM ", DisplayName: "Admin"}, time.Hour)
		require.NoError(t, err)

		ident, err := v.Verify(ctx, assertion)
		require.NoError(t, err)
		assert.Equal(t, "admin@example.com", ident.Email)
		assert.Equal(t, "Admin", ident.DisplayName)
	})

	t.Run("rejects garbage tokens", func(t *testing.T) {
		_, err := newVerifier().Verify(ctx, "not-a-token")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("rejects expired assertions", func(t *testing.T) {
		v := newVerifier()
		assertion, err := v.Sign(domain.Identity{Email: "a@x.com"}, -time.Minute)
		require.NoError(t, err)

		_, err = v.Verify(ctx, assertion)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("rejects a token signed with another key", func(t *testing.T) {
		other := NewTokenVerifier("other-key", testIssuer, testAudience)
		assertion, err := other.Sign(domain.Identity{Email: "a@x.com"}, time.Hour)
		require.NoError(t, err)

		_, err = newVerifier().Verify(ctx, assertion)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("rejects wrong audience", func(t *testing.T) {
		other := NewTokenVerifier(testKey, testIssuer, "some-other-service")
		assertion, err := other.Sign(domain.Identity{Email: "a@x.com"}, time.Hour)
		require.NoError(t, err)

		_, err = newVerifier().Verify(ctx, assertion)
		require.Error(t, err)
	})

	t.Run("rejects assertions without an email claim", func(t *testing.T) {
		v := newVerifier()
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				Issuer:    testIssuer,
				Audience:  []string{testAudience},
			},
		})
		assertion, err := token.SignedString([]byte(testKey))
		require.NoError(t, err)

		_, err = v.Verify(ctx, assertion)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
