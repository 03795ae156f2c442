// Package identity exchanges external identity assertions for verified
// identities. The provider's token mechanics stay behind the Verifier
// interface; the rest of the system only ever sees a verified
// (email, display name) pair.
package identity

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"regdesk/pkg/domain"
	dErrors "regdesk/pkg/domain-errors"
)

// Claims are the assertion claims we require from the identity provider.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// TokenVerifier validates HMAC-signed assertion tokens. All failure modes
// collapse into a single unauthorized error so responses never reveal why an
// assertion was rejected.
type TokenVerifier struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewTokenVerifier(signingKey, issuer, audience string) *TokenVerifier {
	return &TokenVerifier{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

var errInvalidAssertion = dErrors.New(dErrors.CodeUnauthorized, "invalid identity assertion")

// Verify parses and validates an assertion and returns the verified identity.
func (v *TokenVerifier) Verify(_ context.Context, assertion string) (domain.Identity, error) {
	parsed, err := jwt.ParseWithClaims(assertion, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.signingKey, nil
	}, jwt.WithIssuer(v.issuer), jwt.WithAudience(v.audience), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Identity{}, dErrors.New(dErrors.CodeUnauthorized, "identity assertion has expired")
		}
		return domain.Identity{}, errInvalidAssertion
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return domain.Identity{}, errInvalidAssertion
	}

	email := domain.NormalizeEmail(claims.Email)
	if email == "" {
		return domain.Identity{}, errInvalidAssertion
	}
	return domain.Identity{Email: email, DisplayName: claims.Name}, nil
}

// Sign mints an assertion for the given identity. Used by tests and by the
// ops tooling that issues admin assertions.
func (v *TokenVerifier) Sign(ident domain.Identity, expiresIn time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: ident.Email,
		Name:  ident.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    v.issuer,
			Audience:  []string{v.audience},
		},
	})
	return token.SignedString(v.signingKey)
}
