package auth

import (
	"time"

	"github.com/expreshop/expreshop/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the payload carried by every token the service signs.
//
// Session tokens use the username as subject and carry the user's role;
// recovery tokens use the email as subject and omit the role. Nothing else
// distinguishes the two kinds: the reset flow accepts any validly signed
// token whose subject resolves via the email lookup, matching the behavior
// this service replaces.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// TokenService signs and verifies HS256 tokens with a process-wide secret.
// Tokens are stateless and unrevocable: once issued they stay valid until
// their expiry regardless of subsequent account changes.
type TokenService struct {
	secret []byte
}

func NewTokenService(secret []byte) *TokenService {
	return &TokenService{secret: secret}
}

// Issue signs a token for subject with an absolute expiry of now+ttl.
// role may be empty, in which case the claim is omitted from the payload.
func (s *TokenService) Issue(subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		Role: role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify parses and validates a token, returning its claims. Malformed
// encodings, signature mismatches, and expired tokens all map to
// common.ErrInvalidToken; there is no clock-skew leeway.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}
