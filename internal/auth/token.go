package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/adoptly/adoptly/internal/model"
)

// DefaultSecret is the fallback signing secret used when none is configured.
// Shipping with it is a known risk; startup logs a warning when it is active.
const DefaultSecret = "your-secret-key"

var (
	// ErrInvalidToken indicates the token failed signature or format checks.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired indicates the token was valid but past its expiry.
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the signed token payload: the caller identity plus the standard
// registered claims carrying expiry.
type Claims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed, time-bound identity assertions.
// Tokens are HS256-signed with a shared secret. There is no revocation: a
// token stays valid for its full TTL regardless of server-side state.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService. An empty secret falls back to
// DefaultSecret.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if secret == "" {
		secret = DefaultSecret
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// UsingDefaultSecret reports whether the service signs with the built-in
// fallback secret.
func (s *TokenService) UsingDefaultSecret() bool {
	return string(s.secret) == DefaultSecret
}

// TTL returns the configured token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue produces a signed token for the given user.
func (s *TokenService) Issue(user *model.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Verify parses and validates a token, returning the identity it asserts.
// Returns ErrTokenExpired for expired tokens and ErrInvalidToken for
// anything else that fails validation; a tampered token is never partially
// trusted.
func (s *TokenService) Verify(tokenString string) (*model.Identity, error) {
	var claims Claims

	_, err := jwt.ParseWithClaims(tokenString, &claims,
		func(t *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	if claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return &model.Identity{
		ID:    claims.UserID,
		Email: claims.Email,
		Role:  claims.Role,
	}, nil
}
