// Package auth provides JWT session tokens, the Discord OAuth flow, bcrypt
// password hashing, and the HTTP middleware that turns a valid token into a
// request-scoped identity.
//
// Flow: the user logs in (Discord OAuth or email/password), the server issues
// a signed JWT stored in an HttpOnly cookie, and on subsequent requests the
// middleware validates the cookie and exposes {id, pseudo, role} to handlers.
// The server never stores session state — everything needed is in the signed
// token.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sakif/citewall/internal/model"
)

const issuer = "citewall"

// TokenTTL is the session token lifetime. After expiry the client must log
// in again.
const TokenTTL = 24 * time.Hour

// TokenService signs and verifies session tokens with an HMAC secret. The
// same secret is used for both operations; rotate it to invalidate all
// outstanding sessions.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the JWT payload: the standard registered claims (the internal
// user ID goes in "sub") plus the pseudo and role, so request handling never
// needs a user lookup just to know who is acting.
type claims struct {
	Pseudo string `json:"pseudo"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Generate creates a signed token for the given actor, valid for TokenTTL.
func (s *TokenService) Generate(actor model.Actor) (string, error) {
	return s.GenerateWithDuration(actor, TokenTTL)
}

// GenerateWithDuration creates a token with a custom expiry. Used by tests to
// exercise expiry handling.
func (s *TokenService) GenerateWithDuration(actor model.Actor, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		Pseudo: actor.Pseudo,
		Role:   actor.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a token string and returns the actor encoded
// in it. Restricting the accepted methods to HS256 prevents algorithm
// confusion attacks; expiry and issuer are checked by the library.
func (s *TokenService) Validate(tokenStr string) (model.Actor, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return model.Actor{}, fmt.Errorf("auth: token expired")
		}
		return model.Actor{}, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return model.Actor{}, fmt.Errorf("auth: invalid token claims")
	}
	if c.Subject == "" {
		return model.Actor{}, fmt.Errorf("auth: token has no subject")
	}

	return model.Actor{
		ID:     c.Subject,
		Pseudo: c.Pseudo,
		Role:   c.Role,
	}, nil
}
