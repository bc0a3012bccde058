package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity decoded from the backend-issued bearer token. The
// gateway never verifies the signature; the token is opaque and only readable
// claims are extracted for display and local expiry checks.
type Claims struct {
	Subject   string
	Email     string
	Name      string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// ErrInvalidToken is returned when the bearer token cannot be decoded.
var ErrInvalidToken = errors.New("invalid token")

// DecodeClaims extracts claims from a JWT without verifying its signature.
func DecodeClaims(token string) (Claims, error) {
	if token == "" {
		return Claims{}, ErrInvalidToken
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	var claims Claims
	if sub, err := mapClaims.GetSubject(); err == nil {
		claims.Subject = sub
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	if email, ok := mapClaims["email"].(string); ok {
		claims.Email = email
	}
	if name, ok := mapClaims["name"].(string); ok {
		claims.Name = name
	}
	return claims, nil
}
