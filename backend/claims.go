package backend

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Claims is the subset of access token claims the portal displays
type Claims struct {
	Subject   string
	Email     string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// PeekClaims decodes a JWT access token WITHOUT verifying its signature.
// Only for display; the backend stays the authority on validity.
func PeekClaims(rawToken string) (*Claims, error) {
	token, _, err := jwt.NewParser().ParseUnverified(rawToken, jwt.MapClaims{})
	if err != nil {
		return nil, errors.Wrap(err, "PeekClaims")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("PeekClaims: error extracting claims")
	}

	c := &Claims{}
	c.Subject, _ = claims.GetSubject()
	c.Email, _ = claims["email"].(string)
	c.Role, _ = claims["role"].(string)
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, nil
}
