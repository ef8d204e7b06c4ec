package devbackend

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-donor-portal/internal/errors"
	"github.com/pkg/errors"
)

// HMACSigner issues and verifies HS256 access tokens
type HMACSigner struct {
	secret  []byte
	ttl     time.Duration
	nowFunc func() time.Time
}

// NewHMACSigner creates a new HMAC signer with the given secret
func NewHMACSigner(secret string, ttl time.Duration, nowFunc func() time.Time) *HMACSigner {
	return &HMACSigner{
		secret:  []byte(secret),
		ttl:     ttl,
		nowFunc: nowFunc,
	}
}

// Issue creates a signed access token for account
func (h *HMACSigner) Issue(account *Account) (string, error) {
	now := h.nowFunc()
	claims := jwt.MapClaims{
		"sub":   account.ID,
		"email": account.Email,
		"role":  string(account.Role),
		"iat":   now.Unix(),
		"exp":   now.Add(h.ttl).Unix(),
		"jti":   uuid.New().String(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(h.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token with HMAC")
	}
	return signed, nil
}

// Verify checks the signature and expiry and returns the subject. Failures
// wrap ErrTokenExpired or ErrInvalidToken.
func (h *HMACSigner) Verify(rawToken string) (string, error) {
	token, err := jwt.Parse(rawToken, h.verificationKey,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(h.nowFunc),
	)
	if apperrors.Is(err, jwt.ErrTokenExpired) {
		return "", apperrors.Wrapf(apperrors.ErrTokenExpired, "verify token")
	}
	if err != nil || !token.Valid {
		return "", apperrors.Wrapf(apperrors.ErrInvalidToken, "verify token")
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", apperrors.Wrapf(apperrors.ErrInvalidToken, "token has no subject")
	}
	return sub, nil
}

func (h *HMACSigner) verificationKey(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return h.secret, nil
}
