package deferred

import (
	"errors"
	"fmt"
	"time"

	"analytics-service/models"

	"github.com/golang-jwt/jwt/v4"
)

var ErrTokenEvent = errors.New("token issued for another event")

type deferredClaims struct {
	Payload []byte `json:"pld"`
	jwt.RegisteredClaims
}

// TokenCodec signs cookie values so a visitor cannot forge or replay a
// payload past its expiry.
type TokenCodec struct {
	secret []byte
}

func NewTokenCodec(secret []byte) *TokenCodec {
	return &TokenCodec{secret: secret}
}

// Encode returns an HS256 token for payload that expires after ttl.
func (c *TokenCodec) Encode(name models.EventName, payload []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := deferredClaims{
		Payload: payload,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(name),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", name, err)
	}
	return token, nil
}

// Decode verifies token and returns its payload. Expired, tampered and
// foreign tokens are errors.
func (c *TokenCodec) Decode(name models.EventName, token string) ([]byte, error) {
	claims := &deferredClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if _, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	}); err != nil {
		return nil, fmt.Errorf("parse %s token: %w", name, err)
	}
	if claims.Subject != string(name) {
		return nil, ErrTokenEvent
	}
	return claims.Payload, nil
}
