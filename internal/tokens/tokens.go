package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	AdminSubject = "admin"
	issuer       = "thanima-connect"
)

var ErrInvalidToken = errors.New("invalid admin token")

// IssueAdminToken creates a signed HS256 token for the admin session. The
// returned claims carry the token id (jti) used for revocation.
func IssueAdminToken(secret []byte, ttl time.Duration) (string, *jwt.RegisteredClaims, error) {
	if len(secret) == 0 {
		return "", nil, fmt.Errorf("admin token secret is empty")
	}
	now := time.Now()
	claims := &jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   AdminSubject,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := jt.SignedString(secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign admin token: %w", err)
	}
	return s, claims, nil
}

// ParseAdminToken verifies signature, expiry, issuer and subject of raw.
func ParseAdminToken(secret []byte, raw string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject != AdminSubject || claims.ID == "" || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
