package fakeapi

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/me/audictl/internal/claims"
)

var (
	errInvalidToken = errors.New("invalid token")
	errExpiredToken = errors.New("token has expired")
	errBadSignature = errors.New("invalid token signature")
)

// issueToken signs an HS256 token for acct. The subject is the account's
// email; role and username ride alongside as claims.
func (s *Server) issueToken(acct *account) (string, error) {
	now := s.now()
	c := &claims.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   acct.user.Email,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Role:     string(acct.user.Role),
		Username: acct.user.Username,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// verifyToken checks the signature and expiry of raw.
func (s *Server) verifyToken(raw string) (*claims.Claims, error) {
	tok, err := jwt.ParseWithClaims(raw, &claims.Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errBadSignature
		}
		return []byte(s.config.JWTSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, errExpiredToken
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, errBadSignature
		}
		return nil, errInvalidToken
	}
	c, ok := tok.Claims.(*claims.Claims)
	if !ok || !tok.Valid {
		return nil, errInvalidToken
	}
	return c, nil
}
