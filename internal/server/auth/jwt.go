// Package auth implements the access-token signer: self-contained HS256 JWTs
// carrying the subject identity and an absolute expiry. Tokens are verified
// purely by signature and expiry check, no storage lookup involved.
package auth

import (
	"errors"
	"time"

	"github.com/dsavelev/sessiond/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries only the registered claim set; the subject claim holds the
// username.
type Claims struct {
	jwt.RegisteredClaims
}

// GenerateToken issues a signed access token for subject that expires
// validityDuration from now. Time is part of the payload, so identical
// inputs at different moments produce different tokens.
func GenerateToken(subject string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseSubject verifies tokenString and returns the embedded subject.
// This boundary sees attacker-controlled strings directly, so failures are
// reported as distinct sentinels and never panic:
//
//   - common.ErrTokenExpired for structurally valid but expired tokens
//   - common.ErrTokenMalformed for input that is not a JWT at all
//   - common.ErrInvalidToken for signature mismatch or any other rejection
func ParseSubject(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", common.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return "", common.ErrTokenMalformed
		default:
			return "", common.ErrInvalidToken
		}
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}
