// Package auth implements the credential primitives of the server:
// signed session tokens and argon2id password hashes.
package auth

import (
	"time"

	"pennywise/internal/common"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateToken mints an HS256-signed token whose claims carry the subject id,
// issued-at and expiry. Validity is purely a function of signature and
// timestamps; there is no server-side session state.
func GenerateToken(subjectID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subjectID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetSubjectFromToken verifies the token signature and temporal claims and
// returns the subject id. Every failure mode (bad signature, malformed
// structure, expiry) collapses into ErrorUnauthorized so callers cannot
// distinguish them.
func GetSubjectFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", common.ErrorUnauthorized
	}

	if !token.Valid || claims.Subject == "" {
		return "", common.ErrorUnauthorized
	}

	return claims.Subject, nil
}
