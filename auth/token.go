// Package auth issues and checks the bearer tokens the backend presents when
// it calls the task-mutation hook. HMAC with a shared secret is enough here:
// both sides of the hook are operated together.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// HookClaims identifies the calling service inside the JWT.
type HookClaims struct {
	Service string `json:"service"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed JWT for a backend service instance.
func GenerateToken(secret []byte, service string, tokenDuration time.Duration) (string, error) {
	now := time.Now()
	claims := &HookClaims{
		Service: service,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "task-bot",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken parses and validates the signature and expiration of a JWT string.
func ValidateToken(secret []byte, tokenString string) (*HookClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &HookClaims{}, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*HookClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}
