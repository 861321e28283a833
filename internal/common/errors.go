// Package common defines shared sentinel errors and small utilities used
// across the service layers. Callers should match these values with errors.Is.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Sign-up / credential errors.
	ErrorEmailAlreadyExists = errors.New("email already registered")
	ErrorInvalidEmail       = errors.New("invalid email format")
	ErrorWeakPassword       = errors.New("password does not meet minimum length")
	ErrorInvalidCredentials = errors.New("invalid email or password")

	// Session lifecycle errors.
	ErrorSessionExpired = errors.New("session expired")

	// Token errors.
	ErrorInvalidToken = errors.New("invalid token")
	ErrorTokenExpired = errors.New("token expired")

	// Verification flow errors.
	ErrorVerificationExpired  = errors.New("verification expired")
	ErrorVerificationNotFound = errors.New("verification not found")
)
