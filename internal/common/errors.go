// Package common defines shared constants and sentinel errors used across
// the RunnerVault client and the development server. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Session errors.
	ErrAuthentication = errors.New("authentication failed")
	ErrRegistration   = errors.New("registration failed")
	ErrAuthorization  = errors.New("not authorized")

	// Editor errors.
	ErrFetch  = errors.New("fetch failed")
	ErrSubmit = errors.New("submit failed")
	ErrBusy   = errors.New("submit already in flight")

	// Transport errors.
	ErrUnavailable  = errors.New("server unavailable")
	ErrInvalidToken = errors.New("invalid token")
)
