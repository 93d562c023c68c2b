package session

import "errors"

var (
	// ErrSessionNotFound is returned when a session id is not registered.
	ErrSessionNotFound = errors.New("session not found")

	// ErrCountryNotFound is returned when a patch addresses a country id
	// absent from the session's country collection.
	ErrCountryNotFound = errors.New("country not found")

	// ErrResourceExhausted is returned when the registry is at capacity.
	ErrResourceExhausted = errors.New("session capacity exhausted")

	// ErrNarrativeUnavailable marks a failed headline generation. It is
	// always recovered: a commit proceeds with empty headlines.
	ErrNarrativeUnavailable = errors.New("narrative generator unavailable")
)
