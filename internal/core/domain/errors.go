package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Query normalization errors. All are user-input errors surfaced
	// directly to the caller; none are retried and none are fatal.

	// ErrMissingLocation indicates no location form was supplied.
	// Every query needs exactly one of: zipcode(s), city PID, or a
	// latitude/longitude pair.
	ErrMissingLocation = errors.New("missing location")

	// ErrAmbiguousLocation indicates more than one location form was
	// supplied. Conflicting forms are rejected rather than prioritised.
	ErrAmbiguousLocation = errors.New("ambiguous location")

	// ErrInvalidRiskLevel indicates a risk level outside low/medium/high.
	ErrInvalidRiskLevel = errors.New("invalid risk level")

	// ErrInvalidRange indicates a numeric parameter outside its valid
	// range (hours_back, limit, radius, or coordinates).
	ErrInvalidRange = errors.New("invalid range")

	// ErrStoreUnavailable indicates the event store is not configured.
	ErrStoreUnavailable = errors.New("event store unavailable")

	// ErrRateLimited indicates the query rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
