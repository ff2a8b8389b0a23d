package party

import "errors"

var (
	// ErrNotFound means the party code (or participant) is unknown to the live registry.
	ErrNotFound = errors.New("party not found")
	// ErrNotAuthorized means a host-only action came from a regular member.
	ErrNotAuthorized = errors.New("requires the host role")
	// ErrNotAMember means the sender is not currently a member of the party.
	ErrNotAMember = errors.New("not a member of this party")
	// ErrCapacityExceeded means the registry (or the party) is full.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrInvalidToken means the identity token could not be resolved.
	ErrInvalidToken = errors.New("invalid token")
	// ErrStaleCommand means a playback command carried a version that has already
	// been superseded. Callers absorb it silently; it is not a user-visible error.
	ErrStaleCommand = errors.New("stale playback command")
	// ErrConnectionSuperseded means a newer connection took over this participant's slot.
	ErrConnectionSuperseded = errors.New("connection superseded by a newer one")
	// ErrPartyClosed means the party was closed while the operation was in flight.
	ErrPartyClosed = errors.New("party closed")
)
