package game

import "errors"

var (
	// ErrMatchNotFound is returned when a participant has no live match.
	ErrMatchNotFound = errors.New("match not found")
	// ErrInvalidAction wraps every rejected action request. A rejected
	// request never changes match state.
	ErrInvalidAction = errors.New("invalid action")
	// ErrMatchClosed is returned when submitting to a torn down match.
	ErrMatchClosed = errors.New("match closed")
	// ErrMatchBusy is returned when a match's inbox is full.
	ErrMatchBusy = errors.New("match busy")
)
