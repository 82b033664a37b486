package remote

import "errors"

var (
	// -- Session --
	ErrNoSession      = errors.New("no session token")
	ErrSessionExpired = errors.New("session token expired")

	// -- Sync transport --
	ErrCartUnavailable = errors.New("remote cart unavailable")

	// -- Merge state machine --
	ErrComparisonPending = errors.New("a cart comparison is already pending")
	ErrNoPendingChoice   = errors.New("no cart choice is pending")
	ErrUnknownChoice     = errors.New("unknown cart choice")
)
