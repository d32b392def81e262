package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized means the backend answered 401 or 403 on an
	// authenticated call. The session has already been revoked.
	ErrUnauthorized = errors.New("backend: session rejected")

	// ErrUnavailable means no response was received: the backend is down,
	// unreachable, or did not answer within the timeout.
	ErrUnavailable = errors.New("backend: unavailable")
)

// RejectedError is a non-2xx answer the user should see. Message is the
// backend's text, verbatim.
type RejectedError struct {
	Status  int
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("backend: %d: %s", e.Status, e.Message)
}

// UnavailableMessage is what users are shown for ErrUnavailable.
const UnavailableMessage = "Cannot connect to server."

// IsRejected reports whether err is a *RejectedError and returns it.
func IsRejected(err error) (*RejectedError, bool) {
	var re *RejectedError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
