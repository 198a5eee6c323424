package session

import (
	"errors"
	"fmt"
)

var (
	// ErrConnectionClosed comes back from Send when the socket is not
	// open. The action is dropped, never queued.
	ErrConnectionClosed = errors.New("Connection closed")

	// ErrGuessThrottled comes back when guesses are sent faster than the
	// outbound limiter allows.
	ErrGuessThrottled = errors.New("Too many guesses")
)

// ConnectionError means the transport could not be established at all.
type ConnectionError struct {
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect %s: %v", e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// FatalSessionError ends the session for good: the only control left to
// offer is a return to home, never a retry.
type FatalSessionError struct {
	Reason string
}

func (e *FatalSessionError) Error() string { return e.Reason }
