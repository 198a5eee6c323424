package game

import (
	"fmt"
	"strings"
)

// ProtocolError marks a frame the decoder refused. The engine reports it and
// keeps reading; a bad frame must never take the session down.
type ProtocolError struct {
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("protocol error: %s: %v", e.Reason, e.Err)
	}
	return "protocol error: " + e.Reason
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// ValidationError carries every roster problem at once so the host sees the
// full list, not just the first failing team.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}
