package session

import (
	"errors"

	"github.com/gorilla/websocket"
)

// Close codes the server actually uses. 1011 doubles as "no such game",
// 1008 as "you may not join this game right now" (already running, host
// seat taken, joined mid-round).
const (
	CloseGameNotFound    = websocket.CloseInternalServerErr
	ClosePolicyViolation = websocket.ClosePolicyViolation
)

const (
	ReasonGameNotFound   = "Game not found"
	ReasonGameInProgress = "Game already in progress"
)

// CloseVerdict says whether a closure kills the session or is worth a
// reconnect attempt.
type CloseVerdict struct {
	Fatal  bool
	Reason string
}

// Classify maps a close code to its verdict. Pure function: the two
// designated codes always yield the same fixed messages, everything else is
// transient.
func Classify(code int) CloseVerdict {
	switch code {
	case CloseGameNotFound:
		return CloseVerdict{Fatal: true, Reason: ReasonGameNotFound}
	case ClosePolicyViolation:
		return CloseVerdict{Fatal: true, Reason: ReasonGameInProgress}
	default:
		return CloseVerdict{}
	}
}

// CloseStatus extracts the close code from a read error, or -1 when the
// error carries none (network failures, cancelled reads).
func CloseStatus(err error) int {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return -1
}
