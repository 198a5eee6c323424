package session

import "github.com/Team26SWP/InnoAlias/game"

// Handoff carries identity and an optional initial snapshot across a view
// transition, so the next view resumes mid-game instead of waiting for the
// server's next push. It is an explicit value the caller passes in; nothing
// here is shared global state.
type Handoff struct {
	Identity Identity
	Role     game.Role
	Initial  game.Snapshot
}
