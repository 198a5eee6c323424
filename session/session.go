package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/Team26SWP/InnoAlias/game"
)

// NetworkSession is the little the engine needs from a live socket, so
// tests can run against a mock instead of a dialed connection.
type NetworkSession interface {
	Close()
	Write(data []byte) error
	Read() ([]byte, error)
	Ping() error
}

// Dialer opens a NetworkSession against a fully-built target URL.
type Dialer interface {
	Dial(ctx context.Context, target string) (NetworkSession, error)
}

// Identity is who the local participant is for the lifetime of one
// connection. Established once on page entry, immutable after.
type Identity struct {
	Name   string
	Code   string
	IsHost bool
	TeamID string
}

// Guesses are rate-limited on the way out; everything else goes through
// unthrottled.
const (
	guessBurst       = 3
	guessesPerSecond = 3
)

// Handle is one live connection. Safe for concurrent use.
type Handle struct {
	role game.Role
	sess NetworkSession

	mu      sync.Mutex
	closed  bool
	limiter *rate.Limiter
}

func newHandle(role game.Role, sess NetworkSession) *Handle {
	return &Handle{
		role:    role,
		sess:    sess,
		limiter: rate.NewLimiter(rate.Limit(guessesPerSecond), guessBurst),
	}
}

// Send serializes the action and writes it out, fire and forget. When the
// connection is not open the action is dropped and ErrConnectionClosed
// returned; nothing is ever queued for later.
func (h *Handle) Send(a Action) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrConnectionClosed
	}
	if a.Action == ActionGuess && !h.limiter.Allow() {
		return ErrGuessThrottled
	}

	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return h.sess.Write(data)
}

// Read blocks for the next inbound frame.
func (h *Handle) Read() ([]byte, error) {
	return h.sess.Read()
}

func (h *Handle) Ping() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrConnectionClosed
	}
	return h.sess.Ping()
}

// Close is idempotent and safe to call on an already-closed handle.
func (h *Handle) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	h.sess.Close()
}

func (h *Handle) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// Manager owns at most one connection per role for the lifetime of a
// session. It is created per session and passed explicitly; nothing here is
// process-global, so parallel sessions and tests do not collide.
type Manager struct {
	baseURL string
	dialer  Dialer

	mu    sync.Mutex
	conns map[game.Role]*Handle
}

// NewManager takes the server base URL, e.g. "ws://localhost:8000/api".
func NewManager(baseURL string, dialer Dialer) *Manager {
	return &Manager{
		baseURL: baseURL,
		dialer:  dialer,
		conns:   make(map[game.Role]*Handle),
	}
}

// Connect opens the connection for role, or returns the existing live
// handle. Calling it twice must not register the participant with the
// server twice.
func (m *Manager) Connect(ctx context.Context, role game.Role, id Identity) (*Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if h, ok := m.conns[role]; ok && !h.Closed() {
		return h, nil
	}

	target, err := m.targetURL(role, id)
	if err != nil {
		return nil, err
	}

	sess, err := m.dialer.Dial(ctx, target)
	if err != nil {
		return nil, &ConnectionError{URL: target, Err: err}
	}
	log.Debug().Str("role", string(role)).Str("code", id.Code).Msg("socket opened")

	h := newHandle(role, sess)
	m.conns[role] = h
	return h, nil
}

// Close shuts every connection down. Idempotent.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range m.conns {
		h.Close()
	}
}

func (m *Manager) targetURL(role game.Role, id Identity) (string, error) {
	q := url.Values{}
	var path string

	switch role {
	case game.RoleHost:
		path = "/game/" + id.Code
		q.Set("name", id.Name)
	case game.RolePlayer:
		path = "/game/player/" + id.Code
		q.Set("name", id.Name)
		if id.TeamID != "" {
			q.Set("team", id.TeamID)
		}
	case game.RoleSolo:
		path = "/aigame/" + id.Code
	default:
		return "", fmt.Errorf("unknown role %q", role)
	}

	target := m.baseURL + path
	if enc := q.Encode(); enc != "" {
		target += "?" + enc
	}
	return target, nil
}
