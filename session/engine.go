package session

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/Team26SWP/InnoAlias/game"
)

type Status int

const (
	StatusConnecting Status = iota
	StatusConnected
	StatusReconnecting
	StatusFatal
)

func (s Status) String() string {
	switch s {
	case StatusConnected:
		return "connected"
	case StatusReconnecting:
		return "reconnecting"
	case StatusFatal:
		return "fatal"
	default:
		return "connecting"
	}
}

// Update is one state change pushed to the view layer: the latest snapshot,
// what it meant for the local player, and which view should be showing.
type Update struct {
	Status   Status
	View     game.View
	Snapshot game.Snapshot
	Event    game.Verdict
	Err      error
}

const pingInterval = 30 * time.Second

// Engine is the session actor. One goroutine (Run) owns the store and drives
// ingest -> derive -> route for every inbound frame; the countdown ticks on
// its own and shares nothing but the deadline.
type Engine struct {
	mgr       *Manager
	role      game.Role
	identity  Identity
	initial   game.Snapshot
	store     *game.Store
	countdown *game.Countdown
	clock     clockwork.Clock
	backoff   backoffPolicy

	mu     sync.Mutex
	handle *Handle

	updates chan Update
}

func NewEngine(mgr *Manager, h Handoff, clock clockwork.Clock) *Engine {
	return &Engine{
		mgr:       mgr,
		role:      h.Role,
		identity:  h.Identity,
		initial:   h.Initial,
		store:     game.NewStore(h.Role),
		countdown: game.NewCountdown(clock),
		clock:     clock,
		backoff:   defaultBackoff(),
		updates:   make(chan Update, 16),
	}
}

// Updates delivers every state change. The consumer is expected to keep
// reading for the lifetime of the session.
func (e *Engine) Updates() <-chan Update { return e.updates }

// Countdown delivers the rendered time-left string on a fixed tick.
func (e *Engine) Countdown() <-chan string { return e.countdown.Updates() }

// Send fires an action at the server. Dropped with ErrConnectionClosed when
// no connection is open.
func (e *Engine) Send(a Action) error {
	e.mu.Lock()
	h := e.handle
	e.mu.Unlock()
	if h == nil {
		return ErrConnectionClosed
	}
	return h.Send(a)
}

func (e *Engine) setHandle(h *Handle) {
	e.mu.Lock()
	e.handle = h
	e.mu.Unlock()
}

// Run connects and processes the session until ctx is cancelled or the
// session dies fatally. The countdown, the read pump and the connection are
// all torn down on every exit path.
func (e *Engine) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer e.mgr.Close()

	go e.countdown.Run(ctx)

	h, err := e.mgr.Connect(ctx, e.role, e.identity)
	if err != nil {
		e.emit(ctx, Update{Status: StatusFatal, Err: err})
		return err
	}
	e.setHandle(h)

	if e.initial != nil {
		e.store.Seed(e.initial)
		if d, ok := e.initial.Deadline(); ok {
			e.countdown.SetDeadline(d)
		}
	}
	e.emit(ctx, Update{
		Status:   StatusConnected,
		View:     game.RouteView(e.identity.IsHost, e.identity.Name, e.store.Current()),
		Snapshot: e.store.Current(),
	})

	frames := make(chan []byte)
	readErrs := make(chan error, 1)
	go readPump(ctx, h, frames, readErrs)

	pinger := e.clock.NewTicker(pingInterval)
	defer pinger.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-pinger.Chan():
			if err := h.Ping(); err != nil {
				log.Debug().Err(err).Msg("ping failed")
			}

		case raw := <-frames:
			e.handleFrame(ctx, raw)

		case cause := <-readErrs:
			h, err = e.handleDisconnect(ctx, cause)
			if err != nil {
				return err
			}
			e.setHandle(h)
			frames = make(chan []byte)
			readErrs = make(chan error, 1)
			go readPump(ctx, h, frames, readErrs)
		}
	}
}

func (e *Engine) handleFrame(ctx context.Context, raw []byte) {
	snap, err := e.store.Ingest(raw)
	if err != nil {
		// Recovered locally: report, keep the session alive.
		log.Warn().Err(err).Msg("rejected snapshot")
		e.emit(ctx, Update{
			Status:   StatusConnected,
			View:     game.RouteView(e.identity.IsHost, e.identity.Name, e.store.Current()),
			Snapshot: e.store.Current(),
			Err:      err,
		})
		return
	}

	verdict := game.Derive(e.store.Previous(), snap, e.identity.Name)

	if d, ok := snap.Deadline(); ok {
		e.countdown.SetDeadline(d)
	} else {
		e.countdown.SetDeadline(time.Time{})
	}

	e.emit(ctx, Update{
		Status:   StatusConnected,
		View:     game.RouteView(e.identity.IsHost, e.identity.Name, snap),
		Snapshot: snap,
		Event:    verdict,
	})
}

// handleDisconnect classifies the closure and, for transient ones, runs the
// bounded backoff loop. Returns the fresh handle, or the fatal error that
// ends the session.
func (e *Engine) handleDisconnect(ctx context.Context, cause error) (*Handle, error) {
	verdict := Classify(CloseStatus(cause))
	if verdict.Fatal {
		err := &FatalSessionError{Reason: verdict.Reason}
		e.emit(ctx, Update{Status: StatusFatal, Err: err})
		return nil, err
	}

	log.Warn().Err(cause).Msg("connection lost, reconnecting")

	e.mu.Lock()
	if e.handle != nil {
		e.handle.Close()
	}
	e.mu.Unlock()

	for attempt := 0; attempt < e.backoff.attempts; attempt++ {
		e.emit(ctx, Update{Status: StatusReconnecting})

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-e.clock.After(e.backoff.delay(attempt)):
		}

		h, err := e.mgr.Connect(ctx, e.role, e.identity)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt+1).Msg("reconnect failed")
			continue
		}

		// Whatever arrives on the new connection supersedes everything;
		// the first snapshot must not diff against pre-disconnect state.
		e.store.Reset()
		e.countdown.SetDeadline(time.Time{})
		e.emit(ctx, Update{
			Status: StatusConnected,
			View:   game.RouteView(e.identity.IsHost, e.identity.Name, nil),
		})
		return h, nil
	}

	err := &FatalSessionError{Reason: "Connection lost"}
	e.emit(ctx, Update{Status: StatusFatal, Err: err})
	return nil, err
}

func (e *Engine) emit(ctx context.Context, u Update) {
	select {
	case e.updates <- u:
	case <-ctx.Done():
	}
}

func readPump(ctx context.Context, h *Handle, frames chan<- []byte, errs chan<- error) {
	for {
		data, err := h.Read()
		if err != nil {
			select {
			case errs <- err:
			case <-ctx.Done():
			}
			return
		}
		select {
		case frames <- data:
		case <-ctx.Done():
			return
		}
	}
}
