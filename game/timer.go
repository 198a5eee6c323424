package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// ExpiredText is rendered once the deadline has passed.
const ExpiredText = "Time's up!"

// TickInterval is how often the countdown re-renders, independent of
// snapshot arrival.
const TickInterval = 500 * time.Millisecond

// FormatRemaining renders the time left until deadline as m:ss. Both
// instants are absolute, so a single subtraction is all that is needed; no
// timezone offset is applied on top.
// TODO: verify against the production server that expires_at is always sent
// timezone-aware; naive timestamps would shift this by the local offset.
func FormatRemaining(now, deadline time.Time) string {
	diff := deadline.Sub(now)
	if diff <= 0 {
		return ExpiredText
	}
	secs := int(diff / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// Countdown re-renders the remaining time on a fixed tick. It reads nothing
// but the deadline, which snapshots overwrite as they arrive; the two never
// need to agree on anything else.
type Countdown struct {
	clock clockwork.Clock

	mu       sync.Mutex
	deadline time.Time

	updates chan string
}

func NewCountdown(clock clockwork.Clock) *Countdown {
	return &Countdown{
		clock:   clock,
		updates: make(chan string, 1),
	}
}

// SetDeadline replaces the deadline the next ticks count toward. A zero
// instant clears it.
func (c *Countdown) SetDeadline(t time.Time) {
	c.mu.Lock()
	c.deadline = t
	c.mu.Unlock()
}

// Updates emits the rendered countdown, one string per tick. A slow reader
// only ever misses intermediate renders, never the newest one.
func (c *Countdown) Updates() <-chan string { return c.updates }

// Run ticks until ctx is cancelled. The caller owns cancellation and must
// cancel on every teardown path, or the ticker leaks past the view it
// belongs to.
func (c *Countdown) Run(ctx context.Context) {
	ticker := c.clock.NewTicker(TickInterval)
	defer ticker.Stop()

	var last string
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s := c.render()
			if s == "" && last == "" {
				// No deadline to count toward. A single blank is published
				// when one goes away, to clear the display; after that,
				// quiet.
				continue
			}
			c.publish(s)
			last = s
		}
	}
}

func (c *Countdown) render() string {
	c.mu.Lock()
	deadline := c.deadline
	c.mu.Unlock()

	if deadline.IsZero() {
		return ""
	}
	return FormatRemaining(c.clock.Now(), deadline)
}

func (c *Countdown) publish(s string) {
	// Keep only the freshest render.
	select {
	case c.updates <- s:
	default:
		select {
		case <-c.updates:
		default:
		}
		select {
		case c.updates <- s:
		default:
		}
	}
}
