package session

import "time"

// Transient disconnects get a real retry loop: bounded exponential backoff,
// then give up for good.

type backoffPolicy struct {
	initial  time.Duration
	max      time.Duration
	attempts int
}

func defaultBackoff() backoffPolicy {
	return backoffPolicy{
		initial:  time.Second,
		max:      30 * time.Second,
		attempts: 6,
	}
}

// delay returns the wait before attempt n (0-based).
func (p backoffPolicy) delay(attempt int) time.Duration {
	d := p.initial
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= p.max {
			return p.max
		}
	}
	return d
}
