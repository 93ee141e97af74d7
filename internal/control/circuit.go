// Package control holds the circuit breaker guarding the Telegram poll loop.
package control

import "time"

type CircuitState string

const (
	CircuitClosed   CircuitState = "closed"
	CircuitOpen     CircuitState = "open"
	CircuitHalfOpen CircuitState = "half_open"
)

// CircuitBreaker opens after a run of consecutive polling failures so the bot
// backs off from a misbehaving API instead of hammering it.
type CircuitBreaker struct {
	Threshold int
	Cooldown  time.Duration

	state    CircuitState
	failures int
	openedAt time.Time
}

func NewCircuitBreaker(threshold int, cooldown time.Duration) *CircuitBreaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &CircuitBreaker{
		Threshold: threshold,
		Cooldown:  cooldown,
		state:     CircuitClosed,
	}
}

func (c *CircuitBreaker) State() CircuitState {
	return c.state
}

// Allow returns whether a poll is allowed at this instant. An open circuit
// transitions to half-open once the cooldown has elapsed, letting one probe
// through.
func (c *CircuitBreaker) Allow(now time.Time) bool {
	if c.state != CircuitOpen {
		return true
	}
	if now.Sub(c.openedAt) >= c.Cooldown {
		c.state = CircuitHalfOpen
		return true
	}
	return false
}

// RecordSuccess closes the circuit after a successful poll.
func (c *CircuitBreaker) RecordSuccess() {
	c.state = CircuitClosed
	c.failures = 0
}

// RecordFailure counts a failed poll. A failed half-open probe reopens the
// circuit immediately.
func (c *CircuitBreaker) RecordFailure(now time.Time) {
	if c.state == CircuitHalfOpen {
		c.state = CircuitOpen
		c.openedAt = now
		return
	}
	c.failures++
	if c.failures >= c.Threshold {
		c.state = CircuitOpen
		c.openedAt = now
	}
}
