// Package circuitbreaker implements the Circuit Breaker pattern for fault
// tolerance. It protects the progress core from cascading failures when an
// external collaborator (remote content generator, Redis) degrades.
// No external dependencies - uses only standard library.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State represents the current state of the circuit breaker.
type State int

const (
	// StateClosed is the normal state - calls are allowed through.
	StateClosed State = iota
	// StateOpen is the failure state - calls are rejected immediately.
	StateOpen
	// StateHalfOpen is the recovery state - a limited number of probe calls
	// is allowed to test whether the dependency recovered.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrOpen is returned when the circuit is open and calls are rejected.
var ErrOpen = errors.New("circuit breaker is open")

// Config holds circuit breaker configuration.
type Config struct {
	// Name identifies this breaker in logs and state-change callbacks.
	Name string

	// FailureThreshold is the number of consecutive failures before the
	// circuit opens. Default: 5.
	FailureThreshold int

	// SuccessThreshold is the number of consecutive successes in half-open
	// state required to close the circuit again. Default: 2.
	SuccessThreshold int

	// CoolDown is how long the circuit stays open before allowing a probe.
	// Default: 30s.
	CoolDown time.Duration

	// OnStateChange is invoked on every state transition.
	OnStateChange func(name string, from, to State)
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		CoolDown:         30 * time.Second,
	}
}

// Breaker implements the circuit breaker pattern.
type Breaker struct {
	config Config

	mu            sync.Mutex
	state         State
	failures      int
	successes     int
	probeInFlight bool
	openedAt      time.Time
}

// New creates a new Breaker with the given configuration. Zero-valued
// thresholds fall back to defaults.
func New(config Config) *Breaker {
	def := DefaultConfig(config.Name)
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = def.FailureThreshold
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = def.SuccessThreshold
	}
	if config.CoolDown <= 0 {
		config.CoolDown = def.CoolDown
	}

	return &Breaker{config: config, state: StateClosed}
}

// Execute runs fn if the circuit allows it and records the outcome.
// It returns ErrOpen without invoking fn when the circuit is open.
func (b *Breaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := b.allow(); err != nil {
		return err
	}

	err := fn(ctx)
	b.record(err)
	return err
}

// allow decides whether a call may proceed.
func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return nil
	case StateOpen:
		if time.Since(b.openedAt) >= b.config.CoolDown {
			b.transition(StateHalfOpen)
			b.probeInFlight = true
			return nil
		}
		return ErrOpen
	case StateHalfOpen:
		// One probe at a time.
		if b.probeInFlight {
			return ErrOpen
		}
		b.probeInFlight = true
		return nil
	default:
		return ErrOpen
	}
}

// record registers the outcome of a call and drives state transitions.
func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.probeInFlight = false

	if err != nil {
		b.successes = 0
		b.failures++
		switch b.state {
		case StateClosed:
			if b.failures >= b.config.FailureThreshold {
				b.transition(StateOpen)
			}
		case StateHalfOpen:
			// Any failure during recovery reopens the circuit.
			b.transition(StateOpen)
		}
		return
	}

	b.failures = 0
	if b.state == StateHalfOpen {
		b.successes++
		if b.successes >= b.config.SuccessThreshold {
			b.transition(StateClosed)
		}
	}
}

// transition moves to a new state and fires the callback.
func (b *Breaker) transition(to State) {
	if b.state == to {
		return
	}

	from := b.state
	b.state = to
	b.successes = 0
	if to == StateOpen {
		b.openedAt = time.Now()
		b.failures = 0
	}

	if b.config.OnStateChange != nil {
		b.config.OnStateChange(b.config.Name, from, to)
	}
}

// State returns the current state of the circuit breaker.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Name returns the name of the circuit breaker.
func (b *Breaker) Name() string {
	return b.config.Name
}

// Reset returns the breaker to its initial closed state.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = StateClosed
	b.failures = 0
	b.successes = 0
	b.probeInFlight = false
}
