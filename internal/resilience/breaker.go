// Package resilience provides the target breaker that stops a run from
// launching browser after browser against a deployment that is down.
package resilience

import (
	"errors"
	"sync"
	"time"

	"github.com/testforge/hrm-e2e/internal/domain"
)

// State of a Breaker
type State int32

const (
	// StateClosed lets every attempt through
	StateClosed State = iota
	// StateOpen rejects attempts until the cooldown elapses
	StateOpen
	// StateHalfOpen lets one probe attempt through
	StateHalfOpen
)

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

// ErrOpen is returned by Allow while the target is considered down
var ErrOpen = errors.New("target breaker is open")

// Config configures a Breaker
type Config struct {
	// Name identifies the breaker in logs
	Name string

	// Threshold is the number of consecutive counted failures that trips
	// the breaker
	Threshold uint32

	// Cooldown is how long the breaker stays open before a probe
	Cooldown time.Duration

	// Counts decides which errors say something about the target's
	// health. Defaults to Unreachable.
	Counts func(err error) bool

	// OnStateChange is called on every transition, with the lock held
	OnStateChange func(name string, from, to State)

	// Clock replaces time.Now
	Clock func() time.Time
}

// DefaultConfig trips after three consecutive unreachable attempts and
// probes again after thirty seconds
func DefaultConfig(name string) Config {
	return Config{
		Name:      name,
		Threshold: 3,
		Cooldown:  30 * time.Second,
	}
}

// Unreachable reports whether err means the target or the browser could
// not be reached at all, as opposed to a failed check on a loaded page.
func Unreachable(err error) bool {
	switch domain.GetErrorCode(err) {
	case domain.ErrCodeNavigation, domain.ErrCodeUnsupportedEngine:
		return true
	}
	return false
}

// Breaker counts consecutive failures against one target
type Breaker struct {
	cfg Config

	mu       sync.Mutex
	state    State
	failures uint32
	openedAt time.Time
	probing  bool
}

// New creates a closed breaker
func New(cfg Config) *Breaker {
	if cfg.Threshold == 0 {
		cfg.Threshold = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	if cfg.Counts == nil {
		cfg.Counts = Unreachable
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Breaker{cfg: cfg}
}

// State returns the current state, moving from open to half-open once the
// cooldown has elapsed
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advance()
	return b.state
}

// Failures returns the consecutive counted failures
func (b *Breaker) Failures() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// Allow returns ErrOpen when an attempt must not start. In half-open state
// only one probe is allowed until it is recorded.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advance()

	switch b.state {
	case StateOpen:
		return ErrOpen
	case StateHalfOpen:
		if b.probing {
			return ErrOpen
		}
		b.probing = true
	}
	return nil
}

// Record reports the outcome of an allowed attempt
func (b *Breaker) Record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil || !b.cfg.Counts(err) {
		b.failures = 0
		b.probing = false
		b.set(StateClosed)
		return
	}

	b.failures++
	switch b.state {
	case StateHalfOpen:
		b.probing = false
		b.open()
	case StateClosed:
		if b.failures >= b.cfg.Threshold {
			b.open()
		}
	}
}

// Release gives back an allowed attempt that never ran. The state and the
// failure count are left alone.
func (b *Breaker) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.probing = false
}

func (b *Breaker) open() {
	b.openedAt = b.cfg.Clock()
	b.set(StateOpen)
}

func (b *Breaker) advance() {
	if b.state == StateOpen && b.cfg.Clock().Sub(b.openedAt) >= b.cfg.Cooldown {
		b.set(StateHalfOpen)
	}
}

func (b *Breaker) set(s State) {
	if b.state == s {
		return
	}
	prev := b.state
	b.state = s
	if b.cfg.OnStateChange != nil {
		b.cfg.OnStateChange(b.cfg.Name, prev, s)
	}
}
