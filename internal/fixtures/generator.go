// Package fixtures generates the unique names, emails and identifiers the
// scenarios create in the shared demo deployment.
package fixtures

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/testforge/hrm-e2e/internal/domain"
)

const (
	alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	base36       = "0123456789abcdefghijklmnopqrstuvwxyz"

	// SuffixLength is the random suffix appended by the Unique* helpers
	SuffixLength = 6

	DefaultRandomLength = 8
	DefaultPrefix       = "Test"
	DefaultJobTitle     = "Test Engineer"
	DefaultWorkShift    = "Day Shift"
	DefaultUsername     = "testuser"
	DefaultEmail        = "test@example.com"

	// claimAttempts bounds Reserve when the registry keeps refusing names
	claimAttempts = 5
)

// Generator produces test data from an injectable clock and random source.
// It is safe for concurrent use.
type Generator struct {
	mu       sync.Mutex
	rnd      *rand.Rand
	now      func() time.Time
	registry Registry
}

// Option configures a Generator
type Option func(*Generator)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithSeed makes the random source deterministic
func WithSeed(seed int64) Option {
	return func(g *Generator) { g.rnd = rand.New(rand.NewSource(seed)) }
}

// WithRegistry sets the registry Reserve claims names in
func WithRegistry(r Registry) Option {
	return func(g *Generator) { g.registry = r }
}

// New creates a generator seeded from the clock
func New(opts ...Option) *Generator {
	g := &Generator{
		now: time.Now,
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Generator) pick(n int, charset string) string {
	if n <= 0 {
		return ""
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(charset[g.rnd.Intn(len(charset))])
	}
	return b.String()
}

func (g *Generator) millis() int64 {
	return g.now().UnixMilli()
}

// RandomString returns n characters from [A-Za-z0-9]
func (g *Generator) RandomString(n int) string {
	return g.pick(n, alphanumeric)
}

// TimestampedString returns "<prefix> <unix millis> <6 base36 chars>"
func (g *Generator) TimestampedString(prefix string) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return fmt.Sprintf("%s %d %s", prefix, g.millis(), g.pick(6, base36))
}

// UUID returns a random version 4 UUID drawn from the generator's source
func (g *Generator) UUID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	id, err := uuid.NewRandomFromReader(g.rnd)
	if err != nil {
		// math/rand never fails a read
		return uuid.NewString()
	}
	return id.String()
}

func (g *Generator) spaced(base, def string, useTimestamp bool) string {
	if base == "" {
		base = def
	}
	if useTimestamp {
		return g.TimestampedString(base)
	}
	return base + " " + g.RandomString(SuffixLength)
}

// UniqueJobTitle returns "<base> <suffix>", or the timestamped form
func (g *Generator) UniqueJobTitle(base string, useTimestamp bool) string {
	return g.spaced(base, DefaultJobTitle, useTimestamp)
}

// UniqueWorkShiftName returns "<base> <suffix>", or the timestamped form
func (g *Generator) UniqueWorkShiftName(base string, useTimestamp bool) string {
	return g.spaced(base, DefaultWorkShift, useTimestamp)
}

// UniqueUsername returns "<base><suffix>", or the timestamped form
func (g *Generator) UniqueUsername(base string, useTimestamp bool) string {
	if base == "" {
		base = DefaultUsername
	}
	if useTimestamp {
		return g.TimestampedString(base)
	}
	return base + g.RandomString(SuffixLength)
}

// UniqueEmail inserts a suffix before the @ of base. The timestamped form
// inserts unix millis and 4 base36 characters instead. An address without
// a domain gets example.com.
func (g *Generator) UniqueEmail(base string, useTimestamp bool) string {
	if base == "" {
		base = DefaultEmail
	}
	local, host, ok := strings.Cut(base, "@")
	if !ok || host == "" {
		host = "example.com"
	}
	if useTimestamp {
		return fmt.Sprintf("%s%d%s@%s", local, g.millis(), g.pick(4, base36), host)
	}
	return local + g.RandomString(SuffixLength) + "@" + host
}

// Timestamp returns the current UTC time in ISO 8601 with ':' and '.'
// replaced by '-', safe for file names.
func (g *Generator) Timestamp() string {
	ts := g.now().UTC().Format("2006-01-02T15:04:05.000Z")
	return strings.NewReplacer(":", "-", ".", "-").Replace(ts)
}

// Reserve draws names from next until the registry accepts one. Without a
// registry the first name is returned.
func (g *Generator) Reserve(ctx context.Context, next func() string) (string, error) {
	if g.registry == nil {
		return next(), nil
	}
	for i := 0; i < claimAttempts; i++ {
		name := next()
		ok, err := g.registry.Claim(ctx, name)
		if err != nil {
			return "", fmt.Errorf("claiming %q: %w", name, err)
		}
		if ok {
			return name, nil
		}
	}
	return "", domain.ErrValidation(fmt.Sprintf("no unclaimed name after %d attempts", claimAttempts))
}

var std = New()

// RandomString uses the package generator
func RandomString(n int) string { return std.RandomString(n) }

// TimestampedString uses the package generator
func TimestampedString(prefix string) string { return std.TimestampedString(prefix) }

// UUID uses the package generator
func UUID() string { return std.UUID() }

// UniqueJobTitle uses the package generator
func UniqueJobTitle(base string, useTimestamp bool) string {
	return std.UniqueJobTitle(base, useTimestamp)
}

// UniqueWorkShiftName uses the package generator
func UniqueWorkShiftName(base string, useTimestamp bool) string {
	return std.UniqueWorkShiftName(base, useTimestamp)
}

// UniqueUsername uses the package generator
func UniqueUsername(base string, useTimestamp bool) string {
	return std.UniqueUsername(base, useTimestamp)
}

// UniqueEmail uses the package generator
func UniqueEmail(base string, useTimestamp bool) string {
	return std.UniqueEmail(base, useTimestamp)
}

// Timestamp uses the package generator
func Timestamp() string { return std.Timestamp() }
