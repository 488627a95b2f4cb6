package fixtures

import (
	"context"
	"sync"

	"github.com/testforge/hrm-e2e/internal/observability"
)

// Registry claims generated names so parallel runners never create the
// same record. Claim reports false when name is already taken.
type Registry interface {
	Claim(ctx context.Context, name string) (bool, error)
	Release(ctx context.Context, name string) error
}

// MemoryRegistry is a process-local Registry
type MemoryRegistry struct {
	mu    sync.Mutex
	names map[string]struct{}
}

// NewMemoryRegistry creates an empty registry
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{names: make(map[string]struct{})}
}

func (r *MemoryRegistry) Claim(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.names[name]; taken {
		return false, nil
	}
	r.names[name] = struct{}{}
	return true, nil
}

func (r *MemoryRegistry) Release(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.names, name)
	return nil
}

// Len returns how many names are claimed
func (r *MemoryRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.names)
}

type instrumented struct {
	Registry
	name    string
	metrics *observability.Metrics
}

// Instrument counts every claim made through r under the label name
func Instrument(r Registry, name string, metrics *observability.Metrics) Registry {
	return &instrumented{Registry: r, name: name, metrics: metrics}
}

func (i *instrumented) Claim(ctx context.Context, name string) (bool, error) {
	ok, err := i.Registry.Claim(ctx, name)
	i.metrics.RecordNameClaim(i.name, ok, err)
	return ok, err
}
