package storefront

import (
	"context"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/citycare/storefront/pkg/logger"
)

// Registry hands out one State per device, building it on first use.
type Registry struct {
	mu      sync.Mutex
	states  map[string]*State
	closers []func() error

	deps Dependencies
	logg *logger.Logger
	now  func() time.Time
}

func NewRegistry(deps Dependencies) (*Registry, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	r := &Registry{
		states: map[string]*State{},
		deps:   deps,
		logg:   deps.Logger,
		now:    deps.Now,
	}
	if r.logg == nil {
		r.logg = logger.Nop()
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r, nil
}

// Get returns the device's state, creating and rehydrating it when new.
func (r *Registry) Get(ctx context.Context, deviceID string) (*State, error) {
	r.mu.Lock()
	if s, ok := r.states[deviceID]; ok {
		r.mu.Unlock()
		s.Touch(r.now())
		return s, nil
	}
	r.mu.Unlock()

	s, err := NewState(ctx, deviceID, r.deps)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.states[deviceID]; ok {
		existing.Touch(r.now())
		return existing, nil
	}
	r.states[deviceID] = s
	return s, nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}

// Sweep drops devices idle for longer than idle. Their durable state stays in
// the local store and is rehydrated on the next request.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)
	r.mu.Lock()
	defer r.mu.Unlock()
	dropped := 0
	for id, s := range r.states {
		if s.LastSeen().Before(cutoff) {
			delete(r.states, id)
			dropped++
		}
	}
	return dropped
}

// RunSweeper sweeps every interval until ctx ends.
func (r *Registry) RunSweeper(ctx context.Context, interval, idle time.Duration) {
	if interval <= 0 || idle <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(idle); n > 0 {
				r.logg.Info(r.logg.WithField(ctx, "devices", n), "evicted idle devices")
			}
		}
	}
}

// OnClose registers a resource to release on Close.
func (r *Registry) OnClose(fn func() error) {
	r.mu.Lock()
	r.closers = append(r.closers, fn)
	r.mu.Unlock()
}

// Close forgets every device and releases registered resources, newest first.
func (r *Registry) Close() error {
	r.mu.Lock()
	closers := r.closers
	r.closers = nil
	r.states = map[string]*State{}
	r.mu.Unlock()

	var err error
	for i := len(closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, closers[i]())
	}
	return err
}
