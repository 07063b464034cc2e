package guard

import (
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/pixil98/go-instanceguard/internal/storage"
)

const guardsKey = "guards"

var (
	ErrEmptyWorld      = errors.New("world id is required")
	ErrNegativeTimeout = errors.New("timeout must not be negative")
)

// Registry is the durable set of guarded worlds and their cooldown timeouts.
// Every mutation is saved to the store before it becomes visible to readers.
type Registry struct {
	store storage.KeyValue

	// writeMu serializes mutations; mu guards the published map.
	writeMu sync.Mutex
	mu      sync.RWMutex
	guards  map[string]int
}

func NewRegistry(store storage.KeyValue) (*Registry, error) {
	if store == nil {
		return nil, fmt.Errorf("registry store is required")
	}

	guards := map[string]int{}
	_, err := store.Load(guardsKey, &guards)
	if err != nil {
		return nil, fmt.Errorf("loading guarded worlds: %w", err)
	}
	if guards == nil {
		guards = map[string]int{}
	}

	return &Registry{store: store, guards: guards}, nil
}

// IsGuarded reports whether the world is subject to the lockout policy.
func (r *Registry) IsGuarded(world string) bool {
	_, ok := r.Timeout(world)
	return ok
}

// Timeout returns the world's cooldown in seconds.
func (r *Registry) Timeout(world string) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.guards[world]
	return t, ok
}

// Set guards the world with the given timeout, replacing any existing one.
func (r *Registry) Set(world string, timeoutSeconds int) error {
	if world == "" {
		return ErrEmptyWorld
	}
	if timeoutSeconds < 0 {
		return ErrNegativeTimeout
	}

	return r.mutate(func(next map[string]int) bool {
		next[world] = timeoutSeconds
		return true
	})
}

// Remove stops guarding the world and reports whether it was guarded.
func (r *Registry) Remove(world string) (bool, error) {
	existed := false
	err := r.mutate(func(next map[string]int) bool {
		_, existed = next[world]
		delete(next, world)
		return existed
	})
	if err != nil {
		return false, err
	}
	return existed, nil
}

// List returns a copy of every guarded world and its timeout.
func (r *Registry) List() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return maps.Clone(r.guards)
}

// mutate applies fn to a copy of the current map, saves the copy and then
// publishes it. Nothing is saved when fn reports no change.
func (r *Registry) mutate(fn func(next map[string]int) bool) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	next := r.List()
	if !fn(next) {
		return nil
	}

	err := r.store.Save(guardsKey, next)
	if err != nil {
		return fmt.Errorf("saving guarded worlds: %w", err)
	}

	r.mu.Lock()
	r.guards = next
	r.mu.Unlock()

	return nil
}
