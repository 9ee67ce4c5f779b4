package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

var _ Store = (*InMemoryStore)(nil)

// InMemoryStore is an in-memory implementation of Store. It is the store of
// choice for tests and for ephemeral use where the session should not
// survive the process.
type InMemoryStore struct {
	mu       sync.RWMutex
	current  Session
	watchers *Watchers
}

// NewInMemoryStore creates a store holding the default Session.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		current:  Defaults(),
		watchers: NewWatchers(zerolog.Nop()),
	}
}

// Read returns the current Session.
func (s *InMemoryStore) Read(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, nil
}

// Watch subscribes to committed snapshots, starting with the current value.
func (s *InMemoryStore) Watch(ctx context.Context) (<-chan Session, func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	// Holding the write lock pins the snapshot: no update can commit
	// between reading the current value and registering the watcher.
	s.mu.Lock()
	ch, stop := s.watchers.Subscribe(s.current)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		stop()
	}()
	return ch, stop, nil
}

// Update merges fields into the store as one atomic operation.
func (s *InMemoryStore) Update(ctx context.Context, fields Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if fields.IsZero() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = fields.Apply(s.current)
	s.watchers.Broadcast(s.current)
	return nil
}

// Clear resets every field to its default.
func (s *InMemoryStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Defaults()
	s.watchers.Broadcast(s.current)
	return nil
}
