package session

import (
	"sync"

	"github.com/rs/zerolog"
)

const watcherBuffer = 16

// Watchers fans committed Session snapshots out to subscribers. Delivery is
// non-blocking: a subscriber that stops draining its channel misses
// snapshots rather than stalling the writer.
type Watchers struct {
	mu     sync.Mutex
	subs   map[int]chan Session
	nextID int
	logger zerolog.Logger
}

// NewWatchers creates an empty watcher set.
func NewWatchers(logger zerolog.Logger) *Watchers {
	return &Watchers{
		subs:   make(map[int]chan Session),
		logger: logger,
	}
}

// Subscribe registers a new watcher and delivers the initial snapshot before
// returning. The stop function is idempotent and closes the channel.
func (w *Watchers) Subscribe(initial Session) (<-chan Session, func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	id := w.nextID
	w.nextID++

	ch := make(chan Session, watcherBuffer)
	ch <- initial
	w.subs[id] = ch

	var once sync.Once
	stop := func() {
		once.Do(func() {
			w.mu.Lock()
			defer w.mu.Unlock()
			if sub, ok := w.subs[id]; ok {
				delete(w.subs, id)
				close(sub)
			}
		})
	}
	return ch, stop
}

// Broadcast delivers a committed snapshot to every subscriber.
func (w *Watchers) Broadcast(snapshot Session) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for id, ch := range w.subs {
		select {
		case ch <- snapshot:
		default:
			w.logger.Warn().Int("watcher", id).Msg("session snapshot dropped: watcher buffer full")
		}
	}
}

// Len reports the number of active subscribers.
func (w *Watchers) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.subs)
}
