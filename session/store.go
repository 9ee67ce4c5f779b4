package session

import "context"

// Store is durable, observable storage for the installation's Session.
// Implementations must apply Update and Clear atomically: a concurrent Read
// or Watch never observes a state with only some of an update's fields
// applied. Last writer wins per field; callers group related fields into one
// Update to preserve cross-field invariants.
type Store interface {
	// Read returns the current Session, substituting defaults for unset
	// fields.
	Read(ctx context.Context) (Session, error)

	// Watch returns a channel of Session snapshots plus a stop function.
	// The current value is delivered immediately, then one snapshot per
	// committed Update or Clear. The channel is closed when the stop
	// function is called or ctx is done. Any number of watchers may be
	// active; they never block a writer.
	Watch(ctx context.Context) (<-chan Session, func(), error)

	// Update merges the given fields into the store as one atomic
	// operation.
	Update(ctx context.Context, fields Fields) error

	// Clear atomically resets every field to its default. Clearing an
	// already cleared store is a no-op.
	Clear(ctx context.Context) error
}
