package presence

import (
	"log/slog"
	"sync"
	"time"
)

// Channel is the delivery handle attached to an online user. The transport
// layer's connection satisfies it; tests supply fakes.
type Channel interface {
	// Send queues a frame for delivery. Must never block indefinitely and
	// must tolerate being called on a closed channel.
	Send(msg []byte)
	// Close tears the channel down with the given reason.
	Close(err error)
}

// Entry records one online user. At most one entry exists per user; a new
// session replaces the previous handle.
type Entry struct {
	UserID   string
	Channel  Channel
	OpenedAt time.Time
}

// Registry is the in-memory presence map. It lives for the process lifetime
// and is deliberately outside the durability boundary: a restart starts with
// everyone offline.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry

	logger *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		entries: make(map[string]*Entry),
		logger:  logger.With(slog.String("component", "presence_registry")),
	}
}

// Open registers the channel as the user's delivery handle, superseding any
// previous one. The superseded channel is not closed here; its own lifecycle
// (read pump error, client disconnect) takes care of that.
func (r *Registry) Open(userID string, ch Channel) (replaced bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, replaced = r.entries[userID]
	r.entries[userID] = &Entry{UserID: userID, Channel: ch, OpenedAt: time.Now()}
	r.logger.Debug("session opened", slog.String("userID", userID), slog.Bool("replaced", replaced))
	return replaced
}

// Close removes the user's entry only if it still holds the given channel.
// A stale close from a superseded session must not evict a newer one.
func (r *Registry) Close(userID string, ch Channel) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[userID]
	if !ok || entry.Channel != ch {
		return false
	}
	delete(r.entries, userID)
	r.logger.Debug("session closed", slog.String("userID", userID))
	return true
}

// Get returns the user's live channel, if any.
func (r *Registry) Get(userID string) (Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[userID]
	if !ok {
		return nil, false
	}
	return entry.Channel, true
}

// Count reports how many live sessions the user holds (zero or one).
func (r *Registry) Count(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.entries[userID]; ok {
		return 1
	}
	return 0
}

// Len reports how many users are currently online.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Channels snapshots every live channel, for shutdown sweeps.
func (r *Registry) Channels() []Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Channel, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Channel)
	}
	return out
}
