// Package store defines the persistence interfaces for the durable ledgers.
// Implementations live under internal/store/<driver>/ (sqlite, postgres).
package store

import (
	"context"

	"github.com/Shagunjha0111/community-section/internal/model"
)

// Store exposes the durable collections the router operates on. The presence
// registry is intentionally absent: it does not survive a restart.
type Store interface {
	Users() Users
	Requests() Requests
	Connections() Connections
	Messages() Messages

	Ping(ctx context.Context) error
	Close() error
}

// Users is the directory backing table. The core treats it as read-only;
// Put exists solely for the startup seed import.
type Users interface {
	// Get resolves an id or display name to a user record, id match first.
	Get(ctx context.Context, idOrName string) (*model.UserRef, error)
	List(ctx context.Context) ([]*model.UserRef, error)
	Put(ctx context.Context, u model.UserRef) error
}

// Requests is the connection-request ledger. Each logical request is stored
// as two rows, one per participant's local view, so that clearing one side
// leaves the other side's view intact.
type Requests interface {
	// Submit appends a pending request for the ordered (from, to) pair.
	// Returns false without writing when a pending entry already exists in
	// either view.
	Submit(ctx context.Context, from, to string) (created bool, err error)

	// ListFor returns the rows of one participant's view, insertion order.
	ListFor(ctx context.Context, participant string) ([]*model.ConnectionRequest, error)

	// Accept flips the pending rows of the ordered (from, to) pair to
	// accepted in place. Returns false when no pending row matched.
	Accept(ctx context.Context, from, to string) (accepted bool, err error)

	// Clear wipes every row of the participant's view. The counterpart's
	// view of the same exchanges is untouched.
	Clear(ctx context.Context, participant string) error
}

// Connections is the confirmed-connection set, deduplicated per unordered pair.
type Connections interface {
	// Materialize appends a connection for the pair unless one already
	// exists in either orientation; returns false on the duplicate case.
	Materialize(ctx context.Context, a, b model.UserRef) (created bool, err error)

	List(ctx context.Context) ([]*model.Connection, error)

	// Remove deletes the record matching (x, y) or (y, x). Returns false
	// when no record matched.
	Remove(ctx context.Context, x, y string) (removed bool, err error)
}

// Messages is the append-only chat log.
type Messages interface {
	// Append persists a message and returns it with its assigned id and
	// timestamp. Ids are strictly increasing.
	Append(ctx context.Context, from model.UserRef, to, body string) (*model.ChatMessage, error)

	// History returns all messages between the pair in either direction,
	// ascending by sent time then id.
	History(ctx context.Context, a, b string) ([]*model.ChatMessage, error)

	// Conversations returns one entry per distinct peer, newest exchange
	// first.
	Conversations(ctx context.Context, userID string) ([]*model.Conversation, error)
}
