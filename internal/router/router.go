// Package router orchestrates the connection lifecycle against the durable
// ledgers and routes chat between online users, falling back to the message
// log for offline delivery.
package router

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/Shagunjha0111/community-section/internal/directory"
	"github.com/Shagunjha0111/community-section/internal/model"
	"github.com/Shagunjha0111/community-section/internal/pairlock"
	"github.com/Shagunjha0111/community-section/internal/store"
	"github.com/Shagunjha0111/community-section/pkg/presence"
)

// Metrics receives routing events. The server wires its Prometheus
// collectors here; a nil Metrics disables instrumentation.
type Metrics interface {
	SessionOpened(replaced bool)
	SessionClosed()
	RequestHandled(op, result string)
	MessageRouted(delivered bool)
	TypingForwarded(delivered bool)
}

// binding links a live transport connection to the user it joined as.
type binding struct {
	channel presence.Channel
	// expectedUser is the JWT subject when the server requires auth;
	// empty means the join event is free to name any user.
	expectedUser string
	userID       string
}

type Router struct {
	logger   *slog.Logger
	store    store.Store
	dir      directory.Resolver
	presence *presence.Registry
	locks    *pairlock.Set
	metrics  Metrics

	mu       sync.RWMutex
	bindings map[uuid.UUID]*binding
}

func NewRouter(logger *slog.Logger, st store.Store, dir directory.Resolver, reg *presence.Registry, metrics Metrics) *Router {
	return &Router{
		logger:   logger.With(slog.String("component", "router")),
		store:    st,
		dir:      dir,
		presence: reg,
		locks:    pairlock.New(),
		metrics:  metrics,
		bindings: make(map[uuid.UUID]*binding),
	}
}

// canonicalize resolves an id-or-name through the directory. Identifiers the
// directory does not know pass through unchanged; request and message records
// may legitimately reference users the directory has not seen yet.
func (r *Router) canonicalize(ctx context.Context, idOrName string) string {
	ref, err := r.dir.Resolve(ctx, idOrName)
	if err != nil {
		return idOrName
	}
	return ref.ID
}

// senderRef resolves the sender snapshot for a message, falling back to the
// bare id when the directory misses so chat keeps flowing.
func (r *Router) senderRef(ctx context.Context, userID string) model.UserRef {
	ref, err := r.dir.Resolve(ctx, userID)
	if err != nil {
		return model.UserRef{ID: userID, DisplayName: userID}
	}
	return *ref
}

// --- Request lifecycle ---

// SubmitRequest records a pending connection request. Returns true when a
// new request was created, false when one was already pending (idempotent).
func (r *Router) SubmitRequest(ctx context.Context, from, to string) (bool, error) {
	from = r.canonicalize(ctx, from)
	to = r.canonicalize(ctx, to)
	if from == "" || to == "" || from == to {
		return false, model.ErrInvalidRequest
	}

	unlock := r.locks.Lock(from, to)
	defer unlock()

	created, err := r.store.Requests().Submit(ctx, from, to)
	if err != nil {
		return false, err
	}
	if r.metrics != nil {
		result := "already_pending"
		if created {
			result = "created"
		}
		r.metrics.RequestHandled("submit", result)
	}
	return created, nil
}

// ListRequests returns the participant's local ledger view.
func (r *Router) ListRequests(ctx context.Context, participant string) ([]*model.ConnectionRequest, error) {
	participant = r.canonicalize(ctx, participant)
	if participant == "" {
		return nil, model.ErrInvalidRequest
	}
	return r.store.Requests().ListFor(ctx, participant)
}

// AcceptRequest flips the pending (from, to) request to accepted and
// materializes the connection. The ledger flip and the materialization are
// deliberately not transactional: a directory failure after the flip leaves
// the two stores drifted, and retrying is safe because materialize
// deduplicates. Exactly one concurrent caller observes the flip.
func (r *Router) AcceptRequest(ctx context.Context, from, to string) error {
	from = r.canonicalize(ctx, from)
	to = r.canonicalize(ctx, to)
	if from == "" || to == "" || from == to {
		return model.ErrInvalidRequest
	}

	unlock := r.locks.Lock(from, to)
	defer unlock()

	accepted, err := r.store.Requests().Accept(ctx, from, to)
	if err != nil {
		return err
	}
	if !accepted {
		if r.metrics != nil {
			r.metrics.RequestHandled("accept", "not_found")
		}
		return model.ErrNotFound
	}

	fromRef, err := r.dir.Resolve(ctx, from)
	if err != nil {
		return err
	}
	toRef, err := r.dir.Resolve(ctx, to)
	if err != nil {
		return err
	}

	created, err := r.store.Connections().Materialize(ctx, *fromRef, *toRef)
	if err != nil {
		return err
	}
	if !created {
		// ledger and store can disagree after partial failures; tolerated
		r.logger.Debug("connection already materialized",
			slog.String("from", from), slog.String("to", to))
	}
	if r.metrics != nil {
		r.metrics.RequestHandled("accept", "accepted")
	}
	return nil
}

// ClearLedger wipes one participant's local request view. The counterpart's
// view and any materialized connections are untouched.
func (r *Router) ClearLedger(ctx context.Context, participant string) error {
	participant = r.canonicalize(ctx, participant)
	if participant == "" {
		return model.ErrInvalidRequest
	}
	return r.store.Requests().Clear(ctx, participant)
}

// --- Connections ---

func (r *Router) ListConnections(ctx context.Context) ([]*model.Connection, error) {
	return r.store.Connections().List(ctx)
}

// RemoveConnection deletes the connection joining the unordered pair {x, y}.
func (r *Router) RemoveConnection(ctx context.Context, x, y string) error {
	x = r.canonicalize(ctx, x)
	y = r.canonicalize(ctx, y)
	if x == "" || y == "" {
		return model.ErrInvalidRequest
	}

	unlock := r.locks.Lock(x, y)
	defer unlock()

	removed, err := r.store.Connections().Remove(ctx, x, y)
	if err != nil {
		return err
	}
	if !removed {
		return model.ErrNotFound
	}
	return nil
}

// --- Sessions ---

// OpenSession registers the channel as the user's live delivery handle.
func (r *Router) OpenSession(userID string, ch presence.Channel) {
	replaced := r.presence.Open(userID, ch)
	if r.metrics != nil {
		r.metrics.SessionOpened(replaced)
	}
	r.logger.Info("session opened", slog.String("userID", userID), slog.Bool("replaced", replaced))
}

// CloseSession drops the user's presence entry if it still holds this
// channel. A stale close from a superseded session is a no-op.
func (r *Router) CloseSession(userID string, ch presence.Channel) {
	if r.presence.Close(userID, ch) {
		if r.metrics != nil {
			r.metrics.SessionClosed()
		}
		r.logger.Info("session closed", slog.String("userID", userID))
	}
}

// --- Messaging ---

// Send persists a message and then attempts live delivery. Durability comes
// first: once the append succeeds the message survives even if every push
// fails, recoverable through history replay. The recipient gets a
// new_message frame when online; the sender always gets a message_sent echo
// on their own channel for multi-tab consistency.
func (r *Router) Send(ctx context.Context, from, to, body string) (*model.ChatMessage, error) {
	from = r.canonicalize(ctx, from)
	to = r.canonicalize(ctx, to)
	if from == "" || to == "" || body == "" {
		return nil, model.ErrInvalidRequest
	}

	msg, err := r.store.Messages().Append(ctx, r.senderRef(ctx, from), to, body)
	if err != nil {
		return nil, err
	}

	delivered := r.push(to, EventNewMessage, msg)
	r.push(from, EventMessageSent, msg)

	if r.metrics != nil {
		r.metrics.MessageRouted(delivered)
	}
	return msg, nil
}

// Typing forwards an ephemeral typing signal. Nothing is persisted; offline
// recipients simply never see it.
func (r *Router) Typing(ctx context.Context, from, to string, isTyping bool) {
	from = r.canonicalize(ctx, from)
	to = r.canonicalize(ctx, to)
	if from == "" || to == "" {
		return
	}

	event := EventUserTyping
	if !isTyping {
		event = EventUserStopTyping
	}
	sender := r.senderRef(ctx, from)
	delivered := r.push(to, event, TypingNotice{FromUserID: sender.ID, FromUserName: sender.DisplayName})
	if r.metrics != nil {
		r.metrics.TypingForwarded(delivered)
	}
}

// History returns the full exchange between two users, oldest first.
func (r *Router) History(ctx context.Context, a, b string) ([]*model.ChatMessage, error) {
	a = r.canonicalize(ctx, a)
	b = r.canonicalize(ctx, b)
	if a == "" || b == "" {
		return nil, model.ErrInvalidRequest
	}
	return r.store.Messages().History(ctx, a, b)
}

// Conversations returns the user's peers with the latest message each,
// most recent first.
func (r *Router) Conversations(ctx context.Context, userID string) ([]*model.Conversation, error) {
	userID = r.canonicalize(ctx, userID)
	if userID == "" {
		return nil, model.ErrInvalidRequest
	}
	return r.store.Messages().Conversations(ctx, userID)
}

// push marshals an envelope and queues it on the user's live channel.
// Returns false when the user is offline. Push failures never propagate;
// the durable log is the source of truth.
func (r *Router) push(userID, event string, payload any) bool {
	ch, ok := r.presence.Get(userID)
	if !ok {
		return false
	}
	frame, err := json.Marshal(ServerMessage{Event: event, Payload: payload})
	if err != nil {
		r.logger.Error("failed to marshal push frame", slog.String("event", event), slog.Any("error", err))
		return false
	}
	ch.Send(frame)
	return true
}
