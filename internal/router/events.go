package router

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/Shagunjha0111/community-section/pkg/presence"
)

// Attach registers a live transport channel with the router before any frame
// arrives. expectedUser carries the authenticated identity when the server
// requires session tokens; empty means the join event is self-declared.
func (r *Router) Attach(connID uuid.UUID, ch presence.Channel, expectedUser string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[connID] = &binding{channel: ch, expectedUser: expectedUser}
}

// Detach drops the binding and closes the session it had opened. Called from
// the transport's close handler; a session superseded by a newer connection
// is left alone by the conditional close.
func (r *Router) Detach(connID uuid.UUID) {
	r.mu.Lock()
	b, ok := r.bindings[connID]
	delete(r.bindings, connID)
	r.mu.Unlock()

	if ok && b.userID != "" {
		r.CloseSession(b.userID, b.channel)
	}
}

func (r *Router) lookupBinding(connID uuid.UUID) (*binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bindings[connID]
	return b, ok
}

// HandleMessage dispatches one inbound WebSocket frame. Malformed or
// unauthorized frames are logged and dropped; the socket stays open.
func (r *Router) HandleMessage(ctx context.Context, connID uuid.UUID, msg []byte) {
	if !gjson.ValidBytes(msg) {
		r.logger.Warn("dropping invalid frame", slog.String("connID", connID.String()))
		return
	}
	event := gjson.GetBytes(msg, "event").String()
	payload := gjson.GetBytes(msg, "payload")

	b, ok := r.lookupBinding(connID)
	if !ok {
		r.logger.Warn("frame from unattached connection", slog.String("connID", connID.String()))
		return
	}

	switch event {
	case EventJoin:
		r.handleJoin(ctx, b, connID, payload)
	case EventPrivateMessage:
		r.handlePrivateMessage(ctx, b, connID, payload)
	case EventTyping:
		r.handleTyping(ctx, b, true, payload)
	case EventStopTyping:
		r.handleTyping(ctx, b, false, payload)
	default:
		r.logger.Warn("received unknown event", slog.String("event", event), slog.String("connID", connID.String()))
	}
}

// handleJoin binds the connection to a user and opens their session.
func (r *Router) handleJoin(ctx context.Context, b *binding, connID uuid.UUID, payload gjson.Result) {
	userID := payload.Get("userId").String()
	if userID == "" {
		r.logger.Warn("join without userId", slog.String("connID", connID.String()))
		return
	}
	if b.expectedUser != "" && userID != b.expectedUser {
		r.logger.Warn("join user mismatch with session token",
			slog.String("connID", connID.String()),
			slog.String("claimed", userID),
			slog.String("authenticated", b.expectedUser))
		return
	}

	userID = r.canonicalize(ctx, userID)

	r.mu.Lock()
	b.userID = userID
	r.mu.Unlock()

	r.OpenSession(userID, b.channel)
}

func (r *Router) handlePrivateMessage(ctx context.Context, b *binding, connID uuid.UUID, payload gjson.Result) {
	if b.userID == "" {
		r.logger.Warn("private_message before join", slog.String("connID", connID.String()))
		return
	}
	to := payload.Get("toUserId").String()
	body := payload.Get("message").String()

	if _, err := r.Send(ctx, b.userID, to, body); err != nil {
		r.logger.Warn("failed to route message",
			slog.String("from", b.userID),
			slog.String("to", to),
			slog.Any("error", err))
	}
}

func (r *Router) handleTyping(ctx context.Context, b *binding, isTyping bool, payload gjson.Result) {
	if b.userID == "" {
		return
	}
	to := payload.Get("toUserId").String()
	if to == "" {
		return
	}
	r.Typing(ctx, b.userID, to, isTyping)
}
