package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Shagunjha0111/community-section/internal/model"
	"github.com/Shagunjha0111/community-section/internal/respond"
)

type pairBody struct {
	FromUserID string `json:"fromUserId"`
	ToUserID   string `json:"toUserId"`
}

type sendBody struct {
	FromUserID string `json:"fromUserId"`
	ToUserID   string `json:"toUserId"`
	Message    string `json:"message"`
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := a.store.Ping(r.Context()); err != nil {
		respond.WriteError(w, http.StatusServiceUnavailable, "storage unreachable")
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) handleSubmitRequest(w http.ResponseWriter, r *http.Request) {
	var body pairBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respond.WriteBadRequest(w, "fromUserId and toUserId are required")
		return
	}

	created, err := a.router.SubmitRequest(r.Context(), body.FromUserID, body.ToUserID)
	if err != nil {
		a.writeRouterError(w, err)
		return
	}
	if !created {
		respond.WriteJSON(w, http.StatusOK, map[string]string{"message": "Request already pending"})
		return
	}
	respond.WriteJSON(w, http.StatusCreated, map[string]string{"message": "Request sent"})
}

func (a *App) handleListRequests(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	reqs, err := a.router.ListRequests(r.Context(), userID)
	if err != nil {
		a.writeRouterError(w, err)
		return
	}
	if reqs == nil {
		reqs = []*model.ConnectionRequest{}
	}
	respond.WriteJSON(w, http.StatusOK, reqs)
}

func (a *App) handleAcceptRequest(w http.ResponseWriter, r *http.Request) {
	var body pairBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respond.WriteBadRequest(w, "fromUserId and toUserId are required")
		return
	}

	if err := a.router.AcceptRequest(r.Context(), body.FromUserID, body.ToUserID); err != nil {
		a.writeRouterError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"message": "Request accepted and connection created"})
}

func (a *App) handleClearLedger(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if err := a.router.ClearLedger(r.Context(), userID); err != nil {
		a.writeRouterError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"message": "Cleared"})
}

func (a *App) handleListConnections(w http.ResponseWriter, r *http.Request) {
	conns, err := a.router.ListConnections(r.Context())
	if err != nil {
		a.writeRouterError(w, err)
		return
	}
	if conns == nil {
		conns = []*model.Connection{}
	}
	respond.WriteJSON(w, http.StatusOK, conns)
}

func (a *App) handleRemoveConnection(w http.ResponseWriter, r *http.Request) {
	var body pairBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respond.WriteBadRequest(w, "fromUserId and toUserId are required")
		return
	}

	if err := a.router.RemoveConnection(r.Context(), body.FromUserID, body.ToUserID); err != nil {
		a.writeRouterError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"message": "Connection removed successfully"})
}

// handleSendMessage is the HTTP fallback delivery path for clients without
// an open socket. It routes through the same code as the socket path, so
// online recipients still get their live push.
func (a *App) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var body sendBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respond.WriteBadRequest(w, "fromUserId, toUserId and message are required")
		return
	}

	msg, err := a.router.Send(r.Context(), body.FromUserID, body.ToUserID, body.Message)
	if err != nil {
		a.writeRouterError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, msg)
}

func (a *App) handleHistory(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	msgs, err := a.router.History(r.Context(), vars["userId1"], vars["userId2"])
	if err != nil {
		a.writeRouterError(w, err)
		return
	}
	if msgs == nil {
		msgs = []*model.ChatMessage{}
	}
	respond.WriteJSON(w, http.StatusOK, msgs)
}

func (a *App) handleConversations(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	convs, err := a.router.Conversations(r.Context(), vars["userId"])
	if err != nil {
		a.writeRouterError(w, err)
		return
	}
	if convs == nil {
		convs = []*model.Conversation{}
	}
	respond.WriteJSON(w, http.StatusOK, convs)
}

// handleMarkRead acknowledges without acting; read status is tracked
// client-side. TODO: persist per-pair read cursors once the clients need
// unread counts across devices.
func (a *App) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, map[string]string{"message": "Messages marked as read"})
}

func (a *App) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.store.Users().List(r.Context())
	if err != nil {
		respond.WriteInternalError(w, "failed to list users")
		return
	}
	if users == nil {
		users = []*model.UserRef{}
	}
	respond.WriteJSON(w, http.StatusOK, users)
}

func (a *App) writeRouterError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidRequest):
		respond.WriteBadRequest(w, err.Error())
	case errors.Is(err, model.ErrNotFound):
		respond.WriteNotFound(w, err.Error())
	case errors.Is(err, model.ErrUnknownUser):
		respond.WriteNotFound(w, "user not found")
	default:
		a.logger.Error("request failed", slog.Any("error", err))
		respond.WriteInternalError(w, "operation failed")
	}
}
