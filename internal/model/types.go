package model

import "time"

// RequestStatus is the lifecycle state of a connection request.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusAccepted RequestStatus = "accepted"
)

// RequestDirection marks which side of an exchange a ledger row belongs to.
// Every submitted request produces an outgoing row in the sender's view and
// an incoming row in the receiver's view.
type RequestDirection string

const (
	DirectionOutgoing RequestDirection = "outgoing"
	DirectionIncoming RequestDirection = "incoming"
)

// UserRef is an immutable snapshot of a directory record, captured at the
// moment a connection or message is recorded. Later display-name changes do
// not retroactively alter history.
type UserRef struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// ConnectionRequest is one participant's view of a pending or accepted
// request. Identity key is the ordered (FromUserID, ToUserID) pair.
type ConnectionRequest struct {
	Owner      string           `json:"-"`
	FromUserID string           `json:"fromUserId"`
	ToUserID   string           `json:"toUserId"`
	Direction  RequestDirection `json:"direction"`
	Status     RequestStatus    `json:"status"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// Connection is a confirmed, logically undirected link between two users.
type Connection struct {
	UserA     UserRef   `json:"userA"`
	UserB     UserRef   `json:"userB"`
	CreatedAt time.Time `json:"createdAt"`
}

// Links reports whether the connection joins the unordered pair {x, y}.
func (c Connection) Links(x, y string) bool {
	return (c.UserA.ID == x && c.UserB.ID == y) || (c.UserA.ID == y && c.UserB.ID == x)
}

// ChatMessage is a persisted direct message. IDs are assigned by the message
// log in strictly increasing order, which gives deterministic history replay.
type ChatMessage struct {
	ID       int64     `json:"id"`
	FromUser UserRef   `json:"fromUser"`
	ToUserID string    `json:"toUserId"`
	Body     string    `json:"body"`
	SentAt   time.Time `json:"sentAt"`
}

// Conversation summarizes the most recent exchange with a single peer.
type Conversation struct {
	Peer        UserRef   `json:"peer"`
	LastMessage string    `json:"lastMessage"`
	LastAt      time.Time `json:"lastTimestamp"`
}
