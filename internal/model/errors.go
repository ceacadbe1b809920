package model

import "errors"

var (
	// ErrInvalidRequest rejects malformed input such as a self-directed
	// connection request or an empty user id. No side effects occur.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNotFound covers an accept on a missing or non-pending request and
	// a remove on a missing connection.
	ErrNotFound = errors.New("not found")

	// ErrUnknownUser is returned when directory resolution fails while
	// materializing a connection or routing a message.
	ErrUnknownUser = errors.New("unknown user")
)
