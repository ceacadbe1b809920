package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Shagunjha0111/community-section/internal/model"
	"github.com/Shagunjha0111/community-section/internal/store"
)

// sqliteStore implements store.Store on a single SQLite database file.
type sqliteStore struct {
	db *sql.DB
}

// New opens (or creates) the database at path and applies the schema.
func New(path string) (store.Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	return NewWithDB(db)
}

// NewWithDB wires an existing connection (used by tests and the factory).
func NewWithDB(db *sql.DB) (store.Store, error) {
	if err := EnsureSchema(db); err != nil {
		return nil, err
	}
	return &sqliteStore{db: db}, nil
}

// EnsureSchema applies the embedded DDL statements.
func EnsureSchema(db *sql.DB) error {
	for _, stmt := range store.SQLiteDDL() {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *sqliteStore) Users() store.Users             { return &users{db: s.db} }
func (s *sqliteStore) Requests() store.Requests       { return &requests{db: s.db} }
func (s *sqliteStore) Connections() store.Connections { return &connections{db: s.db} }
func (s *sqliteStore) Messages() store.Messages       { return &messages{db: s.db} }

func (s *sqliteStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
func (s *sqliteStore) Close() error                   { return s.db.Close() }

// --- Users ---

type users struct{ db *sql.DB }

func (u *users) Get(ctx context.Context, idOrName string) (*model.UserRef, error) {
	// id match takes priority over display-name match
	row := u.db.QueryRowContext(ctx, `SELECT user_id, display_name FROM users WHERE user_id = ?`, idOrName)
	ref, err := scanUserRef(row)
	if err == nil {
		return ref, nil
	}
	if !errors.Is(err, model.ErrUnknownUser) {
		return nil, err
	}
	row = u.db.QueryRowContext(ctx, `SELECT user_id, display_name FROM users WHERE display_name = ?`, idOrName)
	return scanUserRef(row)
}

func (u *users) List(ctx context.Context) ([]*model.UserRef, error) {
	rows, err := u.db.QueryContext(ctx, `SELECT user_id, display_name FROM users ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.UserRef
	for rows.Next() {
		var ref model.UserRef
		if err := rows.Scan(&ref.ID, &ref.DisplayName); err != nil {
			return nil, err
		}
		out = append(out, &ref)
	}
	return out, rows.Err()
}

func (u *users) Put(ctx context.Context, ref model.UserRef) error {
	_, err := u.db.ExecContext(ctx,
		`INSERT INTO users (user_id, display_name, created_at) VALUES (?, ?, ?)
		 ON CONFLICT (user_id) DO NOTHING`,
		ref.ID, ref.DisplayName, time.Now().UTC())
	return err
}

func scanUserRef(row *sql.Row) (*model.UserRef, error) {
	var ref model.UserRef
	if err := row.Scan(&ref.ID, &ref.DisplayName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUnknownUser
		}
		return nil, err
	}
	return &ref, nil
}

// --- Requests ---

type requests struct{ db *sql.DB }

func (r *requests) Submit(ctx context.Context, from, to string) (bool, error) {
	if from == to {
		return false, model.ErrInvalidRequest
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	var one int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM requests WHERE from_user = ? AND to_user = ? AND status = ? LIMIT 1`,
		from, to, model.StatusPending).Scan(&one)
	switch {
	case err == nil:
		// already pending, idempotent no-op
		return false, tx.Commit()
	case !errors.Is(err, sql.ErrNoRows):
		return false, err
	}

	now := time.Now().UTC()
	// one row per participant view, same logical exchange
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO requests (owner, from_user, to_user, direction, status, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		from, from, to, model.DirectionOutgoing, model.StatusPending, now); err != nil {
		return false, err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO requests (owner, from_user, to_user, direction, status, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		to, from, to, model.DirectionIncoming, model.StatusPending, now); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

func (r *requests) ListFor(ctx context.Context, participant string) ([]*model.ConnectionRequest, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT owner, from_user, to_user, direction, status, created_at FROM requests WHERE owner = ? ORDER BY id`,
		participant)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.ConnectionRequest
	for rows.Next() {
		var req model.ConnectionRequest
		if err := rows.Scan(&req.Owner, &req.FromUserID, &req.ToUserID, &req.Direction, &req.Status, &req.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &req)
	}
	return out, rows.Err()
}

func (r *requests) Accept(ctx context.Context, from, to string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE requests SET status = ? WHERE from_user = ? AND to_user = ? AND status = ?`,
		model.StatusAccepted, from, to, model.StatusPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *requests) Clear(ctx context.Context, participant string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM requests WHERE owner = ?`, participant)
	return err
}

// --- Connections ---

type connections struct{ db *sql.DB }

func (c *connections) Materialize(ctx context.Context, a, b model.UserRef) (bool, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	var one int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM connections WHERE (a_user = ? AND b_user = ?) OR (a_user = ? AND b_user = ?) LIMIT 1`,
		a.ID, b.ID, b.ID, a.ID).Scan(&one)
	switch {
	case err == nil:
		return false, tx.Commit()
	case !errors.Is(err, sql.ErrNoRows):
		return false, err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO connections (a_user, a_name, b_user, b_name, created_at) VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.DisplayName, b.ID, b.DisplayName, time.Now().UTC()); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

func (c *connections) List(ctx context.Context) ([]*model.Connection, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT a_user, a_name, b_user, b_name, created_at FROM connections ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Connection
	for rows.Next() {
		var conn model.Connection
		if err := rows.Scan(&conn.UserA.ID, &conn.UserA.DisplayName, &conn.UserB.ID, &conn.UserB.DisplayName, &conn.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &conn)
	}
	return out, rows.Err()
}

func (c *connections) Remove(ctx context.Context, x, y string) (bool, error) {
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM connections WHERE (a_user = ? AND b_user = ?) OR (a_user = ? AND b_user = ?)`,
		x, y, y, x)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// --- Messages ---

type messages struct{ db *sql.DB }

func (m *messages) Append(ctx context.Context, from model.UserRef, to, body string) (*model.ChatMessage, error) {
	now := time.Now().UTC()
	res, err := m.db.ExecContext(ctx,
		`INSERT INTO messages (from_user, from_name, to_user, body, sent_at) VALUES (?, ?, ?, ?, ?)`,
		from.ID, from.DisplayName, to, body, now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.ChatMessage{
		ID:       id,
		FromUser: from,
		ToUserID: to,
		Body:     body,
		SentAt:   now,
	}, nil
}

func (m *messages) History(ctx context.Context, a, b string) ([]*model.ChatMessage, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT id, from_user, from_name, to_user, body, sent_at FROM messages
		 WHERE (from_user = ? AND to_user = ?) OR (from_user = ? AND to_user = ?)
		 ORDER BY sent_at, id`,
		a, b, b, a)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

func (m *messages) Conversations(ctx context.Context, userID string) ([]*model.Conversation, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT id, from_user, from_name, to_user, body, sent_at FROM messages
		 WHERE from_user = ? OR to_user = ?
		 ORDER BY sent_at DESC, id DESC`,
		userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}
	return store.SummarizeConversations(ctx, userID, msgs, &users{db: m.db})
}

func scanMessages(rows *sql.Rows) ([]*model.ChatMessage, error) {
	var out []*model.ChatMessage
	for rows.Next() {
		var msg model.ChatMessage
		if err := rows.Scan(&msg.ID, &msg.FromUser.ID, &msg.FromUser.DisplayName, &msg.ToUserID, &msg.Body, &msg.SentAt); err != nil {
			return nil, err
		}
		out = append(out, &msg)
	}
	return out, rows.Err()
}
