package db

import (
	"context"
	"database/sql"
	"time"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Session struct {
	ID           string
	TokenHash    string
	BackendToken string
	UserID       string
	Username     string
	Role         string
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

const createSession = `
INSERT INTO sessions (id, token_hash, backend_token, user_id, username, role, created_at, expires_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) CreateSession(ctx context.Context, s Session) error {
	_, err := q.db.ExecContext(ctx, createSession,
		s.ID,
		s.TokenHash,
		s.BackendToken,
		s.UserID,
		s.Username,
		s.Role,
		s.CreatedAt.Unix(),
		s.ExpiresAt.Unix(),
	)
	return err
}

const getSessionByTokenHash = `
SELECT id, token_hash, backend_token, user_id, username, role, created_at, expires_at
FROM sessions
WHERE token_hash = ?
`

func (q *Queries) GetSessionByTokenHash(ctx context.Context, tokenHash string) (Session, error) {
	var (
		s         Session
		createdAt int64
		expiresAt int64
	)
	err := q.db.QueryRowContext(ctx, getSessionByTokenHash, tokenHash).Scan(
		&s.ID,
		&s.TokenHash,
		&s.BackendToken,
		&s.UserID,
		&s.Username,
		&s.Role,
		&createdAt,
		&expiresAt,
	)
	if err != nil {
		return Session{}, err
	}
	s.CreatedAt = time.Unix(createdAt, 0)
	s.ExpiresAt = time.Unix(expiresAt, 0)
	return s, nil
}

const deleteSession = `DELETE FROM sessions WHERE id = ?`

func (q *Queries) DeleteSession(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, deleteSession, id)
	return err
}

const deleteSessionsForUser = `DELETE FROM sessions WHERE user_id = ?`

func (q *Queries) DeleteSessionsForUser(ctx context.Context, userID string) error {
	_, err := q.db.ExecContext(ctx, deleteSessionsForUser, userID)
	return err
}

const deleteExpiredSessions = `DELETE FROM sessions WHERE expires_at <= ?`

// DeleteExpiredSessions removes sessions expired at now and reports how many.
func (q *Queries) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteExpiredSessions, now.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const countSessions = `SELECT COUNT(*) FROM sessions`

func (q *Queries) CountSessions(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countSessions).Scan(&n)
	return n, err
}
