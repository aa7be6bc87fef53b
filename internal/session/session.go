// Package session owns the lifetime of a signed-in user's backend token:
// created at login, looked up once per request by the guard middleware,
// and destroyed at logout.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/codr1/axl-portal/internal/db"
)

const (
	CookieName      = "axl_session"
	DefaultTTL      = 12 * time.Hour
	cookieTokenSize = 32
)

var ErrInvalidSession = errors.New("invalid session")

type Session struct {
	ID        string
	Token     string
	UserID    string
	Username  string
	Role      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Authenticated reports whether s carries a backend token.
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != ""
}

// Params describes a successful backend login.
type Params struct {
	Token    string
	UserID   string
	Username string
	Role     string
}

type Manager struct {
	db     *db.DB
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

type Option func(*Manager)

func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithSecureCookies marks cookies Secure. Development runs over plain HTTP.
func WithSecureCookies(secure bool) Option {
	return func(m *Manager) {
		m.secure = secure
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

func NewManager(database *db.DB, opts ...Option) *Manager {
	m := &Manager{
		db:     database,
		ttl:    DefaultTTL,
		secure: true,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create stores a new session, replacing any earlier ones for the same
// user, and sets the session cookie.
func (m *Manager) Create(ctx context.Context, w http.ResponseWriter, p Params) (*Session, error) {
	if p.Token == "" {
		return nil, fmt.Errorf("%w: empty backend token", ErrInvalidSession)
	}

	cookieValue, err := newCookieValue()
	if err != nil {
		return nil, fmt.Errorf("generate session cookie: %w", err)
	}

	now := m.now()
	sess := &Session{
		ID:        uuid.NewString(),
		Token:     p.Token,
		UserID:    p.UserID,
		Username:  p.Username,
		Role:      p.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	err = m.db.RunInTx(ctx, func(q *db.Queries) error {
		if p.UserID != "" {
			if err := q.DeleteSessionsForUser(ctx, p.UserID); err != nil {
				return err
			}
		}
		return q.CreateSession(ctx, db.Session{
			ID:           sess.ID,
			TokenHash:    hashCookieValue(cookieValue),
			BackendToken: sess.Token,
			UserID:       sess.UserID,
			Username:     sess.Username,
			Role:         sess.Role,
			CreatedAt:    sess.CreatedAt,
			ExpiresAt:    sess.ExpiresAt,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    cookieValue,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  sess.ExpiresAt,
		MaxAge:   int(m.ttl.Seconds()),
	})

	return sess, nil
}

// Load returns the session named by the request cookie, or nil when there is
// none or it has expired. Expired rows are removed on sight.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return nil, nil
		}
		return nil, err
	}
	if cookie.Value == "" {
		return nil, nil
	}

	ctx := r.Context()
	row, err := m.db.Queries.GetSessionByTokenHash(ctx, hashCookieValue(cookie.Value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	if !row.ExpiresAt.After(m.now()) {
		if err := m.db.Queries.DeleteSession(ctx, row.ID); err != nil {
			return nil, fmt.Errorf("delete expired session: %w", err)
		}
		return nil, nil
	}

	return &Session{
		ID:        row.ID,
		Token:     row.BackendToken,
		UserID:    row.UserID,
		Username:  row.Username,
		Role:      row.Role,
		CreatedAt: row.CreatedAt,
		ExpiresAt: row.ExpiresAt,
	}, nil
}

// Destroy deletes the session row, if any, and clears the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	m.ClearCookie(w)
	if sess == nil || sess.ID == "" {
		return nil
	}
	if err := m.db.Queries.DeleteSession(ctx, sess.ID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (m *Manager) ClearCookie(w http.ResponseWriter) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}

// PruneExpired deletes every expired session.
func (m *Manager) PruneExpired(ctx context.Context) (int64, error) {
	return m.db.Queries.DeleteExpiredSessions(ctx, m.now())
}

func newCookieValue() (string, error) {
	buf := make([]byte, cookieTokenSize)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashCookieValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
