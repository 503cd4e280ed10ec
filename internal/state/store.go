package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/contentkit/studio/internal/idgen"
)

var (
	// ErrSessionNotFound is returned when a (app, user, session) triple does
	// not resolve to a known session.
	ErrSessionNotFound = errors.New("session not found")

	// ErrStoreUnavailable wraps failures of the backing store during session
	// allocation.
	ErrStoreUnavailable = errors.New("session store unavailable")
)

// Store is the source of truth for session state. Each session owns one
// state bag: a flat key/value mapping where a whole top-level key is the
// unit of atomicity. Writes are last-write-wins per key; there is no
// multi-key transaction.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

type Session struct {
	ID        string    `json:"id"`
	AppName   string    `json:"app_name"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Create allocates a fresh session with an empty state bag.
func (s *Store) Create(ctx context.Context, app, user string) (Session, error) {
	if app == "" || user == "" {
		return Session{}, fmt.Errorf("app and user are required")
	}
	id := idgen.New()
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `INSERT INTO sessions (id, app_name, user_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, app, user, now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano))
	if err != nil {
		return Session{}, fmt.Errorf("%w: insert session: %v", ErrStoreUnavailable, err)
	}
	return Session{ID: id, AppName: app, UserID: user, CreatedAt: now, UpdatedAt: now}, nil
}

// Get returns the session record for the addressing triple.
func (s *Store) Get(ctx context.Context, app, user, sessionID string) (Session, error) {
	var sess Session
	var createdAtStr, updatedAtStr string
	err := s.db.QueryRowContext(ctx, `SELECT id, app_name, user_id, created_at, updated_at FROM sessions WHERE id = ? AND app_name = ? AND user_id = ?`,
		sessionID, app, user).Scan(&sess.ID, &sess.AppName, &sess.UserID, &createdAtStr, &updatedAtStr)
	if err == sql.ErrNoRows {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return Session{}, fmt.Errorf("get session: %w", err)
	}
	sess.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAtStr)
	sess.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAtStr)
	return sess, nil
}

// GetState returns the full state bag. Values are raw JSON so callers can
// decode the keys they know about and pass unknown keys through untouched.
func (s *Store) GetState(ctx context.Context, app, user, sessionID string) (map[string]json.RawMessage, error) {
	if _, err := s.Get(ctx, app, user, sessionID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM session_state WHERE session_id = ?`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	defer rows.Close()

	bag := map[string]json.RawMessage{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan state key: %w", err)
		}
		bag[key] = json.RawMessage(value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate state: %w", err)
	}
	return bag, nil
}

// SetKey upserts one top-level key. The value is marshalled wholesale; there
// are no field-level patch semantics. The last writer wins.
func (s *Store) SetKey(ctx context.Context, app, user, sessionID, key string, value any) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}
	if _, err := s.Get(ctx, app, user, sessionID); err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode value for %q: %w", key, err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO session_state (session_id, key, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, sessionID, key, string(data), now)
	if err != nil {
		return fmt.Errorf("set key %q: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx, `UPDATE sessions SET updated_at = ? WHERE id = ?`, now, sessionID)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

// GetKey reads a single key into dest. Returns false when the key is absent.
func (s *Store) GetKey(ctx context.Context, app, user, sessionID, key string, dest any) (bool, error) {
	if _, err := s.Get(ctx, app, user, sessionID); err != nil {
		return false, err
	}
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM session_state WHERE session_id = ? AND key = ?`, sessionID, key).Scan(&value)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get key %q: %w", key, err)
	}
	if dest == nil {
		return true, nil
	}
	if err := json.Unmarshal([]byte(value), dest); err != nil {
		return false, fmt.Errorf("decode key %q: %w", key, err)
	}
	return true, nil
}
