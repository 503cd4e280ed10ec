package artifact

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/contentkit/studio/internal/idgen"
)

// ErrNotFound is returned when no artifact exists for the requested
// filename (or filename/version pair).
var ErrNotFound = errors.New("artifact not found")

// Store holds versioned binary blobs addressed by (session, filename,
// version). Versions are append-only: a save never mutates an existing
// version, it allocates the next one.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

type Option func(*Store)

// WithClock overrides the clock used for created_at timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		s.now = clock
	}
}

func NewStore(db *sql.DB, opts ...Option) *Store {
	store := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

type Blob struct {
	Filename  string    `json:"filename"`
	Version   int       `json:"version"`
	MimeType  string    `json:"mime_type"`
	Data      []byte    `json:"data"`
	CreatedAt time.Time `json:"created_at"`
}

// Save writes a new version of filename and returns the allocated version
// number. The first version of a filename is 1.
func (s *Store) Save(ctx context.Context, app, user, sessionID, filename, mimeType string, data []byte) (int, error) {
	if filename == "" {
		return 0, fmt.Errorf("filename is required")
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin save tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var maxVersion sql.NullInt64
	err = tx.QueryRowContext(ctx, `SELECT MAX(version) FROM artifacts WHERE session_id = ? AND filename = ?`,
		sessionID, filename).Scan(&maxVersion)
	if err != nil {
		return 0, fmt.Errorf("read max version: %w", err)
	}
	version := 1
	if maxVersion.Valid {
		version = int(maxVersion.Int64) + 1
	}

	createdAt := s.now().UTC().Format(time.RFC3339Nano)
	_, err = tx.ExecContext(ctx, `INSERT INTO artifacts (id, app_name, user_id, session_id, filename, version, mime_type, data, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		idgen.New(), app, user, sessionID, filename, version, mimeType, data, createdAt)
	if err != nil {
		return 0, fmt.Errorf("insert artifact: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit save: %w", err)
	}
	return version, nil
}

// ListKeys returns the distinct filenames stored for a session, oldest
// first.
func (s *Store) ListKeys(ctx context.Context, app, user, sessionID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT filename FROM artifacts
		WHERE app_name = ? AND user_id = ? AND session_id = ?
		GROUP BY filename ORDER BY MIN(created_at)
	`, app, user, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list artifact keys: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan artifact key: %w", err)
		}
		out = append(out, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artifact keys: %w", err)
	}
	return out, nil
}

// Load returns one version of filename. A version of zero or less means
// the latest version.
func (s *Store) Load(ctx context.Context, app, user, sessionID, filename string, version int) (Blob, error) {
	query := `SELECT filename, version, mime_type, data, created_at FROM artifacts
		WHERE app_name = ? AND user_id = ? AND session_id = ? AND filename = ?`
	args := []any{app, user, sessionID, filename}
	if version > 0 {
		query += ` AND version = ?`
		args = append(args, version)
	} else {
		query += ` ORDER BY version DESC LIMIT 1`
	}

	var blob Blob
	var createdAtStr string
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&blob.Filename, &blob.Version, &blob.MimeType, &blob.Data, &createdAtStr)
	if err == sql.ErrNoRows {
		return Blob{}, fmt.Errorf("%w: %s", ErrNotFound, filename)
	}
	if err != nil {
		return Blob{}, fmt.Errorf("load artifact: %w", err)
	}
	blob.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAtStr)
	return blob, nil
}
