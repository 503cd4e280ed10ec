package eventbus

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Bus is a durable, session-scoped event log with in-process fan-out.
// Every agent invocation appends its text, tool-call and error events here
// so a front end can follow an invocation while it runs.
type Bus struct {
	db *sql.DB

	mu   sync.RWMutex
	subs map[string]*subscriber
}

type subscriber struct {
	sessionID string
	ch        chan Event
}

func NewBus(db *sql.DB) *Bus {
	return &Bus{db: db, subs: map[string]*subscriber{}}
}

// Push appends an event and broadcasts it to live subscribers of the
// session.
func (b *Bus) Push(ctx context.Context, input EventInput) (Event, error) {
	if strings.TrimSpace(input.SessionID) == "" {
		return Event{}, fmt.Errorf("session id is required")
	}
	if strings.TrimSpace(input.Stream) == "" {
		return Event{}, fmt.Errorf("stream is required")
	}
	if strings.TrimSpace(input.Body) == "" {
		return Event{}, fmt.Errorf("body is required")
	}

	id := ulid.Make().String()
	createdAt := time.Now().UTC()
	metadataJSON, err := encodeJSON(input.Metadata)
	if err != nil {
		return Event{}, fmt.Errorf("encode metadata: %w", err)
	}

	_, err = b.db.ExecContext(ctx, `
		INSERT INTO events (id, session_id, stream, body, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, input.SessionID, input.Stream, input.Body, metadataJSON, createdAt.Format(time.RFC3339Nano))
	if err != nil {
		return Event{}, fmt.Errorf("insert event: %w", err)
	}

	event := Event{
		ID:        id,
		SessionID: input.SessionID,
		Stream:    input.Stream,
		Body:      input.Body,
		Metadata:  input.Metadata,
		CreatedAt: createdAt,
	}
	b.broadcast(event)
	return event, nil
}

// List returns events for a session, oldest first unless lifo is requested.
func (b *Bus) List(ctx context.Context, sessionID string, opts ListOptions) ([]Event, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("session id is required")
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	orderBy := "created_at ASC, id ASC"
	if strings.ToLower(opts.Order) == "lifo" {
		orderBy = "created_at DESC, id DESC"
	}

	where := "WHERE session_id = ?"
	args := []any{sessionID}
	if opts.Stream != "" {
		where += " AND stream = ?"
		args = append(args, opts.Stream)
	}
	args = append(args, limit)

	query := fmt.Sprintf(`SELECT id, session_id, stream, body, metadata, created_at FROM events %s ORDER BY %s LIMIT ?`, where, orderBy)
	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		var metadataStr sql.NullString
		var createdAtStr string
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Stream, &e.Body, &metadataStr, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Metadata = decodeJSONMap(metadataStr.String)
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAtStr)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}

// Subscribe returns a channel of live events for one session. The channel
// closes when ctx is cancelled.
func (b *Bus) Subscribe(ctx context.Context, sessionID string) <-chan Event {
	ch := make(chan Event, 64)
	if ctx.Err() != nil {
		close(ch)
		return ch
	}
	id := ulid.Make().String()

	sub := &subscriber{sessionID: sessionID, ch: ch}
	b.mu.Lock()
	b.subs[id] = sub
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
		close(ch)
	}()

	return ch
}

func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *Bus) broadcast(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if sub.sessionID != "" && sub.sessionID != event.SessionID {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			// Drop if subscriber is slow.
		}
	}
}

func encodeJSON(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeJSONMap(v string) map[string]any {
	if v == "" {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(v), &out); err != nil {
		return nil
	}
	return out
}
