package eventbus

import "time"

// Streams an invocation writes to.
const (
	StreamAgentText = "agent_text"
	StreamToolCalls = "tool_calls"
	StreamErrors    = "errors"
)

type Event struct {
	ID        string         `json:"id"`
	SessionID string         `json:"session_id"`
	Stream    string         `json:"stream"`
	Body      string         `json:"body"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

type EventInput struct {
	SessionID string
	Stream    string
	Body      string
	Metadata  map[string]any
}

type ListOptions struct {
	Stream string // empty means all streams
	Limit  int
	Order  string // "fifo" or "lifo"; defaults to fifo
}
