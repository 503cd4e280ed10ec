package roster

import (
	"encoding/json"
	"errors"
)

var (
	// ErrValidation marks structured model output that failed to decode
	// into its schema.
	ErrValidation = errors.New("agent output validation failed")

	// ErrUpstream marks a failed external call (search or model) that the
	// agent could not degrade around.
	ErrUpstream = errors.New("upstream call failed")
)

// Snapshot is a read-only view of the session state bag taken before an
// agent runs. Agents read from the snapshot and emit a patch; they never
// write state directly.
type Snapshot map[string]json.RawMessage

// Profile decodes the company profile key. ok is false when the key is
// absent or undecodable.
func (s Snapshot) Profile() (CompanyProfile, bool) {
	var p CompanyProfile
	raw, found := s[KeyCompanyProfile]
	if !found {
		return CompanyProfile{}, false
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return CompanyProfile{}, false
	}
	return p, true
}

// Topic decodes the topic key.
func (s Snapshot) Topic() (Topic, bool) {
	var t Topic
	raw, found := s[KeyTopic]
	if !found {
		return Topic{}, false
	}
	if err := json.Unmarshal(raw, &t); err != nil {
		return Topic{}, false
	}
	return t, true
}

// Articles decodes an article list key, returning nil when absent.
func (s Snapshot) Articles(key string) []Article {
	raw, found := s[key]
	if !found {
		return nil
	}
	var out []Article
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

// Text decodes a string-valued key, returning "" when absent.
func (s Snapshot) Text(key string) string {
	raw, found := s[key]
	if !found {
		return ""
	}
	var out string
	if err := json.Unmarshal(raw, &out); err != nil {
		return ""
	}
	return out
}

// Apply returns a copy of the snapshot with the patch folded in. Values
// that do not marshal are skipped; the caller is layering already-validated
// agent output.
func (s Snapshot) Apply(patch Patch) Snapshot {
	next := make(Snapshot, len(s)+len(patch))
	for k, v := range s {
		next[k] = v
	}
	for _, kv := range patch {
		raw, err := json.Marshal(kv.Value)
		if err != nil {
			continue
		}
		next[kv.Key] = raw
	}
	return next
}

// KV is one whole-key write. The key is the unit of atomicity.
type KV struct {
	Key   string
	Value any
}

// Patch is the ordered list of state writes an agent produced. The gateway
// applies it through the session store only after the agent returns, so a
// failed agent leaves every key at its previous value.
type Patch []KV

// Event is one entry in an invocation's event sequence: human-readable
// text, a tool-invocation record, or both.
type Event struct {
	Text string    `json:"text,omitempty"`
	Tool *ToolCall `json:"tool,omitempty"`
}

// ToolCall records one external call an agent performed.
type ToolCall struct {
	Name    string `json:"name"`
	Message string `json:"message,omitempty"`
}

// ArtifactBlob is a binary artifact an agent produced (e.g. a generated
// image). The gateway persists it and the patch references it by filename
// only.
type ArtifactBlob struct {
	Filename string
	MimeType string
	Data     []byte
}

// StepResult is what one roster member produces from one run.
type StepResult struct {
	Patch     Patch
	Events    []Event
	Artifacts []ArtifactBlob
}

func textEvent(text string) Event {
	return Event{Text: text}
}

func toolEvent(name, message string) Event {
	return Event{Tool: &ToolCall{Name: name, Message: message}}
}
