package ai_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/contentkit/studio/internal/ai"
)

type staticCompleter struct {
	text string
	err  error
}

func (s *staticCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	return s.text, s.err
}

func TestCompleteJSON(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"bare", `{"topic": "robots"}`},
		{"fenced", "```json\n{\"topic\": \"robots\"}\n```"},
		{"fenced no lang", "```\n{\"topic\": \"robots\"}\n```"},
		{"padded", "  {\"topic\": \"robots\"}  "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var out struct {
				Topic string `json:"topic"`
			}
			if err := ai.CompleteJSON(context.Background(), &staticCompleter{text: tc.text}, "p", &out); err != nil {
				t.Fatalf("complete: %v", err)
			}
			if out.Topic != "robots" {
				t.Fatalf("unexpected decode %+v", out)
			}
		})
	}
}

func TestCompleteJSONErrors(t *testing.T) {
	var out map[string]any
	if err := ai.CompleteJSON(context.Background(), &staticCompleter{text: "not json"}, "p", &out); err == nil {
		t.Fatalf("expected decode error")
	}
	if err := ai.CompleteJSON(context.Background(), &staticCompleter{err: fmt.Errorf("down")}, "p", &out); err == nil {
		t.Fatalf("expected completion error")
	}
}
