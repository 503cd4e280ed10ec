package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Completer is the single contract the agent roster has on the language
// model layer: one prompt in, one text completion out. The roster never
// sees providers, streaming or tool plumbing.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleteJSON runs a completion and decodes the response into dest.
// Model output wrapped in a markdown code fence is unwrapped before
// decoding. A decode failure is the caller's ValidationError to degrade.
func CompleteJSON(ctx context.Context, c Completer, prompt string, dest any) error {
	text, err := c.Complete(ctx, prompt)
	if err != nil {
		return err
	}
	text = stripFence(text)
	if err := json.Unmarshal([]byte(text), dest); err != nil {
		return fmt.Errorf("decode structured output: %w", err)
	}
	return nil
}

func stripFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
