package ai

import (
	"context"
	"fmt"

	"github.com/flitsinc/go-llms/anthropic"
	"github.com/flitsinc/go-llms/content"
	"github.com/flitsinc/go-llms/google"
	"github.com/flitsinc/go-llms/llms"
	"github.com/flitsinc/go-llms/openai"
)

type Config struct {
	Provider string
	Model    string
	APIKey   string
}

// Client runs completions against a configured provider. Each Complete call
// uses a fresh LLM session so roster members never share conversation state.
type Client struct {
	config Config
}

func NewClient(cfg Config) (*Client, error) {
	// Validate eagerly so misconfiguration surfaces at startup.
	if _, err := newLLM(cfg); err != nil {
		return nil, err
	}
	return &Client{config: cfg}, nil
}

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	llm, err := newLLM(c.config)
	if err != nil {
		return "", err
	}

	var output string
	updates := llm.ChatUsingMessages(ctx, []llms.Message{
		{Role: "user", Content: content.FromText(prompt)},
	})
	for update := range updates {
		if textUpdate, ok := update.(llms.TextUpdate); ok {
			output += textUpdate.Text
		}
	}
	if err := llm.Err(); err != nil {
		return "", fmt.Errorf("completion: %w", err)
	}
	return output, nil
}

func newLLM(cfg Config) (*llms.LLM, error) {
	if cfg.Provider == "" {
		return nil, fmt.Errorf("llm provider is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("llm model is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm api key is required")
	}

	var provider llms.Provider
	switch cfg.Provider {
	case "openai-responses":
		provider = openai.NewResponsesAPI(cfg.APIKey, cfg.Model)
	case "openai-chat":
		provider = openai.NewChatCompletionsAPI(cfg.APIKey, cfg.Model)
	case "anthropic":
		model := anthropic.New(cfg.APIKey, cfg.Model)
		model.WithMaxTokens(8192)
		provider = model
	case "google":
		provider = google.New(cfg.Model).WithGeminiAPI(cfg.APIKey)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
	return llms.New(provider), nil
}
