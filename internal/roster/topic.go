package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/contentkit/studio/internal/ai"
	"github.com/contentkit/studio/internal/search"
)

// TopicGenerator proposes a content topic from the company profile plus one
// recent news result. A failed news search degrades to generating from the
// profile alone; the degradation is surfaced as an event.
type TopicGenerator struct {
	LLM    ai.Completer
	Search search.Provider
}

func (a *TopicGenerator) Run(ctx context.Context, snap Snapshot) (StepResult, error) {
	profile, ok := snap.Profile()
	if !ok {
		return StepResult{}, fmt.Errorf("%w: no company profile to generate a topic from", ErrValidation)
	}

	var events []Event
	news := ""
	resp, err := a.Search.Search(ctx, search.Query{
		Query:      fmt.Sprintf("News about %s %s", profile.CompanyName, profile.PrimaryIndustry),
		MaxResults: 1,
	})
	if err != nil {
		log.Printf("topic generator: news search failed: %v", err)
		events = append(events, toolEvent("news_search", "search failed, generating from profile only"))
	} else if len(resp.Results) > 0 {
		news = resp.Results[0].Content
		events = append(events, toolEvent("news_search", "found "+resp.Results[0].Title))
	}

	profileJSON, err := marshalSnapshotValue(profile)
	if err != nil {
		return StepResult{}, err
	}

	var topic Topic
	prompt := fmt.Sprintf(generateTopicPrompt, profileJSON, news)
	if err := ai.CompleteJSON(ctx, a.LLM, prompt, &topic); err != nil {
		return StepResult{}, fmt.Errorf("%w: generate topic: %v", ErrValidation, err)
	}
	if topic.Topic == "" {
		return StepResult{}, fmt.Errorf("%w: generated topic is empty", ErrValidation)
	}

	events = append(events, textEvent(fmt.Sprintf("Generated topic: %s", topic.Topic)))
	return StepResult{
		Patch:  Patch{{Key: KeyTopic, Value: topic}},
		Events: events,
	}, nil
}

// CustomTopic records a user-supplied topic, expanded by the model into the
// full topic record. If the expansion fails the literal topic string is
// kept, so the step still produces a usable topic.
type CustomTopic struct {
	LLM ai.Completer
}

func (a *CustomTopic) Run(ctx context.Context, raw string) (StepResult, error) {
	if raw == "" {
		return StepResult{}, fmt.Errorf("%w: custom topic is empty", ErrValidation)
	}

	topic := Topic{Topic: raw}
	var events []Event
	var expanded Topic
	if err := ai.CompleteJSON(ctx, a.LLM, fmt.Sprintf(customTopicPrompt, raw), &expanded); err != nil {
		log.Printf("custom topic: expansion failed, keeping literal topic: %v", err)
		events = append(events, toolEvent("custom_topic", "expansion failed, kept literal topic"))
	} else if expanded.Topic != "" {
		topic = expanded
	}

	events = append(events, textEvent(fmt.Sprintf("Custom topic set to: %s", topic.Topic)))
	return StepResult{
		Patch:  Patch{{Key: KeyTopic, Value: topic}},
		Events: events,
	}, nil
}

func marshalSnapshotValue(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode value: %w", err)
	}
	return string(data), nil
}
