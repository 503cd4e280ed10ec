package roster

import (
	"context"
	"fmt"
)

// Publisher delivers a finished post to its platform. A nil publisher makes
// posting a dry run, which keeps the workflow usable without platform
// credentials.
type Publisher interface {
	Publish(ctx context.Context, platform Platform, text string) error
}

// Poster publishes a platform's drafted content. It writes no state keys.
type Poster struct {
	Platform  Platform
	Publisher Publisher
}

func (a *Poster) Run(ctx context.Context, snap Snapshot, text string) (StepResult, error) {
	if text == "" {
		text = snap.Text(a.Platform.ContentKey())
	}
	if text == "" {
		return StepResult{}, fmt.Errorf("%w: no %s content to post", ErrValidation, a.Platform)
	}

	if a.Publisher == nil {
		return StepResult{
			Events: []Event{textEvent(fmt.Sprintf("Dry run: %s post not published (no publisher configured).", a.Platform))},
		}, nil
	}

	if err := a.Publisher.Publish(ctx, a.Platform, text); err != nil {
		return StepResult{}, fmt.Errorf("%w: publish to %s: %v", ErrUpstream, a.Platform, err)
	}
	return StepResult{
		Events: []Event{
			toolEvent("publish", string(a.Platform)),
			textEvent(fmt.Sprintf("Posted to %s.", a.Platform)),
		},
	}, nil
}
