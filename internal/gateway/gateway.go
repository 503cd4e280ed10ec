package gateway

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/contentkit/studio/internal/artifact"
	"github.com/contentkit/studio/internal/eventbus"
	"github.com/contentkit/studio/internal/roster"
	"github.com/contentkit/studio/internal/state"
)

// NoResponse is the sentinel result text when an invocation produced no
// text events at all.
const NoResponse = "No response received from agent"

// Gateway dispatches directives to the agent roster and owns every write
// the roster makes: state patches go through the session store one key at
// a time, artifacts through the artifact store, and the event sequence
// onto the bus. A roster member failure never escapes Invoke as an error;
// it degrades to an "Error: ..." result so the calling workflow can treat
// the step as unresolved and retry.
type Gateway struct {
	App  string
	User string

	Store     *state.Store
	Artifacts *artifact.Store
	Bus       *eventbus.Bus
	Roster    *roster.Set
}

// Result is the drained outcome of one invocation. Text is the last
// non-empty text event, or NoResponse.
type Result struct {
	Text   string         `json:"text"`
	Events []roster.Event `json:"events"`
	Failed bool           `json:"failed"`
}

// Invoke parses and runs one directive against a session. The returned
// error is non-nil only for addressing failures (unknown session); agent
// and directive failures are degraded into the Result.
func (g *Gateway) Invoke(ctx context.Context, sessionID, directive string) (Result, error) {
	bag, err := g.Store.GetState(ctx, g.App, g.User, sessionID)
	if err != nil {
		return Result{}, err
	}
	snap := roster.Snapshot(bag)

	cmd, err := ParseDirective(directive)
	if err != nil {
		return g.degrade(ctx, sessionID, nil, err), nil
	}

	stepResult, err := g.dispatch(ctx, snap, cmd)
	if err != nil {
		return g.degrade(ctx, sessionID, stepResult.Events, err), nil
	}

	// Artifacts first, so filename keys in the patch reference stored
	// blobs by the time they land in the bag.
	for _, blob := range stepResult.Artifacts {
		if _, err := g.Artifacts.Save(ctx, g.App, g.User, sessionID, blob.Filename, blob.MimeType, blob.Data); err != nil {
			return g.degrade(ctx, sessionID, stepResult.Events, fmt.Errorf("save artifact %s: %w", blob.Filename, err)), nil
		}
	}
	for _, kv := range stepResult.Patch {
		if err := g.Store.SetKey(ctx, g.App, g.User, sessionID, kv.Key, kv.Value); err != nil {
			return g.degrade(ctx, sessionID, stepResult.Events, fmt.Errorf("apply patch key %s: %w", kv.Key, err)), nil
		}
	}

	g.publish(ctx, sessionID, stepResult.Events)
	return Result{Text: lastText(stepResult.Events), Events: stepResult.Events}, nil
}

func (g *Gateway) dispatch(ctx context.Context, snap roster.Snapshot, cmd Command) (roster.StepResult, error) {
	r := g.Roster
	switch cmd.Kind {
	case KindUpdateProfile:
		return r.Profile.Run(ctx, snap, cmd.Text)
	case KindGenerateTopic:
		return r.TopicGen.Run(ctx, snap)
	case KindCustomTopic:
		return r.CustomTopic.Run(ctx, cmd.Text)
	case KindFetchArticles:
		return g.fetchAndEvaluate(ctx, snap)
	case KindCompetitorAnalysis:
		return r.Competitor.Run(ctx, snap)
	case KindViralAnalysis:
		return r.Viral.Run(ctx, snap)
	case KindAnalyze:
		return g.analyze(ctx, snap)
	case KindDraft:
		return r.Drafters[cmd.Platform].Run(ctx, snap)
	case KindPost:
		return r.Posters[cmd.Platform].Run(ctx, snap, cmd.Text)
	default:
		return roster.StepResult{}, fmt.Errorf("unhandled command kind %q", cmd.Kind)
	}
}

// fetchAndEvaluate chains the article fetcher into the evaluator, feeding
// the evaluator the fetched list before it has been persisted.
func (g *Gateway) fetchAndEvaluate(ctx context.Context, snap roster.Snapshot) (roster.StepResult, error) {
	fetched, err := g.Roster.Fetcher.Run(ctx, snap)
	if err != nil {
		return fetched, err
	}

	next := snap.Apply(fetched.Patch)
	evaluated, err := g.Roster.Evaluator.Run(ctx, next)
	if err != nil {
		return fetched, err
	}

	return roster.StepResult{
		Patch:  append(fetched.Patch, evaluated.Patch...),
		Events: append(fetched.Events, evaluated.Events...),
	}, nil
}

// analyze fans out the competitor and viral analyzers as two parallel
// branches. Their write sets are disjoint, so no locking is needed between
// them; both patches are merged only after both branches resolve, and one
// branch failing does not block or discard the other.
func (g *Gateway) analyze(ctx context.Context, snap roster.Snapshot) (roster.StepResult, error) {
	var wg sync.WaitGroup
	var competitor, viral roster.StepResult
	var competitorErr, viralErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		competitor, competitorErr = g.Roster.Competitor.Run(ctx, snap)
	}()
	go func() {
		defer wg.Done()
		viral, viralErr = g.Roster.Viral.Run(ctx, snap)
	}()
	wg.Wait()

	merged := roster.StepResult{
		Patch:  append(competitor.Patch, viral.Patch...),
		Events: append(competitor.Events, viral.Events...),
	}
	if competitorErr != nil && viralErr != nil {
		return merged, fmt.Errorf("both analysis branches failed: %v; %v", competitorErr, viralErr)
	}
	if competitorErr != nil {
		merged.Events = append(merged.Events, roster.Event{Text: fmt.Sprintf("Error: competitor analysis failed: %v", competitorErr)})
	}
	if viralErr != nil {
		merged.Events = append(merged.Events, roster.Event{Text: fmt.Sprintf("Error: viral analysis failed: %v", viralErr)})
	}
	return merged, nil
}

func (g *Gateway) degrade(ctx context.Context, sessionID string, events []roster.Event, cause error) Result {
	log.Printf("invocation failed for session %s: %v", sessionID, cause)
	text := fmt.Sprintf("Error: %v", cause)
	events = append(events, roster.Event{Text: text})
	g.publish(ctx, sessionID, events)
	if _, err := g.Bus.Push(ctx, eventbus.EventInput{
		SessionID: sessionID,
		Stream:    eventbus.StreamErrors,
		Body:      cause.Error(),
	}); err != nil {
		log.Printf("publish error event: %v", err)
	}
	return Result{Text: text, Events: events, Failed: true}
}

func (g *Gateway) publish(ctx context.Context, sessionID string, events []roster.Event) {
	for _, evt := range events {
		if evt.Tool != nil {
			if _, err := g.Bus.Push(ctx, eventbus.EventInput{
				SessionID: sessionID,
				Stream:    eventbus.StreamToolCalls,
				Body:      evt.Tool.Name,
				Metadata:  map[string]any{"message": evt.Tool.Message},
			}); err != nil {
				log.Printf("publish tool event: %v", err)
			}
		}
		if evt.Text != "" {
			if _, err := g.Bus.Push(ctx, eventbus.EventInput{
				SessionID: sessionID,
				Stream:    eventbus.StreamAgentText,
				Body:      evt.Text,
			}); err != nil {
				log.Printf("publish text event: %v", err)
			}
		}
	}
}

func lastText(events []roster.Event) string {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Text != "" {
			return events[i].Text
		}
	}
	return NoResponse
}
