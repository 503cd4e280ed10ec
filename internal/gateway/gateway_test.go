package gateway_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/contentkit/studio/internal/artifact"
	"github.com/contentkit/studio/internal/eventbus"
	"github.com/contentkit/studio/internal/gateway"
	"github.com/contentkit/studio/internal/roster"
	"github.com/contentkit/studio/internal/search"
	"github.com/contentkit/studio/internal/state"
	"github.com/contentkit/studio/internal/testutil"
)

type fakeCompleter struct {
	fn func(prompt string) (string, error)
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	return f.fn(prompt)
}

type fakeProvider struct {
	fn func(q search.Query) (search.Response, error)
}

func (f *fakeProvider) Search(ctx context.Context, q search.Query) (search.Response, error) {
	return f.fn(q)
}

func newGateway(t *testing.T, llm *fakeCompleter, provider *fakeProvider) (*gateway.Gateway, string, func()) {
	t.Helper()
	db, closeFn := testutil.OpenTestDB(t)
	store := state.NewStore(db)
	session, err := store.Create(context.Background(), "studio", "user-1")
	if err != nil {
		closeFn()
		t.Fatalf("create session: %v", err)
	}
	gw := &gateway.Gateway{
		App:       "studio",
		User:      "user-1",
		Store:     store,
		Artifacts: artifact.NewStore(db),
		Bus:       eventbus.NewBus(db),
		Roster:    roster.NewSet(llm, provider, nil, nil),
	}
	return gw, session.ID, closeFn
}

func setKey(t *testing.T, gw *gateway.Gateway, sessionID, key string, value any) {
	t.Helper()
	if err := gw.Store.SetKey(context.Background(), gw.App, gw.User, sessionID, key, value); err != nil {
		t.Fatalf("set %s: %v", key, err)
	}
}

func TestInvokeUnknownSession(t *testing.T) {
	gw, _, closeFn := newGateway(t, &fakeCompleter{}, &fakeProvider{})
	defer closeFn()

	if _, err := gw.Invoke(context.Background(), "no-such", "generate_topic"); !errors.Is(err, state.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestInvokeProfileThenTopic(t *testing.T) {
	llm := &fakeCompleter{fn: func(prompt string) (string, error) {
		if strings.Contains(prompt, "New information") {
			return `{"company_name": "Acme", "primary_industry": "robotics"}`, nil
		}
		return `{"topic": "Warehouse robots", "context": "from the news", "keywords": "robots", "angle": "practical"}`, nil
	}}
	provider := &fakeProvider{fn: func(q search.Query) (search.Response, error) {
		return search.Response{Results: []search.Result{{Title: "Robot news", Content: "snippet"}}}, nil
	}}

	gw, sessionID, closeFn := newGateway(t, llm, provider)
	defer closeFn()
	ctx := context.Background()

	result, err := gw.Invoke(ctx, sessionID, "We are Acme, a robotics company")
	if err != nil {
		t.Fatalf("invoke profile update: %v", err)
	}
	if result.Failed {
		t.Fatalf("profile update failed: %s", result.Text)
	}

	result, err = gw.Invoke(ctx, sessionID, "generate_topic")
	if err != nil {
		t.Fatalf("invoke generate_topic: %v", err)
	}
	if result.Failed {
		t.Fatalf("topic generation failed: %s", result.Text)
	}

	var topic roster.Topic
	found, err := gw.Store.GetKey(ctx, gw.App, gw.User, sessionID, roster.KeyTopic, &topic)
	if err != nil || !found {
		t.Fatalf("topic not stored: found=%v err=%v", found, err)
	}
	if topic.Topic != "Warehouse robots" {
		t.Fatalf("unexpected topic %q", topic.Topic)
	}

	var profile roster.CompanyProfile
	if found, err := gw.Store.GetKey(ctx, gw.App, gw.User, sessionID, roster.KeyCompanyProfile, &profile); err != nil || !found {
		t.Fatalf("profile not stored: found=%v err=%v", found, err)
	}
	if profile.CompanyName != "Acme" {
		t.Fatalf("unexpected profile %+v", profile)
	}
}

func TestInvokeResultTextIsLastTextEvent(t *testing.T) {
	llm := &fakeCompleter{fn: func(prompt string) (string, error) {
		return `{"company_name": "Acme"}`, nil
	}}
	gw, sessionID, closeFn := newGateway(t, llm, &fakeProvider{})
	defer closeFn()

	result, err := gw.Invoke(context.Background(), sessionID, "We are Acme")
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	var lastText string
	for _, evt := range result.Events {
		if evt.Text != "" {
			lastText = evt.Text
		}
	}
	if lastText == "" || result.Text != lastText {
		t.Fatalf("expected result text %q to be last text event %q", result.Text, lastText)
	}
}

func TestInvokeDegradesAgentError(t *testing.T) {
	llm := &fakeCompleter{fn: func(prompt string) (string, error) {
		return "", fmt.Errorf("model unavailable")
	}}
	gw, sessionID, closeFn := newGateway(t, llm, &fakeProvider{})
	defer closeFn()
	ctx := context.Background()

	result, err := gw.Invoke(ctx, sessionID, "We are Acme")
	if err != nil {
		t.Fatalf("agent failure must not surface as invoke error: %v", err)
	}
	if !result.Failed {
		t.Fatalf("expected failed result")
	}
	if !strings.HasPrefix(result.Text, "Error: ") {
		t.Fatalf("expected error sentinel text, got %q", result.Text)
	}

	// Nothing was written.
	if found, err := gw.Store.GetKey(ctx, gw.App, gw.User, sessionID, roster.KeyCompanyProfile, nil); err != nil || found {
		t.Fatalf("failed agent must not write state: found=%v err=%v", found, err)
	}

	// The failure landed on the errors stream.
	events, err := gw.Bus.List(ctx, sessionID, eventbus.ListOptions{Stream: eventbus.StreamErrors})
	if err != nil {
		t.Fatalf("list errors: %v", err)
	}
	if len(events) == 0 {
		t.Fatalf("expected an error event")
	}
}

func TestInvokeAnalyzeFanOut(t *testing.T) {
	llm := &fakeCompleter{fn: func(prompt string) (string, error) {
		if strings.Contains(prompt, "competitor posts") {
			return "COMPETITOR ANALYSIS", nil
		}
		if strings.Contains(prompt, "viral posts") {
			return "VIRAL ANALYSIS", nil
		}
		return "", fmt.Errorf("unexpected prompt")
	}}
	provider := &fakeProvider{fn: func(q search.Query) (search.Response, error) {
		return search.Response{
			Answer:  "Initech, Globex",
			Results: []search.Result{{Title: "Post", Content: "body"}},
		}, nil
	}}

	gw, sessionID, closeFn := newGateway(t, llm, provider)
	defer closeFn()
	ctx := context.Background()

	setKey(t, gw, sessionID, roster.KeyCompanyProfile, roster.CompanyProfile{CompanyName: "Acme"})
	setKey(t, gw, sessionID, roster.KeyTopic, roster.Topic{Topic: "Robots"})

	result, err := gw.Invoke(ctx, sessionID, "analyze")
	if err != nil {
		t.Fatalf("invoke analyze: %v", err)
	}
	if result.Failed {
		t.Fatalf("analyze failed: %s", result.Text)
	}

	var competitor, viral string
	if found, err := gw.Store.GetKey(ctx, gw.App, gw.User, sessionID, roster.KeyCompetitorAnalysis, &competitor); err != nil || !found {
		t.Fatalf("competitor analysis not stored: found=%v err=%v", found, err)
	}
	if found, err := gw.Store.GetKey(ctx, gw.App, gw.User, sessionID, roster.KeyViralContentAnalysis, &viral); err != nil || !found {
		t.Fatalf("viral analysis not stored: found=%v err=%v", found, err)
	}
	if competitor != "COMPETITOR ANALYSIS" || viral != "VIRAL ANALYSIS" {
		t.Fatalf("branches stepped on each other: %q / %q", competitor, viral)
	}
}

func TestInvokeAnalyzeOneBranchFailing(t *testing.T) {
	llm := &fakeCompleter{fn: func(prompt string) (string, error) {
		if strings.Contains(prompt, "viral posts") {
			return "", fmt.Errorf("synthesis down")
		}
		return "COMPETITOR ANALYSIS", nil
	}}
	provider := &fakeProvider{fn: func(q search.Query) (search.Response, error) {
		return search.Response{
			Answer:  "Initech",
			Results: []search.Result{{Title: "Post", Content: "body"}},
		}, nil
	}}

	gw, sessionID, closeFn := newGateway(t, llm, provider)
	defer closeFn()
	ctx := context.Background()

	setKey(t, gw, sessionID, roster.KeyCompanyProfile, roster.CompanyProfile{CompanyName: "Acme"})
	setKey(t, gw, sessionID, roster.KeyTopic, roster.Topic{Topic: "Robots"})

	result, err := gw.Invoke(ctx, sessionID, "analyze")
	if err != nil {
		t.Fatalf("invoke analyze: %v", err)
	}
	if result.Failed {
		t.Fatalf("one failed branch must not fail the invocation: %s", result.Text)
	}

	// The surviving branch still landed.
	var competitor string
	if found, err := gw.Store.GetKey(ctx, gw.App, gw.User, sessionID, roster.KeyCompetitorAnalysis, &competitor); err != nil || !found {
		t.Fatalf("competitor analysis not stored: found=%v err=%v", found, err)
	}
	if competitor != "COMPETITOR ANALYSIS" {
		t.Fatalf("unexpected competitor analysis %q", competitor)
	}
	if found, _ := gw.Store.GetKey(ctx, gw.App, gw.User, sessionID, roster.KeyViralContentAnalysis, nil); found {
		t.Fatalf("failed branch must not write its key")
	}
}

func TestInvokeFetchAndEvaluateDegraded(t *testing.T) {
	evalCalls := 0
	llm := &fakeCompleter{fn: func(prompt string) (string, error) {
		if !strings.Contains(prompt, "evaluation") {
			return "", fmt.Errorf("unexpected prompt")
		}
		evalCalls++
		if evalCalls == 1 {
			return `{"evaluation": "good"}`, nil
		}
		return "", fmt.Errorf("evaluator down")
	}}
	queryCount := 0
	provider := &fakeProvider{fn: func(q search.Query) (search.Response, error) {
		queryCount++
		return search.Response{Results: []search.Result{{
			Title:   fmt.Sprintf("Article %d", queryCount),
			Content: strings.Repeat("x", 600),
			URL:     "https://example.com",
		}}}, nil
	}}

	gw, sessionID, closeFn := newGateway(t, llm, provider)
	defer closeFn()
	ctx := context.Background()

	setKey(t, gw, sessionID, roster.KeyTopic, roster.Topic{Topic: "Robots"})

	result, err := gw.Invoke(ctx, sessionID, "fetch_articles")
	if err != nil {
		t.Fatalf("invoke fetch_articles: %v", err)
	}
	if result.Failed {
		t.Fatalf("fetch failed: %s", result.Text)
	}

	var evaluated, good []roster.Article
	if found, err := gw.Store.GetKey(ctx, gw.App, gw.User, sessionID, roster.KeyEvaluatedArticles, &evaluated); err != nil || !found {
		t.Fatalf("evaluated articles not stored: found=%v err=%v", found, err)
	}
	if found, err := gw.Store.GetKey(ctx, gw.App, gw.User, sessionID, roster.KeyGoodArticles, &good); err != nil || !found {
		t.Fatalf("good articles not stored: found=%v err=%v", found, err)
	}

	if len(evaluated) != 4 {
		t.Fatalf("expected 4 evaluated articles, got %d", len(evaluated))
	}
	// One verdict succeeded; every failed evaluation defaulted to bad.
	if len(good) != 1 {
		t.Fatalf("expected 1 good article, got %d", len(good))
	}
	for _, a := range evaluated {
		if a.Evaluation != roster.EvaluationGood && a.Evaluation != roster.EvaluationBad {
			t.Fatalf("article without verdict: %+v", a)
		}
		if len(a.Summary) > 500 {
			t.Fatalf("summary not truncated: %d chars", len(a.Summary))
		}
	}
}

func TestInvokeWithoutCollaborators(t *testing.T) {
	db, closeFn := testutil.OpenTestDB(t)
	defer closeFn()
	store := state.NewStore(db)
	ctx := context.Background()

	session, err := store.Create(ctx, "studio", "user-1")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	// A daemon with no model or search key still serves invocations.
	gw := &gateway.Gateway{
		App:       "studio",
		User:      "user-1",
		Store:     store,
		Artifacts: artifact.NewStore(db),
		Bus:       eventbus.NewBus(db),
		Roster:    roster.NewSet(nil, nil, nil, nil),
	}

	result, err := gw.Invoke(ctx, session.ID, "We are Acme, a robotics company")
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if !result.Failed || !strings.HasPrefix(result.Text, "Error: ") {
		t.Fatalf("expected degraded result, got failed=%v text=%q", result.Failed, result.Text)
	}

	result, err = gw.Invoke(ctx, session.ID, "generate_topic")
	if err != nil {
		t.Fatalf("invoke generate_topic: %v", err)
	}
	if !result.Failed || !strings.HasPrefix(result.Text, "Error: ") {
		t.Fatalf("expected degraded result, got failed=%v text=%q", result.Failed, result.Text)
	}
}
