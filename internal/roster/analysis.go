package roster

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/contentkit/studio/internal/ai"
	"github.com/contentkit/studio/internal/search"
)

var socialDomains = []string{"linkedin.com", "x.com", "instagram.com"}

// CompetitorAnalyzer finds the company's competitors and analyzes their
// recent high-engagement posts across LinkedIn, X and Instagram. Search
// failures degrade to analyzing whatever was found; only a failed
// synthesis call aborts the step.
type CompetitorAnalyzer struct {
	LLM    ai.Completer
	Search search.Provider
}

func (a *CompetitorAnalyzer) Run(ctx context.Context, snap Snapshot) (StepResult, error) {
	profile, ok := snap.Profile()
	if !ok {
		return StepResult{}, fmt.Errorf("%w: no company profile for competitor analysis", ErrValidation)
	}
	topic, _ := snap.Topic()

	competitors := ""
	resp, err := a.Search.Search(ctx, search.Query{
		Query:         fmt.Sprintf("competitors of %s %s", profile.CompanyName, profile.PrimaryIndustry),
		MaxResults:    1,
		SearchDepth:   "advanced",
		IncludeAnswer: true,
	})
	if err != nil {
		log.Printf("competitor analyzer: competitor search failed: %v", err)
	} else if resp.Answer != "" {
		competitors = resp.Answer
	} else if len(resp.Results) > 0 {
		competitors = resp.Results[0].Content
	}

	queries := []string{
		fmt.Sprintf("%q LinkedIn viral posts high engagement", competitors),
		fmt.Sprintf("%q X viral posts high engagement", competitors),
		fmt.Sprintf("%q Instagram viral posts high engagement", competitors),
	}
	posts := collectPosts(ctx, a.Search, queries, 5, 60)

	var events []Event
	events = append(events, toolEvent("analyze_competitor_content", fmt.Sprintf("analyzed %d competitor posts", len(posts))))

	if competitors == "" && len(posts) == 0 {
		// Nothing to analyze: write an empty analysis so the result is
		// deterministic and inspectable, and leave the step incomplete.
		events = append(events, textEvent("Competitor search is unavailable; no analysis was produced."))
		return StepResult{
			Patch:  Patch{{Key: KeyCompetitorAnalysis, Value: ""}},
			Events: events,
		}, nil
	}

	analysis, err := a.LLM.Complete(ctx, fmt.Sprintf(competitorSynthesisPrompt, topic.Topic, formatPosts(posts)))
	if err != nil {
		return StepResult{}, fmt.Errorf("%w: competitor synthesis: %v", ErrUpstream, err)
	}

	events = append(events, textEvent(fmt.Sprintf("Analyzed %d competitor posts.", len(posts))))
	return StepResult{
		Patch:  Patch{{Key: KeyCompetitorAnalysis, Value: analysis}},
		Events: events,
	}, nil
}

// ViralAnalyzer finds viral posts around the topic across LinkedIn, X and
// Instagram and distills the patterns that travel across platforms. It is
// explicitly multi-platform.
type ViralAnalyzer struct {
	LLM    ai.Completer
	Search search.Provider
}

func (a *ViralAnalyzer) Run(ctx context.Context, snap Snapshot) (StepResult, error) {
	topic, ok := snap.Topic()
	if !ok || topic.Topic == "" {
		return StepResult{}, fmt.Errorf("%w: no topic for viral analysis", ErrValidation)
	}

	var queries []string
	for _, site := range []string{"linkedin.com", "x.com", "instagram.com"} {
		queries = append(queries, fmt.Sprintf("site:%s %s posts recent", site, topic.Topic))
	}
	for _, network := range []string{"LinkedIn", "X", "Instagram"} {
		queries = append(queries,
			fmt.Sprintf("%s %s content viral", topic.Topic, network),
			fmt.Sprintf("%s %s strategy social media", topic.Topic, network),
		)
	}
	posts := collectPosts(ctx, a.Search, queries, 2, 180)

	events := []Event{toolEvent("find_viral_posts", fmt.Sprintf("found %d viral posts", len(posts)))}
	if len(posts) == 0 {
		events = append(events, textEvent("Viral content search is unavailable; no analysis was produced."))
		return StepResult{
			Patch:  Patch{{Key: KeyViralContentAnalysis, Value: ""}},
			Events: events,
		}, nil
	}

	analysis, err := a.LLM.Complete(ctx, fmt.Sprintf(viralSynthesisPrompt, topic.Topic, formatPosts(posts)))
	if err != nil {
		return StepResult{}, fmt.Errorf("%w: viral synthesis: %v", ErrUpstream, err)
	}

	events = append(events, textEvent(fmt.Sprintf("Analyzed %d viral posts.", len(posts))))
	return StepResult{
		Patch:  Patch{{Key: KeyViralContentAnalysis, Value: analysis}},
		Events: events,
	}, nil
}

func collectPosts(ctx context.Context, provider search.Provider, queries []string, perQuery, days int) []search.Result {
	var out []search.Result
	for _, q := range queries {
		resp, err := provider.Search(ctx, search.Query{
			Query:          q,
			MaxResults:     perQuery,
			SearchDepth:    "advanced",
			Topic:          "news",
			Days:           days,
			IncludeDomains: socialDomains,
		})
		if err != nil {
			log.Printf("post search %q failed: %v", q, err)
			continue
		}
		out = append(out, resp.Results...)
	}
	return out
}

func formatPosts(posts []search.Result) string {
	var b strings.Builder
	for i, p := range posts {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "Title: %s\nSummary: %s", p.Title, p.Content)
	}
	return b.String()
}
