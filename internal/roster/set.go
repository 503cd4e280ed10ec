package roster

import (
	"context"
	"errors"

	"github.com/contentkit/studio/internal/ai"
	"github.com/contentkit/studio/internal/search"
)

// Set is the full agent roster wired against shared collaborators. Any
// collaborator may be nil; the affected members degrade gracefully instead
// of touching an absent backend.
type Set struct {
	Profile     *ProfileUpdater
	TopicGen    *TopicGenerator
	CustomTopic *CustomTopic
	Fetcher     *ArticleFetcher
	Evaluator   *ArticleEvaluator
	Competitor  *CompetitorAnalyzer
	Viral       *ViralAnalyzer
	Drafters    map[Platform]*Drafter
	Posters     map[Platform]*Poster
}

// disabledCompleter stands in for an unconfigured language model. Every
// completion fails, which the members surface as a degraded result.
type disabledCompleter struct{}

func (disabledCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	return "", errors.New("language model not configured")
}

// disabledSearch stands in for an unconfigured search provider.
type disabledSearch struct{}

func (disabledSearch) Search(ctx context.Context, q search.Query) (search.Response, error) {
	return search.Response{}, errors.New("search provider not configured")
}

func NewSet(llm ai.Completer, provider search.Provider, images ImageGenerator, publisher Publisher) *Set {
	if llm == nil {
		llm = disabledCompleter{}
	}
	if provider == nil {
		provider = disabledSearch{}
	}
	set := &Set{
		Profile:     &ProfileUpdater{LLM: llm},
		TopicGen:    &TopicGenerator{LLM: llm, Search: provider},
		CustomTopic: &CustomTopic{LLM: llm},
		Fetcher:     &ArticleFetcher{Search: provider},
		Evaluator:   &ArticleEvaluator{LLM: llm},
		Competitor:  &CompetitorAnalyzer{LLM: llm, Search: provider},
		Viral:       &ViralAnalyzer{LLM: llm, Search: provider},
		Drafters:    map[Platform]*Drafter{},
		Posters:     map[Platform]*Poster{},
	}
	for _, platform := range Platforms {
		set.Drafters[platform] = &Drafter{Platform: platform, LLM: llm, Images: images}
		set.Posters[platform] = &Poster{Platform: platform, Publisher: publisher}
	}
	return set
}
