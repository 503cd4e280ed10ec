package roster

import (
	"context"
	"fmt"
	"log"
	"time"
	"unicode/utf8"

	"github.com/contentkit/studio/internal/ai"
	"github.com/contentkit/studio/internal/search"
)

const (
	articleQueryResults = 5
	articleWindow       = 61 * 24 * time.Hour // roughly two months
	summaryMaxLen       = 500
)

// ArticleFetcher searches for recent articles around the selected topic.
// Individual query failures are logged and skipped; if every query fails
// the fetcher still writes an empty list with an explanatory message so
// the degradation is inspectable.
type ArticleFetcher struct {
	Search search.Provider
	Now    func() time.Time
}

func (a *ArticleFetcher) Run(ctx context.Context, snap Snapshot) (StepResult, error) {
	topic, ok := snap.Topic()
	if !ok || topic.Topic == "" {
		return StepResult{}, fmt.Errorf("%w: no topic to fetch articles for", ErrValidation)
	}

	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	today := now().UTC()
	oldest := today.Add(-articleWindow)

	queries := []string{
		fmt.Sprintf("%q insights analysis trends", topic.Topic),
		fmt.Sprintf("%q industry news developments", topic.Topic),
		fmt.Sprintf("%q expert opinions research", topic.Topic),
		fmt.Sprintf("%q best practices case studies", topic.Topic),
	}

	articles := []Article{}
	failures := 0
	for _, q := range queries {
		resp, err := a.Search.Search(ctx, search.Query{
			Query:       q,
			MaxResults:  articleQueryResults,
			SearchDepth: "advanced",
		})
		if err != nil {
			log.Printf("article fetcher: query %q failed: %v", q, err)
			failures++
			continue
		}
		for _, r := range resp.Results {
			if r.PublishedDate != "" {
				published, err := time.Parse("2006-01-02", truncate(r.PublishedDate, 10))
				if err == nil && (published.Before(oldest) || published.After(today)) {
					continue
				}
			}
			articles = append(articles, Article{
				Title:         r.Title,
				Summary:       truncate(r.Content, summaryMaxLen),
				URL:           r.URL,
				PublishedDate: r.PublishedDate,
			})
		}
	}

	events := []Event{toolEvent("fetch_articles", fmt.Sprintf("fetched %d articles", len(articles)))}
	if len(articles) == 0 && failures == len(queries) {
		events = append(events, textEvent("Article search is unavailable; no articles were fetched."))
	} else {
		events = append(events, textEvent(fmt.Sprintf("Fetched %d articles for topic: %s", len(articles), topic.Topic)))
	}

	return StepResult{
		Patch:  Patch{{Key: KeyFetchedArticles, Value: articles}},
		Events: events,
	}, nil
}

// ArticleEvaluator classifies each fetched article as good or bad. A failed
// evaluation defaults that one article to bad and leaves the rest of the
// batch unaffected. good_articles is the filtered view of the evaluated
// list.
type ArticleEvaluator struct {
	LLM ai.Completer
}

func (a *ArticleEvaluator) Run(ctx context.Context, snap Snapshot) (StepResult, error) {
	fetched := snap.Articles(KeyFetchedArticles)
	if len(fetched) == 0 {
		return StepResult{
			Patch: Patch{
				{Key: KeyEvaluatedArticles, Value: []Article{}},
				{Key: KeyGoodArticles, Value: []Article{}},
			},
			Events: []Event{textEvent("No articles found to evaluate.")},
		}, nil
	}

	evaluated := make([]Article, 0, len(fetched))
	good := []Article{}
	for _, article := range fetched {
		snippet := fmt.Sprintf("Title: %s\nSummary: %s\nURL: %s", article.Title, article.Summary, article.URL)

		var verdict struct {
			Evaluation string `json:"evaluation"`
		}
		evaluation := EvaluationBad
		if err := ai.CompleteJSON(ctx, a.LLM, fmt.Sprintf(evaluateArticlePrompt, snippet), &verdict); err != nil {
			log.Printf("article evaluator: %q defaulted to bad: %v", article.Title, err)
		} else if verdict.Evaluation == EvaluationGood {
			evaluation = EvaluationGood
		}

		article.Evaluation = evaluation
		evaluated = append(evaluated, article)
		if evaluation == EvaluationGood {
			good = append(good, article)
		}
	}

	return StepResult{
		Patch: Patch{
			{Key: KeyEvaluatedArticles, Value: evaluated},
			{Key: KeyGoodArticles, Value: good},
		},
		Events: []Event{
			toolEvent("evaluate_articles", fmt.Sprintf("evaluated %d, kept %d", len(evaluated), len(good))),
			textEvent(fmt.Sprintf("Evaluated %d articles. Found %d high-quality articles.", len(evaluated), len(good))),
		},
	}, nil
}

// truncate cuts s to at most max bytes without splitting a UTF-8 rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
