package search

import "context"

// Result is one record returned by a search provider.
type Result struct {
	Title         string `json:"title"`
	Content       string `json:"content"`
	URL           string `json:"url"`
	PublishedDate string `json:"published_date,omitempty"`
}

// Query describes one search request. Zero fields are omitted from the
// request, so a bare {Query: "..."} is valid.
type Query struct {
	Query          string
	MaxResults     int
	SearchDepth    string // "basic" or "advanced"
	Topic          string // "news" enables the Days window
	Days           int
	IncludeDomains []string
	IncludeAnswer  bool
}

// Response carries the provider's optional synthesized answer plus the raw
// result records.
type Response struct {
	Answer  string   `json:"answer,omitempty"`
	Results []Result `json:"results"`
}

// Provider is the retrieval dependency of the agent roster. Implementations
// must treat failures as ordinary errors; the roster degrades them locally.
type Provider interface {
	Search(ctx context.Context, q Query) (Response, error)
}
