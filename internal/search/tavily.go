package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const tavilyEndpoint = "https://api.tavily.com/search"

// TavilyClient implements Provider against the Tavily search API.
type TavilyClient struct {
	APIKey     string
	HTTPClient *http.Client
	Endpoint   string
}

func NewTavilyClient(apiKey string) *TavilyClient {
	return &TavilyClient{
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Endpoint:   tavilyEndpoint,
	}
}

type tavilyRequest struct {
	APIKey         string   `json:"api_key"`
	Query          string   `json:"query"`
	MaxResults     int      `json:"max_results,omitempty"`
	SearchDepth    string   `json:"search_depth,omitempty"`
	Topic          string   `json:"topic,omitempty"`
	Days           int      `json:"days,omitempty"`
	IncludeDomains []string `json:"include_domains,omitempty"`
	IncludeAnswer  bool     `json:"include_answer,omitempty"`
}

type tavilyResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		Title         string `json:"title"`
		Content       string `json:"content"`
		URL           string `json:"url"`
		PublishedDate string `json:"published_date"`
	} `json:"results"`
}

func (c *TavilyClient) Search(ctx context.Context, q Query) (Response, error) {
	payload, err := json.Marshal(tavilyRequest{
		APIKey:         c.APIKey,
		Query:          q.Query,
		MaxResults:     q.MaxResults,
		SearchDepth:    q.SearchDepth,
		Topic:          q.Topic,
		Days:           q.Days,
		IncludeDomains: q.IncludeDomains,
		IncludeAnswer:  q.IncludeAnswer,
	})
	if err != nil {
		return Response{}, fmt.Errorf("encode search request: %w", err)
	}

	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = tavilyEndpoint
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Response{}, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return Response{}, fmt.Errorf("read search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Response{}, fmt.Errorf("search returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var decoded tavilyResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return Response{}, fmt.Errorf("decode search response: %w", err)
	}

	out := Response{Answer: decoded.Answer}
	for _, r := range decoded.Results {
		out.Results = append(out.Results, Result{
			Title:         r.Title,
			Content:       r.Content,
			URL:           r.URL,
			PublishedDate: r.PublishedDate,
		})
	}
	return out, nil
}
