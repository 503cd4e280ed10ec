// Package syncer keeps a per-session local cache of the state bag plus
// the derived flags the workflow gate and a front end read. The cache is
// rebuilt from a full state read; the bag stays the source of truth.
package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/contentkit/studio/internal/roster"
	"github.com/contentkit/studio/internal/state"
)

// Status is a platform's draft generation status as derived from the bag.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// PlatformView is the cached per-platform drafting state.
type PlatformView struct {
	Content       string `json:"content"`
	ImageFilename string `json:"image_filename,omitempty"`
	Status        Status `json:"status"`
}

// Cache is one session's synchronized view: the raw bag (unknown keys pass
// through untouched) plus flags derived from the known keys. Synced is
// false when the last pull could not reach the store and the cache is
// whatever the previous pull produced.
type Cache struct {
	Raw map[string]json.RawMessage `json:"raw"`

	ProfileUpdated bool   `json:"profile_updated"`
	TopicGenerated bool   `json:"topic_generated"`
	SelectedTopic  string `json:"selected_topic,omitempty"`
	Step1Complete  bool   `json:"step1_complete"`

	CompetitorAnalysisComplete bool `json:"competitor_analysis_complete"`
	ViralAnalysisComplete      bool `json:"viral_analysis_complete"`
	ArticleAnalysisComplete    bool `json:"article_analysis_complete"`
	Step2Complete              bool `json:"step2_complete"`

	Platforms map[roster.Platform]PlatformView `json:"platforms"`

	Synced   bool      `json:"synced"`
	SyncedAt time.Time `json:"synced_at"`
}

// Syncer owns one cache per session. Safe for concurrent use.
type Syncer struct {
	App   string
	User  string
	Store *state.Store
	Now   func() time.Time

	mu     sync.Mutex
	caches map[string]Cache
}

func New(app, user string, store *state.Store) *Syncer {
	return &Syncer{
		App:    app,
		User:   user,
		Store:  store,
		Now:    time.Now,
		caches: make(map[string]Cache),
	}
}

// Pull re-reads the whole bag and rebuilds the session's cache. A read
// failure is downgraded: the previous cache comes back with Synced=false
// instead of an error, so a flaky store never wipes what the UI has.
// Two pulls with no writes in between produce identical caches apart
// from SyncedAt.
func (s *Syncer) Pull(ctx context.Context, sessionID string) Cache {
	s.mu.Lock()
	defer s.mu.Unlock()

	bag, err := s.Store.GetState(ctx, s.App, s.User, sessionID)
	if err != nil {
		log.Printf("sync pull for session %s: %v", sessionID, err)
		cache := s.caches[sessionID]
		cache.Synced = false
		cache.SyncedAt = s.Now()
		s.caches[sessionID] = cache
		return cache
	}

	cache := derive(roster.Snapshot(bag))
	cache.Synced = true
	cache.SyncedAt = s.Now()
	s.caches[sessionID] = cache
	return cache
}

// Push writes one key back to the bag. The next Pull picks the value up;
// the cache is not patched in place.
func (s *Syncer) Push(ctx context.Context, sessionID, key string, value any) error {
	if err := s.Store.SetKey(ctx, s.App, s.User, sessionID, key, value); err != nil {
		return fmt.Errorf("push key %s: %w", key, err)
	}
	return nil
}

// Cached returns the last pulled cache without touching the store.
func (s *Syncer) Cached(sessionID string) (Cache, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cache, ok := s.caches[sessionID]
	return cache, ok
}

func derive(snap roster.Snapshot) Cache {
	cache := Cache{
		Raw:       map[string]json.RawMessage(snap),
		Platforms: make(map[roster.Platform]PlatformView, len(roster.Platforms)),
	}

	if profile, ok := snap.Profile(); ok && !profile.Empty() {
		cache.ProfileUpdated = true
	}
	if topic, ok := snap.Topic(); ok && topic.Topic != "" {
		cache.TopicGenerated = true
		cache.SelectedTopic = topic.Topic
	}
	cache.Step1Complete = cache.ProfileUpdated && cache.TopicGenerated

	cache.CompetitorAnalysisComplete = snap.Text(roster.KeyCompetitorAnalysis) != ""
	cache.ViralAnalysisComplete = snap.Text(roster.KeyViralContentAnalysis) != ""
	// Article analysis is complete once the evaluator has run, even when it
	// evaluated an empty fetch.
	_, evaluated := snap[roster.KeyEvaluatedArticles]
	cache.ArticleAnalysisComplete = evaluated
	cache.Step2Complete = cache.CompetitorAnalysisComplete && cache.ViralAnalysisComplete && cache.ArticleAnalysisComplete

	for _, platform := range roster.Platforms {
		view := PlatformView{
			Content:       snap.Text(platform.ContentKey()),
			ImageFilename: snap.Text(platform.ImageKey()),
			Status:        StatusPending,
		}
		if view.Content != "" {
			view.Status = StatusSuccess
		}
		cache.Platforms[platform] = view
	}
	return cache
}
