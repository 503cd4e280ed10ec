package gateway

import (
	"fmt"
	"strings"

	"github.com/contentkit/studio/internal/roster"
)

// Kind enumerates the commands the gateway can dispatch.
type Kind string

const (
	KindUpdateProfile      Kind = "update_profile"
	KindGenerateTopic      Kind = "generate_topic"
	KindCustomTopic        Kind = "custom_topic"
	KindFetchArticles      Kind = "fetch_articles"
	KindAnalyze            Kind = "analyze" // fan-out: competitor + viral
	KindCompetitorAnalysis Kind = "competitor_analysis"
	KindViralAnalysis      Kind = "viral_analysis"
	KindDraft              Kind = "draft"
	KindPost               Kind = "post"
)

// Command is the tagged union the gateway dispatches on. Free-text
// directives reach the core only through ParseDirective, which maps the
// informal command language onto this type.
type Command struct {
	Kind     Kind
	Text     string          // payload: profile text, custom topic, or post body
	Platform roster.Platform // set for draft and post commands
}

// drafterNames maps the legacy "transferring to <Subagent>" phrasing onto
// platforms.
var drafterNames = map[string]roster.Platform{
	"x_tweet_content_drafter":   roster.PlatformTwitterPost,
	"x_thread_content_drafter":  roster.PlatformTwitterThread,
	"instagram_content_drafter": roster.PlatformInstagram,
	"linkedin_content_drafter":  roster.PlatformLinkedIn,
}

var postPrefixes = map[string]roster.Platform{
	"post to twitter:":   roster.PlatformTwitterPost,
	"post to x:":         roster.PlatformTwitterPost,
	"post x thread:":     roster.PlatformTwitterThread,
	"post to instagram:": roster.PlatformInstagram,
	"post to linkedin:":  roster.PlatformLinkedIn,
}

// ParseDirective translates a directive string into a Command. Structured
// forms ("generate_topic", "draft linkedin_post", "custom_topic: ...") are
// recognized first; the original phrase-matching forms are kept so a
// natural-language front end keeps working. Anything unrecognized is
// treated as new company information for the profile updater, which is how
// the original root agent routed free text.
func ParseDirective(directive string) (Command, error) {
	trimmed := strings.TrimSpace(directive)
	if trimmed == "" {
		return Command{}, fmt.Errorf("empty directive")
	}
	lower := strings.ToLower(trimmed)

	switch lower {
	case "generate_topic":
		return Command{Kind: KindGenerateTopic}, nil
	case "fetch_articles":
		return Command{Kind: KindFetchArticles}, nil
	case "analyze":
		return Command{Kind: KindAnalyze}, nil
	case "competitor_analysis":
		return Command{Kind: KindCompetitorAnalysis}, nil
	case "viral_analysis":
		return Command{Kind: KindViralAnalysis}, nil
	}

	if rest, ok := cutPrefixFold(trimmed, "custom_topic:"); ok {
		return Command{Kind: KindCustomTopic, Text: strings.TrimSpace(rest)}, nil
	}
	if rest, ok := cutPrefixFold(trimmed, "update_profile:"); ok {
		return Command{Kind: KindUpdateProfile, Text: strings.TrimSpace(rest)}, nil
	}
	if rest, ok := cutPrefixFold(trimmed, "draft "); ok {
		platform := roster.Platform(strings.TrimSpace(strings.ToLower(rest)))
		if !platform.Valid() {
			return Command{}, fmt.Errorf("unknown draft platform %q", rest)
		}
		return Command{Kind: KindDraft, Platform: platform}, nil
	}

	for prefix, platform := range postPrefixes {
		if rest, ok := cutPrefixFold(trimmed, prefix); ok {
			return Command{Kind: KindPost, Platform: platform, Text: strings.TrimSpace(rest)}, nil
		}
	}

	if strings.Contains(lower, "transferring to") {
		for name, platform := range drafterNames {
			if strings.Contains(lower, name) {
				return Command{Kind: KindDraft, Platform: platform}, nil
			}
		}
		return Command{}, fmt.Errorf("unknown drafting subagent in directive %q", trimmed)
	}

	// Free text defaults to a profile update.
	return Command{Kind: KindUpdateProfile, Text: trimmed}, nil
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) {
		return "", false
	}
	if !strings.EqualFold(s[:len(prefix)], prefix) {
		return "", false
	}
	return s[len(prefix):], true
}
