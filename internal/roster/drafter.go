package roster

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/contentkit/studio/internal/ai"
)

// ImageGenerator produces an image for a drafted post. It is an optional
// collaborator; a nil generator means drafts ship without images.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (data []byte, mimeType string, err error)
}

// Drafter writes one platform's post from the topic, profile, curated
// articles and the two analyses. Each platform has its own drafter
// instance; drafters are independent and re-runnable in any order, and a
// re-run simply overwrites the same content key.
type Drafter struct {
	Platform Platform
	LLM      ai.Completer
	Images   ImageGenerator
}

func (a *Drafter) Run(ctx context.Context, snap Snapshot) (StepResult, error) {
	topic, ok := snap.Topic()
	if !ok || topic.Topic == "" {
		return StepResult{}, fmt.Errorf("%w: no topic to draft %s content from", ErrValidation, a.Platform)
	}
	profile, _ := snap.Profile()

	content, err := a.LLM.Complete(ctx, a.buildPrompt(snap, profile, topic))
	if err != nil {
		return StepResult{}, fmt.Errorf("%w: draft %s: %v", ErrUpstream, a.Platform, err)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return StepResult{}, fmt.Errorf("%w: empty %s draft", ErrValidation, a.Platform)
	}

	result := StepResult{
		Patch: Patch{{Key: a.Platform.ContentKey(), Value: content}},
		Events: []Event{
			toolEvent("draft_content", string(a.Platform)),
		},
	}

	if a.Images != nil {
		imagePrompt := fmt.Sprintf("Social media image for a %s post about %q by %s", a.Platform, topic.Topic, displayName(profile))
		data, mimeType, err := a.Images.Generate(ctx, imagePrompt)
		if err != nil {
			// The draft is still usable without its image.
			log.Printf("drafter %s: image generation failed: %v", a.Platform, err)
			result.Events = append(result.Events, toolEvent("generate_image", "image generation failed, draft kept"))
		} else {
			filename := fmt.Sprintf("%s.png", a.Platform.ImageKey())
			result.Artifacts = append(result.Artifacts, ArtifactBlob{Filename: filename, MimeType: mimeType, Data: data})
			result.Patch = append(result.Patch, KV{Key: a.Platform.ImageKey(), Value: filename})
			result.Events = append(result.Events, toolEvent("generate_image", filename))
		}
	}

	result.Events = append(result.Events, textEvent(content))
	return result, nil
}

func (a *Drafter) buildPrompt(snap Snapshot, profile CompanyProfile, topic Topic) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", platformInstructions[a.Platform])
	fmt.Fprintf(&b, "Topic: %s\nContext: %s\nAngle: %s\nKeywords: %s\n", topic.Topic, topic.Context, topic.Angle, topic.Keywords)
	fmt.Fprintf(&b, "\nCompany: %s (%s)\nBrand voice: %s\n", displayName(profile), profile.CompanyWork, profile.BrandVoice)

	if good := snap.Articles(KeyGoodArticles); len(good) > 0 {
		b.WriteString("\nCurated articles:\n")
		for _, article := range good {
			fmt.Fprintf(&b, "- %s: %s\n", article.Title, article.Summary)
		}
	}
	if competitor := snap.Text(KeyCompetitorAnalysis); competitor != "" {
		fmt.Fprintf(&b, "\nCompetitor analysis:\n%s\n", competitor)
	}
	if viral := snap.Text(KeyViralContentAnalysis); viral != "" {
		fmt.Fprintf(&b, "\nViral content analysis:\n%s\n", viral)
	}
	b.WriteString("\nReturn only the post text.")
	return b.String()
}

var platformInstructions = map[Platform]string{
	PlatformTwitterPost:   "Write one tweet (under 280 characters) that lands the topic's angle with a strong hook.",
	PlatformTwitterThread: "Write an X thread of 4-6 tweets separated by blank lines; open with a hook, close with a takeaway.",
	PlatformInstagram:     "Write an Instagram caption: engaging first line, short story-driven body, 3-5 hashtags.",
	PlatformLinkedIn:      "Write a LinkedIn post for a professional audience: hook, insight-driven body, clear takeaway, no hashtag spam.",
}
