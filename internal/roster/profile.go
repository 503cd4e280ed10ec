package roster

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/contentkit/studio/internal/ai"
)

// ProfileUpdater merges freeform company information into the stored
// profile. The merge is old record + new text in, whole new record out;
// individual fields are never patched.
type ProfileUpdater struct {
	LLM ai.Completer
}

func (a *ProfileUpdater) Run(ctx context.Context, snap Snapshot, info string) (StepResult, error) {
	old, _ := snap.Profile()
	oldJSON, err := json.Marshal(old)
	if err != nil {
		return StepResult{}, fmt.Errorf("encode existing profile: %w", err)
	}

	var merged CompanyProfile
	prompt := fmt.Sprintf(mergeProfilePrompt, oldJSON, info)
	if err := ai.CompleteJSON(ctx, a.LLM, prompt, &merged); err != nil {
		return StepResult{}, fmt.Errorf("%w: merge profile: %v", ErrValidation, err)
	}
	if merged.Empty() {
		return StepResult{}, fmt.Errorf("%w: merged profile is empty", ErrValidation)
	}

	return StepResult{
		Patch: Patch{{Key: KeyCompanyProfile, Value: merged}},
		Events: []Event{
			toolEvent("update_company_info", "merged profile"),
			textEvent(fmt.Sprintf("Updated company profile for %s.", displayName(merged))),
		},
	}, nil
}

func displayName(p CompanyProfile) string {
	if p.CompanyName != "" {
		return p.CompanyName
	}
	return "the company"
}
