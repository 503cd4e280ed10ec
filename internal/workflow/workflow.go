// Package workflow gates the three-step authoring flow. Transitions are
// forward-or-back only and always explicit; completing a step's work never
// moves the session by itself.
package workflow

import (
	"errors"
	"sync"

	"github.com/contentkit/studio/internal/roster"
	"github.com/contentkit/studio/internal/syncer"
)

// Step is the current position in the flow.
type Step int

const (
	StepFoundation Step = 1 // profile + topic
	StepAnalysis   Step = 2 // competitor + viral analysis
	StepDrafting   Step = 3 // per-platform drafting and posting, terminal
)

var (
	ErrGuardNotMet = errors.New("step requirements not met")
	ErrAtFirstStep = errors.New("already at the first step")
	ErrAtLastStep  = errors.New("already at the last step")
)

// CanAdvance reports whether the guard for leaving the current step holds
// over the cache. Pure: same cache, same answer.
func CanAdvance(step Step, cache syncer.Cache) bool {
	switch step {
	case StepFoundation:
		return cache.Step1Complete
	case StepAnalysis:
		return cache.Step2Complete
	default:
		return false
	}
}

// CanPost reports whether the platform's post action is enabled: its draft
// must be non-empty. Only meaningful on the drafting step.
func CanPost(cache syncer.Cache, platform roster.Platform) bool {
	view, ok := cache.Platforms[platform]
	return ok && view.Content != ""
}

// Controller tracks one session's position. Safe for concurrent use.
type Controller struct {
	mu   sync.Mutex
	step Step
}

func NewController() *Controller {
	return &Controller{step: StepFoundation}
}

func (c *Controller) Step() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// Advance moves one step forward if the guard holds over the supplied
// cache. Callers pull a fresh cache first.
func (c *Controller) Advance(cache syncer.Cache) (Step, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step == StepDrafting {
		return c.step, ErrAtLastStep
	}
	if !CanAdvance(c.step, cache) {
		return c.step, ErrGuardNotMet
	}
	c.step++
	return c.step, nil
}

// Back moves one step backward. Forbidden from the first step.
func (c *Controller) Back() (Step, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step == StepFoundation {
		return c.step, ErrAtFirstStep
	}
	c.step--
	return c.step, nil
}

// Registry hands out one controller per session.
type Registry struct {
	mu          sync.Mutex
	controllers map[string]*Controller
}

func NewRegistry() *Registry {
	return &Registry{controllers: make(map[string]*Controller)}
}

// For returns the session's controller, creating it at the first step on
// first use.
func (r *Registry) For(sessionID string) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.controllers[sessionID]
	if !ok {
		c = NewController()
		r.controllers[sessionID] = c
	}
	return c
}
