package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/contentkit/studio/internal/roster"
	"github.com/contentkit/studio/internal/syncer"
	"github.com/contentkit/studio/internal/workflow"
)

// workflowStatus is the gate view a front end renders: the current step,
// whether Next is enabled, and per-platform post enablement on step 3.
type workflowStatus struct {
	Step       workflow.Step            `json:"step"`
	CanAdvance bool                     `json:"can_advance"`
	CanBack    bool                     `json:"can_back"`
	CanPost    map[roster.Platform]bool `json:"can_post,omitempty"`
	Cache      syncer.Cache             `json:"cache"`
}

func (s *Server) workflowStatusFor(r *http.Request, sessionID string) (workflowStatus, error) {
	if _, err := s.Store.Get(r.Context(), s.App, s.User, sessionID); err != nil {
		return workflowStatus{}, err
	}
	cache := s.Syncer.Pull(r.Context(), sessionID)
	controller := s.Workflow.For(sessionID)
	step := controller.Step()

	status := workflowStatus{
		Step:       step,
		CanAdvance: workflow.CanAdvance(step, cache),
		CanBack:    step != workflow.StepFoundation,
		Cache:      cache,
	}
	if step == workflow.StepDrafting {
		status.CanPost = make(map[roster.Platform]bool, len(roster.Platforms))
		for _, platform := range roster.Platforms {
			status.CanPost[platform] = workflow.CanPost(cache, platform)
		}
	}
	return status, nil
}

func (s *Server) handleWorkflow(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	status, err := s.workflowStatusFor(r, sessionID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleWorkflowAdvance(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if _, err := s.Store.Get(r.Context(), s.App, s.User, sessionID); err != nil {
		writeStoreError(w, err)
		return
	}
	cache := s.Syncer.Pull(r.Context(), sessionID)
	if _, err := s.Workflow.For(sessionID).Advance(cache); err != nil {
		if errors.Is(err, workflow.ErrGuardNotMet) || errors.Is(err, workflow.ErrAtLastStep) {
			writeError(w, http.StatusConflict, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	status, err := s.workflowStatusFor(r, sessionID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleWorkflowBack(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if _, err := s.Store.Get(r.Context(), s.App, s.User, sessionID); err != nil {
		writeStoreError(w, err)
		return
	}
	if _, err := s.Workflow.For(sessionID).Back(); err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	status, err := s.workflowStatusFor(r, sessionID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
