package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/contentkit/studio/internal/artifact"
	"github.com/contentkit/studio/internal/eventbus"
	"github.com/contentkit/studio/internal/gateway"
	"github.com/contentkit/studio/internal/state"
	"github.com/contentkit/studio/internal/syncer"
	"github.com/contentkit/studio/internal/workflow"
)

// Server is the HTTP surface over the studio core. All fields are required
// except StartedAt, which only feeds the health payload.
type Server struct {
	App       string
	User      string
	Store     *state.Store
	Artifacts *artifact.Store
	Bus       *eventbus.Bus
	Gateway   *gateway.Gateway
	Syncer    *syncer.Syncer
	Workflow  *workflow.Registry
	StartedAt time.Time
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/api/health", s.handleHealth)
	r.Post("/api/sessions", s.handleCreateSession)
	r.Route("/api/sessions/{sessionID}", func(r chi.Router) {
		r.Get("/state", s.handleGetState)
		r.Put("/state/{key}", s.handlePutStateKey)
		r.Post("/invoke", s.handleInvoke)
		r.Post("/sync", s.handleSync)
		r.Get("/workflow", s.handleWorkflow)
		r.Post("/workflow/advance", s.handleWorkflowAdvance)
		r.Post("/workflow/back", s.handleWorkflowBack)
		r.Get("/artifacts", s.handleListArtifacts)
		r.Get("/artifacts/{filename}", s.handleLoadArtifact)
		r.Get("/events", s.handleListEvents)
		r.Get("/events/ws", s.handleEventsWS)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC(),
		"uptime": time.Since(s.StartedAt).Round(time.Second).String(),
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.Store.Create(r.Context(), s.App, s.User)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	bag, err := s.Store.GetState(r.Context(), s.App, s.User, sessionID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bag)
}

func (s *Server) handlePutStateKey(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	key := chi.URLParam(r, "key")
	var value json.RawMessage
	if err := decodeJSON(r.Body, &value); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.Syncer.Push(r.Context(), sessionID, key, value); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	var payload struct {
		Directive string `json:"directive"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if payload.Directive == "" {
		writeError(w, http.StatusBadRequest, errors.New("directive is required"))
		return
	}
	result, err := s.Gateway.Invoke(r.Context(), sessionID, payload.Directive)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if _, err := s.Store.Get(r.Context(), s.App, s.User, sessionID); err != nil {
		writeStoreError(w, err)
		return
	}
	cache := s.Syncer.Pull(r.Context(), sessionID)
	writeJSON(w, http.StatusOK, cache)
}

func decodeJSON(body io.Reader, dest any) error {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

// writeStoreError maps core sentinel errors to HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, state.ErrSessionNotFound), errors.Is(err, artifact.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, state.ErrStoreUnavailable):
		writeError(w, http.StatusInternalServerError, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func parseInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
