package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListArtifacts(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if _, err := s.Store.Get(r.Context(), s.App, s.User, sessionID); err != nil {
		writeStoreError(w, err)
		return
	}
	keys, err := s.Artifacts.ListKeys(r.Context(), s.App, s.User, sessionID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"filenames": keys})
}

func (s *Server) handleLoadArtifact(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	filename := chi.URLParam(r, "filename")
	version := parseInt(r.URL.Query().Get("version"), 0)

	blob, err := s.Artifacts.Load(r.Context(), s.App, s.User, sessionID, filename, version)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	w.Header().Set("Content-Type", blob.MimeType)
	w.Header().Set("X-Artifact-Version", strconv.Itoa(blob.Version))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(blob.Data)
}
