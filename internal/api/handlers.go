package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// handleHealthz handles GET /healthz.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	resp := HealthzResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
	}
	if current := s.sessions.Current(); current != nil {
		resp.SessionLoaded = true
		resp.SessionEngine = current.Engine
	}
	if workspaces, err := s.workspaces.List(r.Context()); err == nil {
		resp.Workspaces = len(workspaces)
	}
	respondJSON(w, http.StatusOK, resp)
}

// handleRuns handles GET /api/v1/runs?limit=N.
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	runs, err := s.runs.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to read run log", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to read run log")
		return
	}
	respondJSON(w, http.StatusOK, RunsResponse{Runs: runs})
}

// handleRunByID handles GET /api/v1/runs/{id}.
func (s *Server) handleRunByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	run, err := s.runs.Get(r.Context(), id)
	if err != nil {
		s.logger.Error("failed to read run", "id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to read run")
		return
	}
	if run == nil {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	respondJSON(w, http.StatusOK, run)
}

// handleWorkspaces handles GET /api/v1/workspaces.
func (s *Server) handleWorkspaces(w http.ResponseWriter, r *http.Request) {
	workspaces, err := s.workspaces.List(r.Context())
	if err != nil {
		s.logger.Error("failed to list workspaces", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list workspaces")
		return
	}

	infos := make([]WorkspaceInfo, 0, len(workspaces))
	for _, ws := range workspaces {
		info := WorkspaceInfo{Key: ws.Key, Dir: ws.Dir}
		if files, err := ws.Files(); err == nil {
			info.Files = files
		}
		infos = append(infos, info)
	}
	respondJSON(w, http.StatusOK, WorkspacesResponse{Workspaces: infos})
}

// respondJSON is a helper to write JSON responses.
func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}
