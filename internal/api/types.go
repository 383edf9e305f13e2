package api

import "github.com/smilealdway/PowerMCP/internal/history"

// HealthzResponse is the GET /healthz payload.
type HealthzResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	SessionLoaded bool   `json:"session_loaded"`
	SessionEngine string `json:"session_engine,omitempty"`
	Workspaces    int    `json:"workspaces"`
}

// RunsResponse is the GET /api/v1/runs payload.
type RunsResponse struct {
	Runs []*history.Run `json:"runs"`
}

// WorkspaceInfo summarizes one workspace directory.
type WorkspaceInfo struct {
	Key   string   `json:"key"`
	Dir   string   `json:"dir"`
	Files []string `json:"files,omitempty"`
}

// WorkspacesResponse is the GET /api/v1/workspaces payload.
type WorkspacesResponse struct {
	Workspaces []WorkspaceInfo `json:"workspaces"`
}

// ErrorResponse carries an API-level error.
type ErrorResponse struct {
	Error string `json:"error"`
}
