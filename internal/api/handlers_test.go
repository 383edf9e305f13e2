package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilealdway/PowerMCP/internal/history"
	"github.com/smilealdway/PowerMCP/internal/metrics"
	"github.com/smilealdway/PowerMCP/internal/session"
	"github.com/smilealdway/PowerMCP/internal/workspace"
)

type fakeRuns struct {
	runs []*history.Run
	err  error
}

func (f *fakeRuns) Recent(ctx context.Context, limit int) ([]*history.Run, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit > 0 && limit < len(f.runs) {
		return f.runs[:limit], nil
	}
	return f.runs, nil
}

func (f *fakeRuns) Get(ctx context.Context, id string) (*history.Run, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, r := range f.runs {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func newTestServer(t *testing.T, runs RunReader) *Server {
	t.Helper()
	mgr, err := workspace.NewManager(t.TempDir())
	require.NoError(t, err)
	return New(Config{Listen: "127.0.0.1:0"}, runs, mgr, session.NewStore(), metrics.New().Handler())
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, &fakeRuns{})
	s.sessions.Set("andes", "handle")

	rec := get(t, s, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthzResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.SessionLoaded)
	assert.Equal(t, "andes", resp.SessionEngine)
}

func TestRunsWithLimit(t *testing.T) {
	runs := &fakeRuns{}
	for i := 0; i < 5; i++ {
		runs.runs = append(runs.runs, &history.Run{
			ID:        fmt.Sprintf("run-%d", i),
			Tool:      "andes_run_power_flow",
			Status:    "success",
			StartedAt: time.Now().UTC(),
		})
	}

	s := newTestServer(t, runs)
	rec := get(t, s, "/api/v1/runs?limit=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RunsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Runs, 2)
}

func TestRunsRejectsBadLimit(t *testing.T) {
	s := newTestServer(t, &fakeRuns{})
	rec := get(t, s, "/api/v1/runs?limit=banana")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunByIDNotFound(t *testing.T) {
	s := newTestServer(t, &fakeRuns{})
	rec := get(t, s, "/api/v1/runs/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRunByID(t *testing.T) {
	s := newTestServer(t, &fakeRuns{runs: []*history.Run{{ID: "abc", Tool: "pslf_solve_case", Status: "error", ErrorKind: "StateNotLoaded"}}})
	rec := get(t, s, "/api/v1/runs/abc")
	require.Equal(t, http.StatusOK, rec.Code)

	var run history.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.Equal(t, "StateNotLoaded", run.ErrorKind)
}

func TestWorkspaces(t *testing.T) {
	s := newTestServer(t, &fakeRuns{})
	_, err := s.workspaces.Acquire(context.Background(), "andes_pf_kundur_deadbeef", nil)
	require.NoError(t, err)

	rec := get(t, s, "/api/v1/workspaces")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp WorkspacesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Workspaces, 1)
	assert.Equal(t, "andes_pf_kundur_deadbeef", resp.Workspaces[0].Key)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, &fakeRuns{})
	rec := get(t, s, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
}
