package watch

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/smilealdway/PowerMCP/internal/history"
)

// --- Message types ---

type healthMsg struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	SessionLoaded bool   `json:"session_loaded"`
	SessionEngine string `json:"session_engine"`
	Workspaces    int    `json:"workspaces"`
}

type runsMsg []*history.Run

type tickMsg time.Time

type errMsg error

// --- Commands ---

// fetchHealth queries the /healthz endpoint.
func fetchHealth(apiURL string) tea.Msg {
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(apiURL + "/healthz")
	if err != nil {
		return errMsg(err)
	}
	defer resp.Body.Close()

	var h healthMsg
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return errMsg(err)
	}
	return h
}

// fetchRuns queries the run log, newest first.
func fetchRuns(apiURL string, limit int) tea.Msg {
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(apiURL + "/api/v1/runs?limit=" + strconv.Itoa(limit))
	if err != nil {
		return errMsg(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errMsg(fmt.Errorf("runs endpoint returned %s", resp.Status))
	}

	var body struct {
		Runs []*history.Run `json:"runs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return errMsg(err)
	}
	return runsMsg(body.Runs)
}
