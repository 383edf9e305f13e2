package watch

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smilealdway/PowerMCP/internal/history"
)

const runTableLimit = 25

// Model is the main BubbleTea model for the watch TUI.
type Model struct {
	apiURL string

	width  int
	height int

	health struct {
		Status        string
		UptimeSeconds int64
		SessionLoaded bool
		SessionEngine string
		Workspaces    int
		Connected     bool
		LastCheck     time.Time
	}

	runs     []*history.Run
	runTable table.Model

	theme     Theme
	lastError string
}

// New creates a watch TUI model polling the given status API base URL.
func New(apiURL string) *Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ST", Width: 2},
			{Title: "Time", Width: 8},
			{Title: "Tool", Width: 32},
			{Title: "Engine", Width: 10},
			{Title: "Duration", Width: 10},
			{Title: "Message", Width: 40},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return &Model{
		apiURL:   apiURL,
		runTable: t,
		theme:    NewDefaultTheme(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return fetchHealth(m.apiURL) },
		func() tea.Msg { return fetchRuns(m.apiURL, runTableLimit) },
		tea.Tick(3*time.Second, func(t time.Time) tea.Msg { return tickMsg(t) }),
		tea.EnterAltScreen,
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, func() tea.Msg { return fetchRuns(m.apiURL, runTableLimit) }
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.runTable.SetWidth(m.width - 6)

	case tickMsg:
		// One poll loop drives both endpoints.
		return m, tea.Batch(
			func() tea.Msg { return fetchRuns(m.apiURL, runTableLimit) },
			tea.Tick(3*time.Second, func(t time.Time) tea.Msg { return tickMsg(t) }),
		)

	case healthMsg:
		m.health.Status = msg.Status
		m.health.UptimeSeconds = msg.UptimeSeconds
		m.health.SessionLoaded = msg.SessionLoaded
		m.health.SessionEngine = msg.SessionEngine
		m.health.Workspaces = msg.Workspaces
		m.health.Connected = true
		m.health.LastCheck = time.Now()
		m.lastError = ""

		return m, tea.Tick(5*time.Second, func(t time.Time) tea.Msg {
			return fetchHealth(m.apiURL)
		})

	case runsMsg:
		m.runs = msg
		m.updateTable()
		m.lastError = ""
		return m, nil

	case errMsg:
		m.health.Connected = false
		m.lastError = msg.Error()
		// Retry health in 5s; the run poll loop keeps ticking on its own.
		return m, tea.Tick(5*time.Second, func(t time.Time) tea.Msg {
			return fetchHealth(m.apiURL)
		})
	}

	m.runTable, cmd = m.runTable.Update(msg)
	return m, cmd
}

func (m *Model) updateTable() {
	rows := make([]table.Row, 0, len(m.runs))
	for _, run := range m.runs {
		rows = append(rows, m.runToRow(run))
	}
	m.runTable.SetRows(rows)
}

func (m *Model) runToRow(run *history.Run) table.Row {
	statusSym := m.theme.StatusOK.Render("●")
	if run.Status != "success" {
		statusSym = m.theme.StatusFailed.Render("∅")
	}

	message := run.Message
	if run.Status != "success" && run.ErrorKind != "" {
		message = fmt.Sprintf("[%s] %s", run.ErrorKind, run.Message)
	}

	return table.Row{
		statusSym,
		run.StartedAt.Local().Format("15:04:05"),
		run.Tool,
		run.Engine,
		run.Duration.Round(time.Millisecond).String(),
		message,
	}
}

func (m Model) View() string {
	if m.width == 0 {
		return "Connecting to gateway..."
	}

	header := m.renderHeader()
	runs := m.theme.Border.Width(m.width - 4).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.theme.Title.Render("Recent Runs"),
			m.runTable.View(),
		),
	)

	var errBar string
	if m.lastError != "" {
		errBar = m.theme.StatusFailed.Render(fmt.Sprintf(" ⚠ %s", m.lastError))
	}

	help := m.theme.Dim.Render(" [q] Quit • [r] Refresh • [↑/↓] Scroll Runs")

	parts := []string{header, runs}
	if errBar != "" {
		parts = append(parts, errBar)
	}
	parts = append(parts, help)

	return lipgloss.NewStyle().Margin(1, 2).Render(
		lipgloss.JoinVertical(lipgloss.Left, parts...),
	)
}

func (m Model) renderHeader() string {
	status := m.theme.StatusOK.Render("RUNNING")
	if !m.health.Connected {
		status = m.theme.StatusFailed.Render("UNREACHABLE")
	} else if m.health.Status != "ok" && m.health.Status != "" {
		status = m.theme.StatusFailed.Render("DEGRADED")
	}

	session := m.theme.Dim.Render("idle")
	if m.health.SessionLoaded {
		session = m.theme.Highlight.Render(m.health.SessionEngine)
	}

	uptime := time.Duration(m.health.UptimeSeconds) * time.Second

	items := []string{
		fmt.Sprintf("Status: %s", status),
		fmt.Sprintf("Uptime: %s", uptime.String()),
		fmt.Sprintf("Session: %s", session),
		fmt.Sprintf("Workspaces: %d", m.health.Workspaces),
	}

	cell := (m.width - 4) / len(items)
	cells := make([]string, len(items))
	for i, it := range items {
		cells[i] = lipgloss.NewStyle().Width(cell).Render(it)
	}

	return m.theme.Border.Width(m.width - 4).Render(
		lipgloss.JoinHorizontal(lipgloss.Top, cells...),
	)
}
