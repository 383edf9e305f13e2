package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/smilealdway/PowerMCP/internal/api"
	"github.com/smilealdway/PowerMCP/internal/config"
	"github.com/smilealdway/PowerMCP/internal/doctor"
	"github.com/smilealdway/PowerMCP/internal/gateway"
	"github.com/smilealdway/PowerMCP/internal/history"
	"github.com/smilealdway/PowerMCP/internal/lock"
	"github.com/smilealdway/PowerMCP/internal/log"
	"github.com/smilealdway/PowerMCP/internal/mcpserver"
	"github.com/smilealdway/PowerMCP/internal/metrics"
	"github.com/smilealdway/PowerMCP/internal/session"
	"github.com/smilealdway/PowerMCP/internal/storage"
	"github.com/smilealdway/PowerMCP/internal/tui/watch"
	"github.com/smilealdway/PowerMCP/internal/workspace"
)

var (
	version   = "0.1.0-dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

const defaultConfigPath = "powermcp.yaml"

func main() {
	os.Exit(runCLI(os.Args[1:]))
}

func runCLI(cliArgs []string) int {
	if len(cliArgs) < 1 {
		printUsage()
		return 1
	}

	cmd := cliArgs[0]
	args := cliArgs[1:]

	switch cmd {
	case "serve":
		if hasHelpFlag(args) {
			printServeHelp()
			return 0
		}
		return runServe(args)
	case "doctor":
		if hasHelpFlag(args) {
			printDoctorHelp()
			return 0
		}
		return runDoctor(args)
	case "workspace":
		return runWorkspaceNoun(args)
	case "runs":
		if hasHelpFlag(args) {
			printRunsHelp()
			return 0
		}
		return runRuns(args)
	case "watch":
		if hasHelpFlag(args) {
			printWatchHelp()
			return 0
		}
		return runWatch(args)
	case "version", "--version":
		return runVersion(args)
	case "help", "--help", "-h":
		printUsage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		return 1
	}
}

// --- serve ---

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "Path to configuration file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log.Setup(cfg.Service.LogLevel)
	logger := log.WithComponent("main")
	logger.Info("powermcp starting", "version", version, "config", *configPath)

	pidLock, err := lock.Acquire(cfg.Store.LockPath)
	if err != nil {
		logger.Error("failed to acquire PID lock (another instance may be running)",
			"path", cfg.Store.LockPath, "error", err)
		return 1
	}
	defer pidLock.Release()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := storage.OpenSQLite(ctx, cfg.Store.DBPath)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.Store.DBPath, "error", err)
		return 1
	}
	defer db.Close()
	if err := storage.BootstrapSQLite(ctx, db); err != nil {
		logger.Error("failed to bootstrap database", "error", err)
		return 1
	}

	runs := history.NewStore(db)
	if cfg.Store.RunRetention > 0 {
		if n, err := runs.Prune(ctx, cfg.Store.RunRetention); err != nil {
			logger.Warn("run log prune failed", "error", err)
		} else if n > 0 {
			logger.Info("pruned run log", "deleted", n)
		}
	}

	wsManager, err := workspace.NewManager(cfg.Store.Dir)
	if err != nil {
		logger.Error("failed to initialize workspace store", "dir", cfg.Store.Dir, "error", err)
		return 1
	}

	m := metrics.New()
	sessions := session.NewStore()
	gw := gateway.New(wsManager, sessions,
		gateway.WithRecorder(runs),
		gateway.WithObserver(m),
	)

	engines, err := mcpserver.BuildEngines(cfg, m.InstrumentCaller)
	if err != nil {
		logger.Error("failed to build engines", "error", err)
		return 1
	}

	srv, err := mcpserver.NewServer(cfg.Service.Name, version, gw, engines)
	if err != nil {
		logger.Error("failed to build MCP server", "error", err)
		return 1
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	errCh := make(chan error, 1)
	if cfg.API.Enabled {
		apiServer := api.New(api.Config{Listen: cfg.API.Listen}, runs, wsManager, sessions, m.Handler())
		go func() {
			if err := apiServer.Start(ctx); err != nil && err != context.Canceled {
				errCh <- fmt.Errorf("api: %w", err)
			}
		}()
		logger.Info("status API enabled", "listen", cfg.API.Listen)
	}

	go func() {
		errCh <- srv.Run(ctx)
	}()

	select {
	case err := <-errCh:
		if err != nil && err != context.Canceled {
			logger.Error("component failed", "error", err)
			return 1
		}
	case <-ctx.Done():
	}

	logger.Info("powermcp stopped")
	return 0
}

// --- doctor ---

func runDoctor(args []string) int {
	fs := flag.NewFlagSet("doctor", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "Path to configuration file")
	jsonOut := fs.Bool("json", false, "Output in structured JSON format")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	result := doctor.New(cfg).Validate()

	if *jsonOut {
		out, err := doctor.FormatJSON(result)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render JSON: %v\n", err)
			return 1
		}
		fmt.Println(out)
	} else {
		fmt.Print(doctor.FormatHuman(result))
	}

	if !result.Valid {
		return 1
	}
	return 0
}

// --- workspace ---

func runWorkspaceNoun(args []string) int {
	if len(args) < 1 || isHelpToken(args[0]) {
		printWorkspaceNounHelp()
		if len(args) < 1 {
			return 1
		}
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "gc":
		if hasHelpFlag(actionArgs) {
			printWorkspaceGCHelp()
			return 0
		}
		return runWorkspaceGC(actionArgs)
	case "list":
		if hasHelpFlag(actionArgs) {
			printWorkspaceListHelp()
			return 0
		}
		return runWorkspaceList(actionArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown workspace action: %s\n", action)
		return 1
	}
}

func runWorkspaceGC(args []string) int {
	fs := flag.NewFlagSet("gc", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "Path to configuration file")
	olderThan := fs.Duration("older-than", 7*24*time.Hour, "Delete workspaces idle longer than this")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	manager, err := workspace.NewManager(cfg.Store.Dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open workspace store: %v\n", err)
		return 1
	}

	report, err := manager.Cleanup(context.Background(), *olderThan)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cleanup failed: %v\n", err)
		return 1
	}

	fmt.Printf("Deleted %d workspace(s) idle longer than %s\n", report.DeletedDirs, *olderThan)
	return 0
}

func runWorkspaceList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "Path to configuration file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	manager, err := workspace.NewManager(cfg.Store.Dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open workspace store: %v\n", err)
		return 1
	}

	workspaces, err := manager.List(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "List failed: %v\n", err)
		return 1
	}

	if len(workspaces) == 0 {
		fmt.Println("No workspaces.")
		return 0
	}
	for _, ws := range workspaces {
		fmt.Printf("%s\t%s\n", ws.Key, ws.Dir)
	}
	return 0
}

// --- runs ---

func runRuns(args []string) int {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "Path to configuration file")
	limit := fs.Int("limit", 20, "Maximum runs to show")
	jsonOut := fs.Bool("json", false, "Output in structured JSON format")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	ctx := context.Background()
	db, err := storage.OpenSQLite(ctx, cfg.Store.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		return 1
	}
	defer db.Close()
	if err := storage.BootstrapSQLite(ctx, db); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap database: %v\n", err)
		return 1
	}

	runs, err := history.NewStore(db).Recent(ctx, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read runs: %v\n", err)
		return 1
	}

	if *jsonOut {
		data, err := json.MarshalIndent(runs, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render JSON: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return 0
	}
	for _, run := range runs {
		status := run.Status
		if run.ErrorKind != "" {
			status = fmt.Sprintf("%s(%s)", run.Status, run.ErrorKind)
		}
		fmt.Printf("%s  %-9s  %-36s  %8s  %s\n",
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			status,
			run.Tool,
			run.Duration.Round(time.Millisecond),
			run.Message)
	}
	return 0
}

// --- watch ---

func runWatch(args []string) int {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	apiURL := fs.String("api-url", "http://127.0.0.1:8787", "Gateway status API URL")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	m := watch.New(strings.TrimRight(*apiURL, "/"))
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
		return 1
	}
	return 0
}

// --- version ---

type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

func runVersion(args []string) int {
	fs := flag.NewFlagSet("version", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "Output version metadata as JSON")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	info := currentVersionInfo()

	if *jsonOut {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render version JSON: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}

	fmt.Printf("powermcp %s\n", info.Version)
	fmt.Printf("commit: %s\n", info.Commit)
	fmt.Printf("built_at: %s\n", info.BuildTime)
	return 0
}

func currentVersionInfo() versionInfo {
	info := versionInfo{
		Version:   strings.TrimSpace(version),
		Commit:    "unknown",
		BuildTime: "unknown",
	}
	if info.Version == "" {
		info.Version = "0.0.0-dev"
	}

	commit := strings.TrimSpace(gitCommit)
	if commit == "" || commit == "unknown" {
		commit = strings.TrimSpace(readBuildSetting("vcs.revision"))
	}
	if commit != "" {
		if len(commit) > 12 {
			commit = commit[:12]
		}
		info.Commit = commit
	}

	builtAt := strings.TrimSpace(buildDate)
	if builtAt == "" || builtAt == "unknown" {
		builtAt = strings.TrimSpace(readBuildSetting("vcs.time"))
	}
	if t, err := time.Parse(time.RFC3339Nano, builtAt); err == nil {
		info.BuildTime = t.UTC().Format(time.RFC3339)
	}

	return info
}

func readBuildSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == key {
			return setting.Value
		}
	}
	return ""
}

// --- help ---

func isHelpToken(token string) bool {
	return token == "help" || token == "--help" || token == "-h"
}

func hasHelpFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			return true
		}
	}
	return false
}

func printUsage() {
	fmt.Print(`powermcp - MCP gateway for power system analysis engines

Usage:
  powermcp <command> [flags]

Commands:
  serve             Run the gateway (MCP over stdio) in the foreground
  doctor            Validate configuration and engine runtimes
  workspace gc      Delete idle workspaces from the store
  workspace list    Show workspaces in the store
  runs              Show recent invocations from the run log
  watch             Real-time run monitoring TUI (needs the status API)
  version           Show version information
  help              Show this help message

Use 'powermcp <command> --help' for command-specific flags.
`)
}

func printServeHelp() {
	fmt.Println("Usage: powermcp serve [--config PATH]")
	fmt.Println("Run the gateway in the foreground. Tools are served over MCP on")
	fmt.Println("stdio; the optional status API listens per the config.")
}

func printDoctorHelp() {
	fmt.Println("Usage: powermcp doctor [--config PATH] [--json]")
	fmt.Println("Validate configuration, store writability, and engine runtimes.")
	fmt.Println("")
	fmt.Println("Exit codes:")
	fmt.Println("  0  All required checks passed")
	fmt.Println("  1  One or more checks failed")
}

func printWorkspaceNounHelp() {
	fmt.Println("Usage: powermcp workspace <action>")
	fmt.Println("Actions: gc, list")
}

func printWorkspaceGCHelp() {
	fmt.Println("Usage: powermcp workspace gc [--config PATH] [--older-than DURATION]")
	fmt.Println("Delete workspaces whose contents have been idle longer than the cutoff.")
}

func printWorkspaceListHelp() {
	fmt.Println("Usage: powermcp workspace list [--config PATH]")
	fmt.Println("Show every workspace key and directory in the store.")
}

func printRunsHelp() {
	fmt.Println("Usage: powermcp runs [--config PATH] [--limit N] [--json]")
	fmt.Println("Show recent invocations from the run log, newest first.")
}

func printWatchHelp() {
	fmt.Println("Usage: powermcp watch [--api-url URL]")
	fmt.Println()
	fmt.Println("Real-time run monitoring TUI. Polls the status API of a running")
	fmt.Println("gateway; enable it with api.enabled in the config.")
	fmt.Println()
	fmt.Println("Keybindings:")
	fmt.Println("  q, Ctrl+C        Quit")
	fmt.Println("  r                Refresh runs now")
	fmt.Println("  ↑/↓              Scroll runs")
}
