// Package workspace manages per-invocation isolated working directories.
//
// Every operation that touches the filesystem runs inside a workspace: a
// uniquely keyed directory under the store root holding copies of its input
// artifacts plus whatever the engine produces. Nothing is deleted implicitly;
// artifacts persist for post-mortem inspection and are pruned only by the
// explicit gc command.
package workspace

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/smilealdway/PowerMCP/internal/envelope"
)

// Workspace describes one acquired directory.
type Workspace struct {
	Key       string
	Dir       string
	CreatedAt time.Time

	// Inputs holds the base names of artifacts copied in at acquire time.
	Inputs []string
}

// CleanupReport summarizes a gc run.
type CleanupReport struct {
	DeletedDirs int
}

// Manager is a filesystem-backed workspace manager rooted at a store
// directory.
type Manager struct {
	baseDir string
	now     func() time.Time
}

// NewManager creates a Manager rooted at baseDir.
func NewManager(baseDir string) (*Manager, error) {
	trimmed := strings.TrimSpace(baseDir)
	if trimmed == "" {
		return nil, fmt.Errorf("workspace base directory is empty")
	}
	return &Manager{
		baseDir: filepath.Clean(trimmed),
		now:     time.Now,
	}, nil
}

// BaseDir returns the store root.
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// Acquire ensures the directory for key exists and copies the referenced
// input artifacts into it. Re-acquiring an existing key reuses the directory;
// inputs are re-copied so the workspace reflects the current run.
func (m *Manager) Acquire(ctx context.Context, key string, inputs []string) (Workspace, error) {
	if err := ctx.Err(); err != nil {
		return Workspace{}, err
	}
	if err := validateKey(key); err != nil {
		return Workspace{}, err
	}

	dir := filepath.Join(m.baseDir, key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Workspace{}, fmt.Errorf("create workspace %q: %w", key, err)
	}

	ws := Workspace{Key: key, Dir: dir, CreatedAt: m.now()}
	for _, src := range inputs {
		abs, err := filepath.Abs(src)
		if err != nil {
			return ws, fmt.Errorf("resolve input path %q: %w", src, err)
		}
		if _, err := os.Stat(abs); err != nil {
			return ws, envelope.InputNotFound(abs)
		}
		name := filepath.Base(abs)
		if err := copyFile(abs, filepath.Join(dir, name)); err != nil {
			return ws, fmt.Errorf("stage input %q: %w", name, err)
		}
		ws.Inputs = append(ws.Inputs, name)
	}

	return ws, nil
}

// Open resolves an existing workspace by key.
func (m *Manager) Open(ctx context.Context, key string) (Workspace, error) {
	if err := ctx.Err(); err != nil {
		return Workspace{}, err
	}
	if err := validateKey(key); err != nil {
		return Workspace{}, err
	}

	dir := filepath.Join(m.baseDir, key)
	info, err := os.Stat(dir)
	if err != nil {
		return Workspace{}, fmt.Errorf("open workspace %q: %w", key, err)
	}
	if !info.IsDir() {
		return Workspace{}, fmt.Errorf("workspace path for %q is not a directory", key)
	}
	return Workspace{Key: key, Dir: dir, CreatedAt: info.ModTime()}, nil
}

// List returns all workspaces under the store root, newest first left to the
// caller to sort.
func (m *Manager) List(ctx context.Context) ([]Workspace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(m.baseDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read workspace base directory: %w", err)
	}

	var out []Workspace
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("read workspace entry info %q: %w", entry.Name(), err)
		}
		out = append(out, Workspace{
			Key:       entry.Name(),
			Dir:       filepath.Join(m.baseDir, entry.Name()),
			CreatedAt: info.ModTime(),
		})
	}
	return out, nil
}

// Files returns the file names currently present in the workspace.
func (w Workspace) Files() ([]string, error) {
	entries, err := os.ReadDir(w.Dir)
	if err != nil {
		return nil, fmt.Errorf("read workspace %q: %w", w.Key, err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// InputPath returns the in-workspace path of a staged input by base name.
func (w Workspace) InputPath(name string) string {
	return filepath.Join(w.Dir, filepath.Base(name))
}

// Cleanup removes workspaces older than olderThan based on directory
// modification time.
func (m *Manager) Cleanup(ctx context.Context, olderThan time.Duration) (CleanupReport, error) {
	if err := ctx.Err(); err != nil {
		return CleanupReport{}, err
	}
	if olderThan <= 0 {
		return CleanupReport{}, fmt.Errorf("olderThan must be positive")
	}

	entries, err := os.ReadDir(m.baseDir)
	if os.IsNotExist(err) {
		return CleanupReport{}, nil
	}
	if err != nil {
		return CleanupReport{}, fmt.Errorf("read workspace base directory: %w", err)
	}

	cutoff := m.now().Add(-olderThan)
	report := CleanupReport{}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if !entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return report, fmt.Errorf("read workspace entry info %q: %w", entry.Name(), err)
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		if err := os.RemoveAll(filepath.Join(m.baseDir, entry.Name())); err != nil {
			return report, fmt.Errorf("remove workspace %q: %w", entry.Name(), err)
		}
		report.DeletedDirs++
	}

	return report, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func validateKey(key string) error {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return fmt.Errorf("workspace key is empty")
	}
	if trimmed == "." || trimmed == ".." {
		return fmt.Errorf("workspace key %q is invalid", key)
	}
	if strings.Contains(trimmed, "/") || strings.Contains(trimmed, `\`) {
		return fmt.Errorf("workspace key %q must not contain path separators", key)
	}
	if filepath.Clean(trimmed) != trimmed {
		return fmt.Errorf("workspace key %q is invalid", key)
	}
	return nil
}
