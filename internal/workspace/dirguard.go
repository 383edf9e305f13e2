package workspace

import (
	"os"

	"github.com/smilealdway/PowerMCP/internal/envelope"
)

// DirGuard is a scoped switch of the process working directory. Most engines
// take explicit paths and never need it; it exists for the ones that resolve
// everything relative to the ambient directory.
//
// The working directory is process-wide state, so a guard may only be held
// under the gateway lock, and Release must run on every exit path. A failed
// restore corrupts relative-path resolution for every subsequent call in the
// process, which is why it surfaces as WorkspaceRestoreFailure instead of an
// ordinary error.
type DirGuard struct {
	prev     string
	dir      string
	released bool
}

// EnterDir records the current working directory and switches into dir.
func EnterDir(dir string) (*DirGuard, error) {
	prev, err := os.Getwd()
	if err != nil {
		return nil, envelope.Fail(envelope.KindWorkspaceRestoreFailure,
			"cannot record working directory before switch: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		return nil, envelope.Fail(envelope.KindUnknownEngineError,
			"switch into workspace %s: %v", dir, err)
	}
	return &DirGuard{prev: prev, dir: dir}, nil
}

// Release restores the previous working directory. It is idempotent. A
// non-nil return is a WorkspaceRestoreFailure and means the process isolation
// invariant is broken.
func (g *DirGuard) Release() error {
	if g == nil || g.released {
		return nil
	}
	g.released = true
	if err := os.Chdir(g.prev); err != nil {
		return envelope.Fail(envelope.KindWorkspaceRestoreFailure,
			"restore working directory to %s: %v", g.prev, err).
			With("workspace_dir", g.dir)
	}
	return nil
}

// Prev returns the directory the guard will restore to.
func (g *DirGuard) Prev() string {
	return g.prev
}
