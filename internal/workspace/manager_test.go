package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilealdway/PowerMCP/internal/envelope"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewManagerRejectsEmptyBase(t *testing.T) {
	_, err := NewManager("  ")
	assert.Error(t, err)
}

func TestAcquireStagesInputs(t *testing.T) {
	tmp := t.TempDir()
	caseFile := writeFile(t, tmp, "caseA.raw", "bus data")

	m, err := NewManager(filepath.Join(tmp, "store"))
	require.NoError(t, err)

	ws, err := m.Acquire(context.Background(), "pf_caseA", []string{caseFile})
	require.NoError(t, err)

	assert.Equal(t, []string{"caseA.raw"}, ws.Inputs)
	staged, err := os.ReadFile(ws.InputPath("caseA.raw"))
	require.NoError(t, err)
	assert.Equal(t, "bus data", string(staged))
}

func TestAcquireMissingInputIsTagged(t *testing.T) {
	tmp := t.TempDir()
	m, err := NewManager(filepath.Join(tmp, "store"))
	require.NoError(t, err)

	_, err = m.Acquire(context.Background(), "pf_missing", []string{filepath.Join(tmp, "nope.raw")})

	var f *envelope.Failure
	require.True(t, errors.As(err, &f))
	assert.Equal(t, envelope.KindInputNotFound, f.Kind)
}

func TestAcquireReusesDirectory(t *testing.T) {
	tmp := t.TempDir()
	caseFile := writeFile(t, tmp, "caseA.raw", "v1")

	m, err := NewManager(filepath.Join(tmp, "store"))
	require.NoError(t, err)

	ws1, err := m.Acquire(context.Background(), "pf_caseA", []string{caseFile})
	require.NoError(t, err)

	// Engine output left in the workspace survives re-acquisition.
	writeFile(t, ws1.Dir, "results.csv", "p,q")

	require.NoError(t, os.WriteFile(caseFile, []byte("v2"), 0o644))
	ws2, err := m.Acquire(context.Background(), "pf_caseA", []string{caseFile})
	require.NoError(t, err)
	assert.Equal(t, ws1.Dir, ws2.Dir)

	staged, err := os.ReadFile(ws2.InputPath("caseA.raw"))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(staged))

	files, err := ws2.Files()
	require.NoError(t, err)
	assert.Contains(t, files, "results.csv")
}

func TestAcquireRejectsTraversalKeys(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", ".", "..", "a/b", `a\b`, "a/.."} {
		_, err := m.Acquire(context.Background(), key, nil)
		assert.Error(t, err, "key %q", key)
	}
}

func TestCleanupRemovesOnlyStale(t *testing.T) {
	base := t.TempDir()
	m, err := NewManager(base)
	require.NoError(t, err)

	_, err = m.Acquire(context.Background(), "old_run", nil)
	require.NoError(t, err)
	_, err = m.Acquire(context.Background(), "new_run", nil)
	require.NoError(t, err)

	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(base, "old_run"), past, past))

	report, err := m.Cleanup(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, report.DeletedDirs)

	_, err = m.Open(context.Background(), "old_run")
	assert.Error(t, err)
	_, err = m.Open(context.Background(), "new_run")
	assert.NoError(t, err)
}

func TestListWorkspaces(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	list, err := m.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = m.Acquire(context.Background(), "pf_a", nil)
	require.NoError(t, err)
	_, err = m.Acquire(context.Background(), "pf_b", nil)
	require.NoError(t, err)

	list, err = m.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
