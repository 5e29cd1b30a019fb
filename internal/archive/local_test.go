package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalArchiveRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a, err := NewLocalArchive(dir)
	require.NoError(t, err)

	uri, err := a.Archive(context.Background(), "2026-08-29/run.json", []byte(`{"fetched":4}`))
	require.NoError(t, err)
	require.Equal(t, "file://"+filepath.Join(dir, "2026-08-29", "run.json"), uri)

	written, err := os.ReadFile(filepath.Join(dir, "2026-08-29", "run.json"))
	require.NoError(t, err)
	require.JSONEq(t, `{"fetched":4}`, string(written))
}

func TestLocalArchiveCreatesBaseDir(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "archive")
	_, err := NewLocalArchive(dir)
	require.NoError(t, err)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestLocalArchiveRejectsTraversal(t *testing.T) {
	t.Parallel()

	a, err := NewLocalArchive(t.TempDir())
	require.NoError(t, err)
	_, err = a.Archive(context.Background(), "../escape.json", []byte("{}"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "escapes base directory")
}

func TestLocalArchiveRejectsEmptyPath(t *testing.T) {
	t.Parallel()

	a, err := NewLocalArchive(t.TempDir())
	require.NoError(t, err)
	_, err = a.Archive(context.Background(), "  ", []byte("{}"))
	require.Error(t, err)
}

func TestMemoryArchiveCopiesPayload(t *testing.T) {
	t.Parallel()

	a := NewMemoryArchive()
	payload := []byte("content")
	uri, err := a.Archive(context.Background(), "p/raw.json", payload)
	require.NoError(t, err)
	require.Equal(t, "memory://p/raw.json", uri)

	payload[0] = 'C'
	stored, ok := a.Get("p/raw.json")
	require.True(t, ok)
	require.Equal(t, "content", string(stored))
}
