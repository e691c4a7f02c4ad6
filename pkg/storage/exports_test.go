package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilename(t *testing.T) {
	now := time.Date(2024, 3, 1, 8, 0, 5, 0, time.UTC)
	assert.Equal(t, "students-20240301-080005.csv", Filename("students", ".csv", now))
	assert.Equal(t, "risk-alerts-20240301-080005.pdf", Filename("Risk Alerts", ".pdf", now))
	assert.Equal(t, "export-20240301-080005.txt", Filename("", ".txt", now))
}

func TestSaveAndCleanup(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	store, err := NewExportStore(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())

	path, err := store.Save("a.csv", strings.NewReader("id\n1\n"))
	require.NoError(t, err)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "id\n1\n", string(content))

	_, err = store.Save("nested/b.csv", strings.NewReader("x"))
	require.NoError(t, err)

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))

	deleted, err := store.CleanupOlderThan(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.csv"}, deleted)
	_, err = os.Stat(filepath.Join(dir, "nested", "b.csv"))
	assert.NoError(t, err)
}
