package services

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diskscope/internal/domain"
)

func TestFileDetails(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "Report.TXT")
	writeFile(t, file, 11)

	details, err := FileDetails(file)
	require.NoError(t, err)
	assert.Equal(t, "Report.TXT", details.Name)
	assert.Equal(t, file, details.Path)
	assert.Equal(t, int64(11), details.Size)
	assert.Equal(t, domain.NodeFile, details.Kind)
	assert.Equal(t, "txt", details.Extension)
	assert.False(t, details.ModifiedAt.IsZero())
	assert.False(t, details.CreatedAt.IsZero())
	assert.False(t, details.AccessedAt.IsZero())
	assert.False(t, details.IsHidden)
	assert.False(t, details.IsSystem)

	details, err = FileDetails(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.NodeDir, details.Kind)
	assert.Empty(t, details.Extension)

	_, err = FileDetails(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestFileDetailsFlags(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("hidden and read-only come from file attributes on windows")
	}
	dir := t.TempDir()
	hidden := filepath.Join(dir, ".profile")
	writeFile(t, hidden, 1)

	details, err := FileDetails(hidden)
	require.NoError(t, err)
	assert.True(t, details.IsHidden)
	assert.Empty(t, details.Extension)

	if os.Geteuid() == 0 {
		return
	}
	locked := filepath.Join(dir, "locked")
	writeFile(t, locked, 1)
	require.NoError(t, os.Chmod(locked, 0o444))
	details, err = FileDetails(locked)
	require.NoError(t, err)
	assert.True(t, details.IsReadOnly)
}
