package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diskscope/internal/domain"
)

func newTestActions(t *testing.T) (*FSActions, *HomeTrash) {
	t.Helper()
	trash := NewHomeTrash(filepath.Join(t.TempDir(), "Trash"))
	return NewFSActions(zerolog.Nop(), NewClassifier(), trash), trash
}

func TestDeleteIsolatesFailures(t *testing.T) {
	actions, trash := newTestActions(t)
	dir := t.TempDir()
	valid := filepath.Join(dir, "valid.bin")
	writeFile(t, valid, 42)
	invalid := filepath.Join(dir, "missing.bin")

	results, unsubscribe := actions.Subscribe()
	defer unsubscribe()

	result := actions.Delete(context.Background(), DeleteRequest{Paths: []string{valid, invalid}, UseTrash: true})

	assert.False(t, result.Success)
	assert.Equal(t, []string{valid}, result.DeletedPaths)
	assert.Equal(t, int64(42), result.FreedSize)
	require.Len(t, result.FailedPaths, 1)
	assert.Equal(t, invalid, result.FailedPaths[0].Path)
	assert.NotEmpty(t, result.FailedPaths[0].Reason)

	assert.NoFileExists(t, valid)
	assert.FileExists(t, filepath.Join(trash.Dir, "files", "valid.bin"))
	assert.FileExists(t, filepath.Join(trash.Dir, "info", "valid.bin.trashinfo"))

	published := <-results
	assert.Equal(t, result, published)
}

func TestDeleteDirectoryPermanently(t *testing.T) {
	actions, _ := newTestActions(t)
	dir := filepath.Join(t.TempDir(), "build")
	writeFile(t, filepath.Join(dir, "a"), 3)
	writeFile(t, filepath.Join(dir, "nested", "b"), 4)

	result := actions.Delete(context.Background(), DeleteRequest{Paths: []string{dir}})

	assert.True(t, result.Success)
	assert.Equal(t, int64(7), result.FreedSize)
	assert.Empty(t, result.FailedPaths)
	assert.NoDirExists(t, dir)
}

func TestDeleteRemovesLinkNotTarget(t *testing.T) {
	actions, _ := newTestActions(t)
	dir := t.TempDir()
	target := filepath.Join(dir, "target")
	writeFile(t, filepath.Join(target, "keep"), 8)
	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(target, link))

	result := actions.Delete(context.Background(), DeleteRequest{Paths: []string{link}})

	assert.True(t, result.Success)
	_, err := os.Lstat(link)
	assert.True(t, os.IsNotExist(err))
	assert.FileExists(t, filepath.Join(target, "keep"))
}

func TestDeleteSafeModeRefusesDangerousPaths(t *testing.T) {
	actions, _ := newTestActions(t)
	dir := t.TempDir()
	system := filepath.Join(dir, "Windows", "System32", "kernel32.dll")
	writeFile(t, system, 1)
	other := filepath.Join(dir, "notes.txt")
	writeFile(t, other, 2)

	result := actions.Delete(context.Background(), DeleteRequest{Paths: []string{system, other}, SafeMode: true})

	assert.False(t, result.Success)
	assert.Equal(t, []string{other}, result.DeletedPaths)
	require.Len(t, result.FailedPaths, 1)
	assert.Contains(t, result.FailedPaths[0].Reason, ErrProtectedPath.Error())
	assert.FileExists(t, system)
}

func TestDeleteStopsOnCancelledContext(t *testing.T) {
	actions, _ := newTestActions(t)
	file := filepath.Join(t.TempDir(), "file")
	writeFile(t, file, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := actions.Delete(ctx, DeleteRequest{Paths: []string{file}})
	assert.False(t, result.Success)
	assert.FileExists(t, file)
}

func TestPreview(t *testing.T) {
	actions, _ := newTestActions(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "tree", "a"), 10)
	writeFile(t, filepath.Join(dir, "tree", "sub", "b"), 20)
	single := filepath.Join(dir, "single")
	writeFile(t, single, 5)

	preview, err := actions.Preview(context.Background(), []string{filepath.Join(dir, "tree"), single, filepath.Join(dir, "gone")})
	require.NoError(t, err)
	assert.Equal(t, 3, preview.TotalFiles)
	assert.Equal(t, 2, preview.TotalDirs)
	assert.Equal(t, int64(35), preview.TotalBytes)
	assert.Len(t, preview.Samples, 3)
	assert.Len(t, preview.Warnings, 1)

	_, err = actions.Preview(context.Background(), nil)
	assert.Error(t, err)
}

func TestIsCriticalPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.True(t, isCriticalPath("/"))
	assert.True(t, isCriticalPath(home))
	assert.True(t, isCriticalPath("/usr/bin/env"))
	assert.True(t, isCriticalPath("/etc"))
	assert.False(t, isCriticalPath("/usrlocal"))
	assert.False(t, isCriticalPath(filepath.Join(t.TempDir(), "x")))
}

func TestMockActionsRecordsRequests(t *testing.T) {
	actions := NewMockActions()
	actions.Sizes["/a"] = 9
	result := actions.Delete(context.Background(), DeleteRequest{Paths: []string{"/a", "/b"}, UseTrash: true})

	assert.True(t, result.Success)
	assert.Equal(t, int64(9), result.FreedSize)
	require.Len(t, actions.Calls(), 1)
	assert.True(t, actions.Calls()[0].UseTrash)
	assert.Equal(t, []domain.FailedPath{}, result.FailedPaths)
}
