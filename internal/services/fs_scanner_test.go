package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diskscope/internal/domain"
)

func drain(ch <-chan domain.ScanProgress) []domain.ScanProgress {
	var snapshots []domain.ScanProgress
	for snapshot := range ch {
		snapshots = append(snapshots, snapshot)
	}
	return snapshots
}

func TestCancelScan(t *testing.T) {
	root := fixture(t)
	scanner := NewFSScanner(zerolog.Nop())

	session, err := scanner.Begin(ScanRequest{RootPath: root})
	require.NoError(t, err)
	events, unsubscribe := session.Subscribe()
	defer unsubscribe()

	result := scanner.CancelScan(root)
	assert.True(t, result.Success)
	assert.Equal(t, domain.ScanCancelled, result.Progress.Status)

	tree, err := session.Run(context.Background())
	assert.Nil(t, tree)
	assert.ErrorIs(t, err, ErrScanCancelled)

	snapshots := drain(events)
	require.NotEmpty(t, snapshots)
	assert.Equal(t, domain.ScanCancelled, snapshots[len(snapshots)-1].Status)
	assert.Nil(t, scanner.Session(root))

	again := scanner.CancelScan(root)
	assert.True(t, again.Success)
	assert.Equal(t, domain.ScanCancelled, again.Progress.Status)
	assert.Equal(t, root, again.Progress.CurrentPath)
	assert.False(t, again.Progress.StartTime.IsZero())
}

func TestCancelDuringWalk(t *testing.T) {
	scanner := NewFSScanner(zerolog.Nop())
	scanner.walk = func(session *ScanSession) *domain.FileSystemNode {
		scanner.CancelScan(session.Root)
		return &domain.FileSystemNode{Path: session.Root, Kind: domain.NodeDir}
	}

	_, err := scanner.StartScan(context.Background(), ScanRequest{RootPath: t.TempDir()})
	assert.True(t, errors.Is(err, ErrScanCancelled))
}

func TestContextCancelStopsScan(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scanner := NewFSScanner(zerolog.Nop())
	scanner.walk = func(session *ScanSession) *domain.FileSystemNode {
		cancel()
		require.Eventually(t, session.Cancelled, time.Second, time.Millisecond)
		return &domain.FileSystemNode{Path: session.Root, Kind: domain.NodeDir}
	}

	root := t.TempDir()
	_, err := scanner.StartScan(ctx, ScanRequest{RootPath: root})
	assert.ErrorIs(t, err, ErrScanCancelled)
	assert.Equal(t, domain.ScanIdle, scanner.Progress(root).Status)
}

func TestSameRootIsRejectedWhileLive(t *testing.T) {
	root := t.TempDir()
	scanner := NewFSScanner(zerolog.Nop())

	first, err := scanner.Begin(ScanRequest{RootPath: root})
	require.NoError(t, err)

	_, err = scanner.Begin(ScanRequest{RootPath: root + "/."})
	assert.ErrorIs(t, err, ErrScanInProgress)

	other, err := scanner.Begin(ScanRequest{RootPath: t.TempDir()})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)

	_, err = first.Run(context.Background())
	require.NoError(t, err)
	_, err = other.Run(context.Background())
	require.NoError(t, err)

	again, err := scanner.Begin(ScanRequest{RootPath: root})
	require.NoError(t, err)
	_, err = again.Run(context.Background())
	require.NoError(t, err)
}

func TestRunOnlyOnce(t *testing.T) {
	scanner := NewFSScanner(zerolog.Nop())
	session, err := scanner.Begin(ScanRequest{RootPath: t.TempDir()})
	require.NoError(t, err)

	_, err = session.Run(context.Background())
	require.NoError(t, err)
	_, err = session.Run(context.Background())
	assert.Error(t, err)

	tree, err := session.Wait(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tree)
}

func TestPanicBecomesErrorStatus(t *testing.T) {
	scanner := NewFSScanner(zerolog.Nop())
	scanner.walk = func(*ScanSession) *domain.FileSystemNode {
		panic("boom")
	}
	root := t.TempDir()
	session, err := scanner.Begin(ScanRequest{RootPath: root})
	require.NoError(t, err)
	events, unsubscribe := session.Subscribe()
	defer unsubscribe()

	_, err = session.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	snapshots := drain(events)
	last := snapshots[len(snapshots)-1]
	assert.Equal(t, domain.ScanError, last.Status)
	assert.Contains(t, last.Error, "boom")
	assert.Nil(t, scanner.Session(root))
}

func TestProgressStreamEndsAfterCompletion(t *testing.T) {
	root := fixture(t)
	scanner := NewFSScanner(zerolog.Nop())
	session, err := scanner.Begin(ScanRequest{RootPath: root})
	require.NoError(t, err)
	events, unsubscribe := session.Subscribe()
	defer unsubscribe()

	_, err = session.Run(context.Background())
	require.NoError(t, err)

	snapshots := drain(events)
	require.GreaterOrEqual(t, len(snapshots), 3)
	assert.Equal(t, domain.ScanIdle, snapshots[0].Status)
	assert.Equal(t, domain.ScanScanning, snapshots[1].Status)
	last := snapshots[len(snapshots)-1]
	assert.Equal(t, domain.ScanCompleted, last.Status)
	assert.Equal(t, int64(7), last.ScannedCount)

	// subscribing after the end yields the final snapshot and a closed stream
	late := drain(func() <-chan domain.ScanProgress { ch, _ := session.Subscribe(); return ch }())
	require.Len(t, late, 1)
	assert.Equal(t, domain.ScanCompleted, late[0].Status)
}

func TestMockScanner(t *testing.T) {
	tree := &domain.FileSystemNode{
		Path: "/data", Kind: domain.NodeDir, Size: 3,
		Children: []*domain.FileSystemNode{{Path: "/data/a", Kind: domain.NodeFile, Size: 3}},
	}
	scanner := NewMockScanner(tree)
	session, err := scanner.Begin(ScanRequest{RootPath: "/data"})
	require.NoError(t, err)

	got, err := session.Run(context.Background())
	require.NoError(t, err)
	assert.Same(t, tree, got)
	assert.Equal(t, int64(1), session.Progress().ScannedCount)
	assert.Equal(t, int64(3), session.Progress().ScannedSize)
}
