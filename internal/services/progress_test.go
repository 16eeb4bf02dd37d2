package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diskscope/internal/domain"
)

func TestProgressReporterThrottles(t *testing.T) {
	reporter := newProgressReporter("/data")
	events, _ := reporter.subscribe()

	reporter.start(time.Unix(100, 0))
	for i := 0; i < 250; i++ {
		reporter.visit("/data/file")
		reporter.addBytes(2)
	}
	final := reporter.finish(domain.ScanCompleted, "")

	snapshots := drain(events)
	require.Len(t, snapshots, 5)
	assert.Equal(t, domain.ScanIdle, snapshots[0].Status)
	assert.Equal(t, domain.ScanScanning, snapshots[1].Status)
	assert.Equal(t, time.Unix(100, 0), snapshots[1].StartTime)
	assert.Equal(t, int64(100), snapshots[2].ScannedCount)
	assert.Equal(t, int64(200), snapshots[3].ScannedCount)
	assert.Equal(t, domain.ScanCompleted, snapshots[4].Status)
	assert.Equal(t, int64(250), final.ScannedCount)
	assert.Equal(t, int64(500), final.ScannedSize)
}

func TestProgressReporterKeepsCancellation(t *testing.T) {
	reporter := newProgressReporter("/data")
	events, _ := reporter.subscribe()

	reporter.start(time.Now())
	assert.True(t, reporter.cancel())
	assert.False(t, reporter.cancel())
	for i := 0; i < 100; i++ {
		reporter.visit("/data/late")
	}
	final := reporter.finish(domain.ScanCompleted, "")

	assert.Equal(t, domain.ScanCancelled, final.Status)
	snapshots := drain(events)
	assert.Equal(t, domain.ScanCancelled, snapshots[len(snapshots)-1].Status)
	for _, snapshot := range snapshots {
		assert.NotEqual(t, domain.ScanCompleted, snapshot.Status)
	}
}

func TestBroadcasterNeverBlocks(t *testing.T) {
	var b broadcaster[int]
	ch, unsubscribe := b.subscribe()

	for i := 0; i < subscriberBuffer*2; i++ {
		b.publish(i)
	}
	b.publishLatest(-1)

	unsubscribe()
	unsubscribe()
	b.publish(99)
	var got []int
	for msg := range ch {
		got = append(got, msg)
	}
	require.Len(t, got, subscriberBuffer)
	assert.Equal(t, 1, got[0])
	assert.Equal(t, -1, got[len(got)-1])
}

func TestBroadcasterClose(t *testing.T) {
	var b broadcaster[string]
	first, _ := b.subscribe()
	b.publish("hello")
	b.close()

	var got []string
	for msg := range first {
		got = append(got, msg)
	}
	assert.Equal(t, []string{"hello"}, got)

	late, unsubscribe := b.subscribe("seed")
	unsubscribe()
	msg, ok := <-late
	assert.True(t, ok)
	assert.Equal(t, "seed", msg)
	_, ok = <-late
	assert.False(t, ok)
}
