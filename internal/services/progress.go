package services

import (
	"sync"
	"time"

	"diskscope/internal/domain"
)

// progressBroadcastInterval is the number of visited entries between two
// progress snapshots.
const progressBroadcastInterval = 100

type progressReporter struct {
	mu       sync.Mutex
	snapshot domain.ScanProgress
	events   broadcaster[domain.ScanProgress]
}

func newProgressReporter(root string) *progressReporter {
	return &progressReporter{
		snapshot: domain.ScanProgress{
			Status:      domain.ScanIdle,
			CurrentPath: root,
		},
	}
}

func (reporter *progressReporter) subscribe() (<-chan domain.ScanProgress, func()) {
	reporter.mu.Lock()
	defer reporter.mu.Unlock()
	return reporter.events.subscribe(reporter.snapshot)
}

func (reporter *progressReporter) current() domain.ScanProgress {
	reporter.mu.Lock()
	defer reporter.mu.Unlock()
	return reporter.snapshot
}

func (reporter *progressReporter) start(now time.Time) {
	reporter.mu.Lock()
	defer reporter.mu.Unlock()
	if reporter.snapshot.Status.Terminal() {
		return
	}
	reporter.snapshot.Status = domain.ScanScanning
	reporter.snapshot.StartTime = now
	reporter.events.publishLatest(reporter.snapshot)
}

func (reporter *progressReporter) visit(path string) {
	reporter.mu.Lock()
	defer reporter.mu.Unlock()
	reporter.snapshot.ScannedCount++
	reporter.snapshot.CurrentPath = path
	if reporter.snapshot.Status.Terminal() {
		return
	}
	if reporter.snapshot.ScannedCount%progressBroadcastInterval == 0 {
		reporter.events.publish(reporter.snapshot)
	}
}

func (reporter *progressReporter) addBytes(size int64) {
	reporter.mu.Lock()
	defer reporter.mu.Unlock()
	reporter.snapshot.ScannedSize += size
}

// cancel moves a live scan to the cancelled state. It reports false when the
// scan had already reached a terminal state.
func (reporter *progressReporter) cancel() bool {
	reporter.mu.Lock()
	defer reporter.mu.Unlock()
	if reporter.snapshot.Status.Terminal() {
		return false
	}
	reporter.snapshot.Status = domain.ScanCancelled
	reporter.events.publishLatest(reporter.snapshot)
	return true
}

// finish records the terminal status, keeping an earlier cancellation, and
// closes every subscription.
func (reporter *progressReporter) finish(status domain.ScanStatus, message string) domain.ScanProgress {
	reporter.mu.Lock()
	defer reporter.mu.Unlock()
	if !reporter.snapshot.Status.Terminal() {
		reporter.snapshot.Status = status
		reporter.snapshot.Error = message
		reporter.events.publishLatest(reporter.snapshot)
	}
	reporter.events.close()
	return reporter.snapshot
}
