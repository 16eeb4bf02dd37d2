package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"diskscope/internal/domain"
)

// FSScanner coordinates scans. Every live scan is a ScanSession keyed by its
// cleaned root; a root has at most one live session at a time.
type FSScanner struct {
	mu       sync.Mutex
	sessions map[string]*ScanSession
	log      zerolog.Logger
	now      func() time.Time
	walk     func(session *ScanSession) *domain.FileSystemNode
}

func NewFSScanner(log zerolog.Logger) *FSScanner {
	return &FSScanner{
		sessions: make(map[string]*ScanSession),
		log:      log,
		now:      time.Now,
	}
}

// Begin registers a scan of req.RootPath without starting it.
func (scanner *FSScanner) Begin(req ScanRequest) (*ScanSession, error) {
	root := cleanPath(req.RootPath)
	if root == "" {
		return nil, errors.New("scan root required")
	}

	scanner.mu.Lock()
	defer scanner.mu.Unlock()
	if existing, ok := scanner.sessions[root]; ok {
		return nil, fmt.Errorf("%w: %s (session %s)", ErrScanInProgress, root, existing.ID)
	}
	session := &ScanSession{
		ID:       uuid.NewString(),
		Root:     root,
		request:  req,
		owner:    scanner,
		progress: newProgressReporter(root),
		done:     make(chan struct{}),
	}
	scanner.sessions[root] = session
	return session, nil
}

// StartScan scans req.RootPath to completion. A scan that was cancelled
// before its walk finished returns ErrScanCancelled instead of a partial tree.
func (scanner *FSScanner) StartScan(ctx context.Context, req ScanRequest) (*domain.FileSystemNode, error) {
	session, err := scanner.Begin(req)
	if err != nil {
		return nil, err
	}
	return session.Run(ctx)
}

// CancelScan always succeeds. Without a live session for root it returns a
// synthesized cancelled snapshot.
func (scanner *FSScanner) CancelScan(root string) CancelResult {
	session := scanner.Session(root)
	if session != nil {
		session.Cancel()
		return CancelResult{Success: true, Progress: session.Progress()}
	}
	scanner.log.Debug().Str("root", root).Msg("cancel requested without a live scan")
	return CancelResult{
		Success: true,
		Progress: domain.ScanProgress{
			Status:      domain.ScanCancelled,
			CurrentPath: cleanPath(root),
			StartTime:   scanner.now(),
		},
	}
}

// Session returns the live session for root, or nil.
func (scanner *FSScanner) Session(root string) *ScanSession {
	root = cleanPath(root)
	scanner.mu.Lock()
	defer scanner.mu.Unlock()
	return scanner.sessions[root]
}

// Progress returns the live snapshot for root, or an idle one.
func (scanner *FSScanner) Progress(root string) domain.ScanProgress {
	if session := scanner.Session(root); session != nil {
		return session.Progress()
	}
	return domain.ScanProgress{Status: domain.ScanIdle, CurrentPath: cleanPath(root)}
}

func (scanner *FSScanner) release(session *ScanSession) {
	scanner.mu.Lock()
	defer scanner.mu.Unlock()
	if scanner.sessions[session.Root] == session {
		delete(scanner.sessions, session.Root)
	}
}

type ScanSession struct {
	ID   string
	Root string

	request   ScanRequest
	owner     *FSScanner
	progress  *progressReporter
	cancelled atomic.Bool
	started   atomic.Bool
	done      chan struct{}
	tree      *domain.FileSystemNode
	err       error
}

func (session *ScanSession) Subscribe() (<-chan domain.ScanProgress, func()) {
	return session.progress.subscribe()
}

func (session *ScanSession) Progress() domain.ScanProgress {
	return session.progress.current()
}

func (session *ScanSession) Cancel() {
	session.cancelled.Store(true)
	if session.progress.cancel() {
		session.owner.log.Info().Str("root", session.Root).Str("session", session.ID).Msg("scan cancelled")
	}
}

func (session *ScanSession) Cancelled() bool {
	return session.cancelled.Load()
}

func (session *ScanSession) Done() <-chan struct{} {
	return session.done
}

// Wait blocks until Run has returned and yields its result.
func (session *ScanSession) Wait(ctx context.Context) (*domain.FileSystemNode, error) {
	select {
	case <-session.done:
		return session.tree, session.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Run walks the session root once. Cancelling ctx is the same as Cancel.
func (session *ScanSession) Run(ctx context.Context) (tree *domain.FileSystemNode, err error) {
	if !session.started.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("scan session %s already started", session.ID)
	}
	log := session.owner.log.With().Str("root", session.Root).Str("session", session.ID).Logger()
	start := session.owner.now()

	defer func() {
		if recovered := recover(); recovered != nil {
			tree = nil
			err = fmt.Errorf("scan %s: unexpected failure: %v", session.Root, recovered)
		}
		session.finish(tree, err)
		snapshot := session.Progress()
		log.Info().
			Str("status", string(snapshot.Status)).
			Int64("scanned", snapshot.ScannedCount).
			Int64("bytes", snapshot.ScannedSize).
			Dur("elapsed", session.owner.now().Sub(start)).
			Msg("scan finished")
	}()

	stop := context.AfterFunc(ctx, session.Cancel)
	defer stop()

	log.Debug().Msg("scan started")
	session.progress.start(start)

	walk := session.owner.walk
	if walk == nil {
		walk = walkTree
	}
	tree = walk(session)
	if session.Cancelled() {
		return nil, ErrScanCancelled
	}
	return tree, nil
}

func (session *ScanSession) finish(tree *domain.FileSystemNode, err error) {
	switch {
	case errors.Is(err, ErrScanCancelled):
		session.progress.finish(domain.ScanCancelled, "")
	case err != nil:
		session.progress.finish(domain.ScanError, err.Error())
	default:
		session.progress.finish(domain.ScanCompleted, "")
	}
	session.tree = tree
	session.err = err
	session.owner.release(session)
	close(session.done)
}

func walkTree(session *ScanSession) *domain.FileSystemNode {
	builder := treeBuilder{
		maxDepth:  session.request.MaxDepth,
		excludes:  session.request.ExcludePatterns,
		progress:  session.progress,
		cancelled: session.Cancelled,
	}
	return builder.build(session.Root)
}

func cleanPath(path string) string {
	if path == "" {
		return path
	}
	clean := filepath.Clean(path)
	abs, err := filepath.Abs(clean)
	if err != nil {
		return clean
	}
	return abs
}
