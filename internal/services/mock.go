package services

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"diskscope/internal/domain"
)

// NewMockScanner returns a scanner whose sessions yield tree instead of
// walking the filesystem.
func NewMockScanner(tree *domain.FileSystemNode) *FSScanner {
	scanner := NewFSScanner(zerolog.Nop())
	scanner.walk = func(session *ScanSession) *domain.FileSystemNode {
		if tree == nil {
			return nil
		}
		pending := append([]*domain.FileSystemNode(nil), tree.Children...)
		for len(pending) > 0 {
			node := pending[len(pending)-1]
			pending = pending[:len(pending)-1]
			if node == nil {
				continue
			}
			session.progress.visit(node.Path)
			if !node.IsDir() {
				session.progress.addBytes(node.Size)
			}
			pending = append(pending, node.Children...)
		}
		return tree
	}
	return scanner
}

// MockActions records delete requests and reports every path as removed.
type MockActions struct {
	mu       sync.Mutex
	Requests []DeleteRequest
	Sizes    map[string]int64
	results  broadcaster[domain.DeleteResult]
}

func NewMockActions() *MockActions {
	return &MockActions{Sizes: map[string]int64{}}
}

func (actions *MockActions) Delete(ctx context.Context, req DeleteRequest) domain.DeleteResult {
	actions.mu.Lock()
	actions.Requests = append(actions.Requests, req)
	actions.mu.Unlock()

	result := domain.DeleteResult{Success: true, DeletedPaths: []string{}, FailedPaths: []domain.FailedPath{}}
	for _, path := range req.Paths {
		if ctx.Err() != nil {
			result.Success = false
			result.FailedPaths = append(result.FailedPaths, domain.FailedPath{Path: path, Reason: ctx.Err().Error()})
			continue
		}
		result.DeletedPaths = append(result.DeletedPaths, path)
		result.FreedSize += actions.Sizes[path]
	}
	actions.results.publishLatest(result)
	return result
}

func (actions *MockActions) Preview(_ context.Context, paths []string) (ActionPreview, error) {
	preview := ActionPreview{Sources: paths, Samples: paths}
	for _, path := range paths {
		preview.TotalFiles++
		preview.TotalBytes += actions.Sizes[path]
	}
	return preview, nil
}

func (actions *MockActions) Subscribe() (<-chan domain.DeleteResult, func()) {
	return actions.results.subscribe()
}

func (actions *MockActions) Calls() []DeleteRequest {
	actions.mu.Lock()
	defer actions.mu.Unlock()
	return append([]DeleteRequest(nil), actions.Requests...)
}
