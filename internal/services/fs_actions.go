package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
	"github.com/rs/zerolog"

	"diskscope/internal/domain"
)

const previewSamples = 5

// Trasher moves a path somewhere it can be restored from.
type Trasher interface {
	Trash(path string) error
}

type FSActions struct {
	log      zerolog.Logger
	assessor Assessor
	trash    Trasher
	results  broadcaster[domain.DeleteResult]
}

func NewFSActions(log zerolog.Logger, assessor Assessor, trash Trasher) *FSActions {
	return &FSActions{log: log, assessor: assessor, trash: trash}
}

// Subscribe delivers the result of every later Delete call.
func (actions *FSActions) Subscribe() (<-chan domain.DeleteResult, func()) {
	return actions.results.subscribe()
}

// Delete removes paths one after another. A failing path is recorded and
// never stops the remaining ones.
func (actions *FSActions) Delete(ctx context.Context, req DeleteRequest) domain.DeleteResult {
	result := domain.DeleteResult{
		Success:      true,
		DeletedPaths: []string{},
		FailedPaths:  []domain.FailedPath{},
	}
	for _, path := range req.Paths {
		size, err := actions.deleteOne(ctx, path, req)
		if err != nil {
			actions.log.Warn().Err(err).Str("path", path).Msg("delete failed")
			result.Success = false
			result.FailedPaths = append(result.FailedPaths, domain.FailedPath{Path: path, Reason: err.Error()})
			continue
		}
		result.DeletedPaths = append(result.DeletedPaths, path)
		result.FreedSize += size
	}
	actions.log.Info().
		Int("deleted", len(result.DeletedPaths)).
		Int("failed", len(result.FailedPaths)).
		Int64("freed", result.FreedSize).
		Bool("trash", req.UseTrash).
		Msg("delete finished")
	actions.results.publishLatest(result)
	return result
}

func (actions *FSActions) deleteOne(ctx context.Context, path string, req DeleteRequest) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("delete cancelled: %w", err)
	}
	info, err := os.Lstat(path)
	if err != nil {
		return 0, err
	}
	if req.SafeMode {
		if err := actions.checkProtected(path); err != nil {
			return 0, err
		}
	}

	size := info.Size()
	if info.IsDir() {
		size = directorySize(ctx, path)
	}

	if req.UseTrash {
		if actions.trash == nil {
			return 0, errors.New("trash unavailable")
		}
		if err := actions.trash.Trash(path); err != nil {
			return 0, fmt.Errorf("move to trash: %w", err)
		}
		return size, nil
	}
	if info.IsDir() {
		err = os.RemoveAll(path)
	} else {
		err = os.Remove(path)
	}
	if err != nil {
		return 0, err
	}
	return size, nil
}

func (actions *FSActions) checkProtected(path string) error {
	if isCriticalPath(path) {
		return fmt.Errorf("%w: %s is a critical location", ErrProtectedPath, path)
	}
	if actions.assessor == nil {
		return nil
	}
	assessment := actions.assessor.Assess(path)
	if assessment.SafetyLevel == domain.SafetyDanger {
		return fmt.Errorf("%w: %s", ErrProtectedPath, assessment.Reason)
	}
	return nil
}

// Preview totals what deleting paths would free.
func (actions *FSActions) Preview(ctx context.Context, paths []string) (ActionPreview, error) {
	if len(paths) == 0 {
		return ActionPreview{}, errors.New("no paths provided")
	}
	preview := ActionPreview{Sources: paths, Samples: []string{}}
	var mu sync.Mutex

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return ActionPreview{}, err
		}
		info, err := os.Lstat(path)
		if err != nil {
			preview.Warnings = append(preview.Warnings, err.Error())
			continue
		}
		if !info.IsDir() {
			preview.TotalFiles++
			preview.TotalBytes += info.Size()
			if len(preview.Samples) < previewSamples {
				preview.Samples = append(preview.Samples, path)
			}
			continue
		}

		conf := &fastwalk.Config{Follow: false}
		walkErr := fastwalk.Walk(conf, path, func(child string, entry fs.DirEntry, err error) error {
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				preview.Warnings = append(preview.Warnings, err.Error())
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if entry.IsDir() {
				preview.TotalDirs++
				return nil
			}
			preview.TotalFiles++
			if len(preview.Samples) < previewSamples {
				preview.Samples = append(preview.Samples, child)
			}
			if entry.Type().IsRegular() {
				if fileInfo, err := entry.Info(); err == nil {
					preview.TotalBytes += fileInfo.Size()
				}
			}
			return nil
		})
		if walkErr != nil {
			if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
				return ActionPreview{}, walkErr
			}
			preview.Warnings = append(preview.Warnings, walkErr.Error())
		}
	}
	return preview, nil
}

// directorySize sums the regular files below root. Unreadable entries count
// as zero.
func directorySize(ctx context.Context, root string) int64 {
	var total atomic.Int64
	conf := &fastwalk.Config{Follow: false}
	_ = fastwalk.Walk(conf, root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		if info, err := entry.Info(); err == nil {
			total.Add(info.Size())
		}
		return nil
	})
	return total.Load()
}

// isCriticalPath reports the filesystem root, the home directory itself and
// anything under the core system trees.
func isCriticalPath(path string) bool {
	path = filepath.Clean(path)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if path == string(filepath.Separator) || filepath.Dir(path) == path {
		return true
	}
	if home, err := os.UserHomeDir(); err == nil && path == filepath.Clean(home) {
		return true
	}
	for _, root := range []string{"/bin", "/boot", "/etc", "/sbin", "/usr", "/var"} {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
