package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/otiai10/copy"
)

const trashInfoLayout = "2006-01-02T15:04:05"

// HomeTrash is a freedesktop.org home trash: removed entries live in files/
// and a matching .trashinfo in info/ records where they came from.
type HomeTrash struct {
	Dir string
	now func() time.Time
}

func NewHomeTrash(dir string) *HomeTrash {
	if dir == "" {
		dir = DefaultTrashDir()
	}
	return &HomeTrash{Dir: dir, now: time.Now}
}

func DefaultTrashDir() string {
	if data := os.Getenv("XDG_DATA_HOME"); data != "" {
		return filepath.Join(data, "Trash")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "diskscope-trash")
	}
	return filepath.Join(home, ".local", "share", "Trash")
}

func (trash *HomeTrash) Trash(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	filesDir := filepath.Join(trash.Dir, "files")
	infoDir := filepath.Join(trash.Dir, "info")
	for _, dir := range []string{filesDir, infoDir} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("prepare trash: %w", err)
		}
	}

	name, infoPath, err := trash.reserve(abs, infoDir)
	if err != nil {
		return err
	}
	target := filepath.Join(filesDir, name)
	if err := moveEntry(abs, target); err != nil {
		_ = os.Remove(infoPath)
		return err
	}
	return nil
}

// reserve claims a unique entry name by creating its info file exclusively.
func (trash *HomeTrash) reserve(abs, infoDir string) (string, string, error) {
	base := filepath.Base(abs)
	now := time.Now
	if trash.now != nil {
		now = trash.now
	}
	deletedAt := now()
	body := fmt.Sprintf("[Trash Info]\nPath=%s\nDeletionDate=%s\n", abs, deletedAt.Format(trashInfoLayout))

	for attempt := 0; attempt < 100; attempt++ {
		name := base
		if attempt > 0 {
			seed := abs + deletedAt.String() + strconv.Itoa(attempt)
			name = fmt.Sprintf("%s.%x", base, xxhash.Sum64String(seed)&0xffffff)
		}
		infoPath := filepath.Join(infoDir, name+".trashinfo")
		file, err := os.OpenFile(infoPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", "", fmt.Errorf("write trash info: %w", err)
		}
		_, writeErr := file.WriteString(body)
		closeErr := file.Close()
		if err := errors.Join(writeErr, closeErr); err != nil {
			_ = os.Remove(infoPath)
			return "", "", fmt.Errorf("write trash info: %w", err)
		}
		if _, err := os.Lstat(filepath.Join(filepath.Dir(infoDir), "files", name)); err == nil {
			_ = os.Remove(infoPath)
			continue
		}
		return name, infoPath, nil
	}
	return "", "", fmt.Errorf("no free trash name for %s", base)
}

func moveEntry(source, target string) error {
	err := os.Rename(source, target)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}
	if err := copy.Copy(source, target); err != nil {
		_ = os.RemoveAll(target)
		return fmt.Errorf("copy to trash: %w", err)
	}
	return os.RemoveAll(source)
}
