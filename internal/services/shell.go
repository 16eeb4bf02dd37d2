package services

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// OpenInFileManager reveals path in the desktop file manager without waiting
// for it to exit.
func OpenInFileManager(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	name, args := fileManagerCommand(runtime.GOOS, path, info.IsDir())
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func fileManagerCommand(goos, path string, isDir bool) (string, []string) {
	switch goos {
	case "windows":
		if isDir {
			return "explorer", []string{path}
		}
		return "explorer", []string{"/select," + path}
	case "darwin":
		if isDir {
			return "open", []string{path}
		}
		return "open", []string{"-R", path}
	default:
		if !isDir {
			path = filepath.Dir(path)
		}
		return "xdg-open", []string{path}
	}
}
