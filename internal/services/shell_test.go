package services

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileManagerCommand(t *testing.T) {
	cases := []struct {
		goos  string
		path  string
		isDir bool
		name  string
		args  []string
	}{
		{"linux", "/home/u/file.txt", false, "xdg-open", []string{filepath.Dir("/home/u/file.txt")}},
		{"linux", "/home/u", true, "xdg-open", []string{"/home/u"}},
		{"darwin", "/Users/u/file.txt", false, "open", []string{"-R", "/Users/u/file.txt"}},
		{"darwin", "/Users/u", true, "open", []string{"/Users/u"}},
		{"windows", `C:\data\file.txt`, false, "explorer", []string{`/select,C:\data\file.txt`}},
		{"windows", `C:\data`, true, "explorer", []string{`C:\data`}},
	}
	for _, tc := range cases {
		name, args := fileManagerCommand(tc.goos, tc.path, tc.isDir)
		assert.Equal(t, tc.name, name)
		assert.Equal(t, tc.args, args)
	}
}
