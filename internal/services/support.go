package services

import "errors"

var (
	ErrScanCancelled   = errors.New("scan cancelled")
	ErrScanInProgress  = errors.New("scan already in progress")
	ErrSessionNotFound = errors.New("scan session not found")
	ErrProtectedPath   = errors.New("protected path")
)

type ActionPreview struct {
	Sources    []string `json:"sources"`
	TotalFiles int      `json:"totalFiles"`
	TotalDirs  int      `json:"totalDirs"`
	TotalBytes int64    `json:"totalBytes"`
	Samples    []string `json:"samples"`
	Warnings   []string `json:"warnings,omitempty"`
}

// Depth returns a depth limit for ScanRequest.MaxDepth.
func Depth(limit int) *int {
	return &limit
}
