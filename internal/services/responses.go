package services

import (
	"time"

	"diskscope/internal/domain"
)

type ScanResult struct {
	RootPath string
	Root     *domain.FileSystemNode
	Duration time.Duration
}

type CancelResult struct {
	Success  bool                `json:"success"`
	Progress domain.ScanProgress `json:"progress"`
}
