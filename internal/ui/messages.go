package ui

import (
	"diskscope/internal/domain"
	"diskscope/internal/services"
)

type startScanMsg struct {
	path string
}

type scanResultMsg struct {
	sessionID string
	result    services.ScanResult
	err       error
}

type scanProgressMsg struct {
	sessionID string
	progress  domain.ScanProgress
	closed    bool
}

type actionPreviewMsg struct {
	paths   []string
	preview services.ActionPreview
	err     error
}

type deleteResultMsg struct {
	result domain.DeleteResult
}

type openResultMsg struct {
	path string
	err  error
}
