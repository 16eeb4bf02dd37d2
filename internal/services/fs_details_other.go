//go:build !linux && !windows

package services

import (
	"os"

	"diskscope/internal/domain"
)

func applyPlatformDetails(string, os.FileInfo, *domain.FileDetails) {}
