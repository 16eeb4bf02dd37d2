//go:build windows

package services

import (
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/windows"

	"diskscope/internal/domain"
)

func applyPlatformDetails(path string, info os.FileInfo, details *domain.FileDetails) {
	if data, ok := info.Sys().(*syscall.Win32FileAttributeData); ok {
		details.CreatedAt = time.Unix(0, data.CreationTime.Nanoseconds())
		details.AccessedAt = time.Unix(0, data.LastAccessTime.Nanoseconds())
	}
	name, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return
	}
	attrs, err := windows.GetFileAttributes(name)
	if err != nil {
		return
	}
	details.IsHidden = attrs&windows.FILE_ATTRIBUTE_HIDDEN != 0
	details.IsSystem = attrs&windows.FILE_ATTRIBUTE_SYSTEM != 0
	details.IsReadOnly = attrs&windows.FILE_ATTRIBUTE_READONLY != 0
}
