//go:build linux

package services

import (
	"os"
	"time"

	"golang.org/x/sys/unix"

	"diskscope/internal/domain"
)

func applyPlatformDetails(path string, _ os.FileInfo, details *domain.FileDetails) {
	var stx unix.Statx_t
	if err := unix.Statx(unix.AT_FDCWD, path, unix.AT_STATX_SYNC_AS_STAT, unix.STATX_ATIME|unix.STATX_BTIME, &stx); err == nil {
		if stx.Mask&unix.STATX_ATIME != 0 {
			details.AccessedAt = time.Unix(stx.Atime.Sec, int64(stx.Atime.Nsec))
		}
		if stx.Mask&unix.STATX_BTIME != 0 {
			details.CreatedAt = time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec))
		}
	}
	details.IsReadOnly = unix.Access(path, unix.W_OK) != nil
}
