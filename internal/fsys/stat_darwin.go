//go:build darwin

package fsys

import (
	"os"
	"syscall"
	"time"
)

// AccessTime returns the access time recorded in info, falling back to the
// modification time when the platform data is unavailable.
func AccessTime(info os.FileInfo) time.Time {
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(stat.Atimespec.Sec, stat.Atimespec.Nsec)
	}
	return info.ModTime()
}

// FileIDOf returns the device/inode pair for info.
func FileIDOf(info os.FileInfo) (FileID, bool) {
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		return FileID{Dev: uint64(stat.Dev), Ino: stat.Ino}, true //nolint:gosec // G115: dev_t is int32 on darwin, always non-negative
	}
	return FileID{}, false
}
