//go:build linux

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
		return time.Unix(stat.Atim.Sec, stat.Atim.Nsec)
	}
	return info.ModTime()
}

// FileIDOf returns the device/inode pair for info.
func FileIDOf(info os.FileInfo) (FileID, bool) {
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		return FileID{Dev: uint64(stat.Dev), Ino: uint64(stat.Ino)}, true
	}
	return FileID{}, false
}
