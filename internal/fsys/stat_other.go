//go:build !linux && !darwin

package fsys

import (
	"os"
	"time"
)

// AccessTime returns the modification time; access times are not exposed
// portably on this platform.
func AccessTime(info os.FileInfo) time.Time {
	return info.ModTime()
}

// FileIDOf reports false; inode identity is unavailable on this platform.
func FileIDOf(_ os.FileInfo) (FileID, bool) {
	return FileID{}, false
}
