//go:build linux

package fsys

import "golang.org/x/sys/unix"

// Preallocate reserves size bytes for f when it is backed by a file
// descriptor. The apparent file size is left unchanged. Errors are ignored
// as fallocate is not supported on all filesystems.
//
//nolint:gosec // G115: fd values are small non-negative integers
func Preallocate(f any, size int64) {
	fd, ok := f.(interface{ Fd() uintptr })
	if !ok || size <= 0 {
		return
	}
	//nolint:errcheck // fallocate is advisory
	unix.Fallocate(int(fd.Fd()), unix.FALLOC_FL_KEEP_SIZE, 0, size)
}
