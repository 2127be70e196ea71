//go:build !linux

package fsys

// Preallocate is a no-op on non-Linux platforms (fallocate is Linux-only).
func Preallocate(_ any, _ int64) {}
