//go:build unix

package pool

import (
	"errors"

	"golang.org/x/sys/unix"
)

// IsTransient reports whether err is EMFILE or ENFILE.
func IsTransient(err error) bool {
	return errors.Is(err, unix.EMFILE) || errors.Is(err, unix.ENFILE)
}
