package engine

import "errors"

var (
	// ErrExpectedFile is returned by CopyFile when the source is a directory.
	ErrExpectedFile = errors.New("expected a file, found a directory")
	// ErrExpectedDirectory is returned by CopyDirectory when the source is not a directory.
	ErrExpectedDirectory = errors.New("expected a directory, found a file")
	// ErrCycle is returned when dereferencing symlinks revisits a directory.
	ErrCycle = errors.New("directory cycle through symlinks")
	// ErrVerify is returned when a copied file's digest differs from its source.
	ErrVerify = errors.New("verification failed")
)
