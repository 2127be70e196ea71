package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"golang.org/x/time/rate"

	"github.com/bamsammich/kopeer/internal/fsys"
)

// modeBits are the permission bits copied from a source file.
const modeBits = fs.ModePerm | fs.ModeSetuid | fs.ModeSetgid | fs.ModeSticky

// copyFile streams src into dst and then applies src's mode and times. The
// destination is opened with src's permission bits and truncated if it
// exists. Metadata is applied only after Close succeeds.
func copyFile(
	ctx context.Context,
	vfs fsys.FS,
	src, dst string,
	info os.FileInfo,
	limiter *rate.Limiter,
) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	in, err := vfs.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	// never write through a symlink left at the destination
	if di, err := vfs.Lstat(dst); err == nil && di.Mode()&fs.ModeSymlink != 0 {
		if err := vfs.Remove(dst); err != nil {
			return 0, err
		}
	}

	out, err := vfs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return 0, err
	}
	fsys.Preallocate(out, info.Size())

	n, err := io.Copy(out, newLimitedReader(ctx, in, limiter))
	if err != nil {
		_ = out.Close()
		return n, fmt.Errorf("copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return n, fmt.Errorf("close %s: %w", dst, err)
	}

	if err := vfs.Chmod(dst, info.Mode()&modeBits); err != nil {
		return n, err
	}
	if err := vfs.Chtimes(dst, fsys.AccessTime(info), info.ModTime()); err != nil {
		return n, err
	}
	return n, nil
}

// copyLink recreates the symlink src at dst with the same, unresolved
// target. An existing non-directory at dst is replaced.
func copyLink(vfs fsys.FS, src, dst string) error {
	target, err := vfs.Readlink(src)
	if err != nil {
		return err
	}

	di, err := vfs.Lstat(dst)
	switch {
	case err == nil && !di.IsDir():
		if err := vfs.Remove(dst); err != nil {
			return err
		}
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return err
	}

	return vfs.Symlink(target, dst)
}
