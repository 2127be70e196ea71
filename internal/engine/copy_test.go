package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/kopeer/internal/fsys"
)

func TestCopyFile_ContentModeAndTimes(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	require.NoError(t, os.WriteFile(src, []byte("hello, kopeer"), 0o640))
	require.NoError(t, os.Chmod(src, 0o640))

	atime := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	mtime := time.Date(2021, 6, 7, 8, 9, 10, 0, time.UTC)
	require.NoError(t, os.Chtimes(src, atime, mtime))
	info, err := os.Lstat(src)
	require.NoError(t, err)

	n, err := copyFile(context.Background(), fsys.NewOS(), src, dst, info, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(13), n)

	dstInfo, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), dstInfo.Mode().Perm())
	assert.Equal(t, mtime.Unix(), dstInfo.ModTime().Unix())
	assert.Equal(t, atime.Unix(), fsys.AccessTime(dstInfo).Unix())

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "hello, kopeer", string(got))
}

func TestCopyFile_TruncatesExisting(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	require.NoError(t, os.WriteFile(src, []byte("short"), 0o644))
	require.NoError(t, os.WriteFile(dst, []byte("a much longer previous body"), 0o644))
	info, err := os.Lstat(src)
	require.NoError(t, err)

	_, err = copyFile(context.Background(), fsys.NewOS(), src, dst, info, nil)
	require.NoError(t, err)
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "short", string(got))
}

func TestCopyFile_ReplacesSymlinkAtDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	victim := filepath.Join(dir, "victim")
	dst := filepath.Join(dir, "dst")
	require.NoError(t, os.WriteFile(src, []byte("new"), 0o644))
	require.NoError(t, os.WriteFile(victim, []byte("keep me"), 0o644))
	require.NoError(t, os.Symlink(victim, dst))
	info, err := os.Lstat(src)
	require.NoError(t, err)

	_, err = copyFile(context.Background(), fsys.NewOS(), src, dst, info, nil)
	require.NoError(t, err)

	got, err := os.ReadFile(victim)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(got))
	dstInfo, err := os.Lstat(dst)
	require.NoError(t, err)
	assert.True(t, dstInfo.Mode().IsRegular())
}

func TestCopyFile_RateLimited(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	data := make([]byte, 8*1024)
	require.NoError(t, os.WriteFile(src, data, 0o644))
	info, err := os.Lstat(src)
	require.NoError(t, err)

	n, err := copyFile(context.Background(), fsys.NewOS(), src, dst, info, NewBWLimiter(1<<20))
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), n)
}

func TestCopyFile_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))
	info, err := os.Lstat(src)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = copyFile(ctx, fsys.NewOS(), src, filepath.Join(dir, "dst"), info, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, filepath.Join(dir, "dst"))
}

func TestCopyLink_PreservesTarget(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "link")
	dst := filepath.Join(dir, "copy")
	require.NoError(t, os.Symlink("does/not/exist", src))

	require.NoError(t, copyLink(fsys.NewOS(), src, dst))
	target, err := os.Readlink(dst)
	require.NoError(t, err)
	assert.Equal(t, "does/not/exist", target)
}

func TestCopyLink_ReplacesExistingFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "link")
	dst := filepath.Join(dir, "copy")
	require.NoError(t, os.Symlink("target", src))
	require.NoError(t, os.WriteFile(dst, []byte("old"), 0o644))

	require.NoError(t, copyLink(fsys.NewOS(), src, dst))
	target, err := os.Readlink(dst)
	require.NoError(t, err)
	assert.Equal(t, "target", target)
}

func TestCopyLink_ExistingDirectoryFails(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "link")
	dst := filepath.Join(dir, "copy")
	require.NoError(t, os.Symlink("target", src))
	require.NoError(t, os.Mkdir(dst, 0o755))

	require.ErrorIs(t, copyLink(fsys.NewOS(), src, dst), os.ErrExist)
}

func TestCopyLink_UnsupportedFilesystem(t *testing.T) {
	vfs := memTree(t, "/src", map[string]string{"a": "x"})
	assert.Error(t, copyLink(vfs, "/src/a", "/dst/a"))
}
