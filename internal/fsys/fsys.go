// Package fsys is the filesystem capability handed to every copy component.
//
// Components never touch the os package directly. They receive an FS, which in
// production wraps afero.NewOsFs and in tests wraps an in-memory afero.Fs or a
// fault-injecting fake.
package fsys

import (
	"os"
	"sort"
	"time"

	"github.com/spf13/afero"
)

// FS is the set of filesystem calls the copy pipeline issues.
type FS interface {
	Stat(name string) (os.FileInfo, error)
	Lstat(name string) (os.FileInfo, error)
	ReadDirNames(name string) ([]string, error)
	Mkdir(name string, perm os.FileMode) error
	Open(name string) (afero.File, error)
	OpenFile(name string, flag int, perm os.FileMode) (afero.File, error)
	Chmod(name string, mode os.FileMode) error
	Chtimes(name string, atime, mtime time.Time) error
	Readlink(name string) (string, error)
	Symlink(oldname, newname string) error
	Remove(name string) error
}

// Afero adapts an afero.Fs to FS. Symlink support depends on the wrapped
// filesystem implementing afero.Lstater, afero.Linker and afero.LinkReader.
type Afero struct {
	fs afero.Fs
}

var _ FS = (*Afero)(nil)

// New wraps fs.
func New(fs afero.Fs) *Afero {
	return &Afero{fs: fs}
}

// NewOS returns an FS backed by the host filesystem.
func NewOS() *Afero {
	return New(afero.NewOsFs())
}

// Fs returns the wrapped afero filesystem.
func (a *Afero) Fs() afero.Fs {
	return a.fs
}

func (a *Afero) Stat(name string) (os.FileInfo, error) {
	return a.fs.Stat(name)
}

// Lstat falls back to Stat when the wrapped filesystem has no symlinks.
func (a *Afero) Lstat(name string) (os.FileInfo, error) {
	if l, ok := a.fs.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(name)
		return info, err
	}
	return a.fs.Stat(name)
}

// ReadDirNames returns the names in directory name, sorted.
func (a *Afero) ReadDirNames(name string) ([]string, error) {
	f, err := a.fs.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

func (a *Afero) Mkdir(name string, perm os.FileMode) error {
	return a.fs.Mkdir(name, perm)
}

func (a *Afero) Open(name string) (afero.File, error) {
	return a.fs.Open(name)
}

func (a *Afero) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	return a.fs.OpenFile(name, flag, perm)
}

func (a *Afero) Chmod(name string, mode os.FileMode) error {
	return a.fs.Chmod(name, mode)
}

func (a *Afero) Chtimes(name string, atime, mtime time.Time) error {
	return a.fs.Chtimes(name, atime, mtime)
}

func (a *Afero) Readlink(name string) (string, error) {
	if r, ok := a.fs.(afero.LinkReader); ok {
		return r.ReadlinkIfPossible(name)
	}
	return "", &os.PathError{Op: "readlink", Path: name, Err: afero.ErrNoReadlink}
}

func (a *Afero) Symlink(oldname, newname string) error {
	if l, ok := a.fs.(afero.Linker); ok {
		return l.SymlinkIfPossible(oldname, newname)
	}
	return &os.LinkError{Op: "symlink", Old: oldname, New: newname, Err: afero.ErrNoSymlink}
}

func (a *Afero) Remove(name string) error {
	return a.fs.Remove(name)
}
