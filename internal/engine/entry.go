package engine

import (
	"io/fs"
	"os"
)

// Kind classifies a walked path.
type Kind int

const (
	KindFile Kind = iota + 1
	KindDir
	KindSymlink
	KindOther // FIFOs, sockets, devices: never copied
)

var kindNames = [...]string{
	KindFile:    "file",
	KindDir:     "dir",
	KindSymlink: "symlink",
	KindOther:   "other",
}

func (k Kind) String() string {
	if k > 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

func kindOf(info os.FileInfo) Kind {
	switch m := info.Mode(); {
	case m.IsRegular():
		return KindFile
	case m.IsDir():
		return KindDir
	case m&fs.ModeSymlink != 0:
		return KindSymlink
	default:
		return KindOther
	}
}

// PathEntry is one leaf produced by the walker.
type PathEntry struct {
	Path    string // absolute source path
	RelPath string // relative to the walk root, host separators
	Kind    Kind
	Info    os.FileInfo
}

// Mapping pairs a source leaf with its final destination path.
type Mapping struct {
	Source PathEntry
	Dst    string
}
