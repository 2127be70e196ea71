package engine

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/zeebo/blake3"

	"github.com/bamsammich/kopeer/internal/fsys"
)

// HashFile returns the hex-encoded 32-byte BLAKE3 digest of path's contents.
func HashFile(vfs fsys.FS, path string) (string, error) {
	f, err := vfs.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	var sum [32]byte
	return hex.EncodeToString(h.Sum(sum[:0])), nil
}
