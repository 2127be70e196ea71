package filter

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
)

// LoadFile reads rules from path on fs and appends them to the chain.
func (c *Chain) LoadFile(fs afero.Fs, path string) error {
	f, err := fs.Open(path)
	if err != nil {
		return fmt.Errorf("open filter file: %w", err)
	}
	defer f.Close()

	if err := c.Load(f); err != nil {
		return fmt.Errorf("filter file %s: %w", path, err)
	}
	return nil
}

// Load appends rules read from r, one per line:
//
//	+ pattern   include
//	- pattern   exclude
//	pattern     exclude
//	# comment
//
// Blank lines are skipped.
func (c *Chain) Load(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		add := c.AddExclude
		pattern := line
		switch {
		case strings.HasPrefix(line, "+ "):
			add = c.AddInclude
			pattern = strings.TrimSpace(line[2:])
		case strings.HasPrefix(line, "- "):
			pattern = strings.TrimSpace(line[2:])
		}

		if err := add(pattern); err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
	}
	return scanner.Err()
}
