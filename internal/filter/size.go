package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseSize parses a size such as 100, 100B, 64K, 1.5M, 2G or 1T
// (case-insensitive, powers of 1024).
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	num, multiplier := s, int64(1)
	if i := strings.IndexByte("BKMGT", strings.ToUpper(s[len(s)-1:])[0]); i >= 0 {
		num = s[:len(s)-1]
		multiplier = int64(1) << (10 * i)
	}
	if num == "" {
		return 0, fmt.Errorf("invalid size: %q", s)
	}

	if n, err := strconv.ParseInt(num, 10, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("invalid size: %q", s)
		}
		return n * multiplier, nil
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("invalid size: %q", s)
	}
	return int64(f * float64(multiplier)), nil
}
