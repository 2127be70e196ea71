package ui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/bamsammich/kopeer/internal/stats"
)

// size renders a byte count in binary units.
func size(n int64) string {
	return stats.FormatBytes(n)
}

// throughput renders bytes per second in the same units as size.
func throughput(bytesPerSec float64) string {
	if bytesPerSec < 1 {
		return "0 B/s"
	}
	return stats.FormatBytes(int64(bytesPerSec)) + "/s"
}

// count groups n in thousands: 48917 -> "48,917".
func count(n int64) string {
	digits := strconv.FormatInt(n, 10)
	sign := ""
	if n < 0 {
		sign, digits = "-", digits[1:]
	}
	out := make([]byte, 0, len(digits)+len(digits)/3)
	for i := range len(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, digits[i])
	}
	return sign + string(out)
}

// clock renders d rounded to seconds: "7s", "3m 05s", "1h 02m 03s".
func clock(d time.Duration) string {
	secs := int64(d.Round(time.Second) / time.Second)
	if secs < 0 {
		secs = 0
	}
	h, m, s := secs/3600, secs/60%60, secs%60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// eta estimates the time left to copy remaining bytes at bytesPerSec.
// It renders "--" when no estimate is possible.
func eta(remaining int64, bytesPerSec float64) string {
	if remaining <= 0 || bytesPerSec <= 0 {
		return "--"
	}
	return clock(time.Duration(float64(remaining) / bytesPerSec * float64(time.Second)))
}

func averageRate(snap stats.Snapshot) float64 {
	if snap.Elapsed <= 0 {
		return 0
	}
	return float64(snap.BytesCopied) / snap.Elapsed.Seconds()
}
