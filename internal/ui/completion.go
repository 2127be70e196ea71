package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bamsammich/kopeer/internal/stats"
)

// Theme styles the completion summary on a terminal.
type Theme struct {
	Success lipgloss.Style
	Failure lipgloss.Style
	Muted   lipgloss.Style
}

// NewTheme builds a Theme from color strings (hex or ANSI numbers). Empty
// strings keep the defaults.
func NewTheme(success, failure, muted string) Theme {
	pick := func(c, def string) lipgloss.Color {
		if c == "" {
			return lipgloss.Color(def)
		}
		return lipgloss.Color(c)
	}
	return Theme{
		Success: lipgloss.NewStyle().Bold(true).Foreground(pick(success, "#a6e3a1")),
		Failure: lipgloss.NewStyle().Bold(true).Foreground(pick(failure, "#f38ba8")),
		Muted:   lipgloss.NewStyle().Foreground(pick(muted, "#6c7086")),
	}
}

// completionSummary builds the final summary line.
// Format: done ✓  files 48,917  links 12  size 2.1 GiB  avg 641.0 MiB/s  time 3m 17s  errors 0
func completionSummary(snap stats.Snapshot) string {
	icon := "✓"
	if failures(snap) > 0 {
		icon = "✗"
	}
	return fmt.Sprintf("done %s  %s  errors %d", icon, summaryBody(snap), failures(snap))
}

func styledSummary(snap stats.Snapshot, th Theme) string {
	head := th.Success.Render("done ✓")
	tail := th.Muted.Render("errors 0")
	if n := failures(snap); n > 0 {
		head = th.Failure.Render("done ✗")
		tail = th.Failure.Render(fmt.Sprintf("errors %d", n))
	}
	return head + "  " + summaryBody(snap) + "  " + tail
}

func summaryBody(snap stats.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "files %s", count(snap.FilesCopied))
	if snap.LinksCreated > 0 {
		fmt.Fprintf(&b, "  links %s", count(snap.LinksCreated))
	}
	if snap.FilesSkipped > 0 {
		fmt.Fprintf(&b, "  skipped %s", count(snap.FilesSkipped))
	}
	fmt.Fprintf(&b, "  size %s  avg %s  time %s",
		size(snap.BytesCopied), throughput(averageRate(snap)), clock(snap.Elapsed))
	if snap.FilesVerified > 0 || snap.FilesVerifyFailed > 0 {
		fmt.Fprintf(&b, "  verified %s", count(snap.FilesVerified))
	}
	return b.String()
}

func failures(snap stats.Snapshot) int64 {
	return snap.FilesFailed + snap.FilesVerifyFailed
}
