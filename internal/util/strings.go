// Package util holds small text helpers shared by the CLI tables and the viewer.
package util

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Ellipsis marks truncated text.
const Ellipsis = "…"

// Truncate shortens s to at most width terminal columns. Styled text keeps its
// escape sequences; only the visible cells are counted.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	if width == 1 {
		return Ellipsis
	}
	return ansi.Truncate(s, width, Ellipsis)
}

// TruncateLeft keeps the tail of s, which is the useful end of marker paths
// such as "Frame/GBuffer/Draw(12)".
func TruncateLeft(s string, width int) string {
	if width <= 0 {
		return ""
	}
	n := lipgloss.Width(s)
	if n <= width {
		return s
	}
	if width == 1 {
		return Ellipsis
	}
	return Ellipsis + ansi.TruncateLeft(s, n-width+1, "")
}
