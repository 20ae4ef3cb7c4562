// Package tui renders results for the terminal: the result grid, summary
// line, file lists, and a spinner while mirrors are probed and pages load.
package tui

import (
	"fmt"

	"github.com/litescript/torrench/internal/theme"
)

// GetStyles returns current themed styles
func GetStyles() theme.Styles {
	return theme.Current
}

// TruncateString truncates a string to max runes with ellipsis
func TruncateString(s string, max int) string {
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// FormatSize formats bytes to human readable size
func FormatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// Success, Failure, and Muted style one-line messages.
func Success(s string) string { return GetStyles().Success.Render(s) }
func Failure(s string) string { return GetStyles().Error.Render(s) }
func Muted(s string) string   { return GetStyles().Muted.Render(s) }
