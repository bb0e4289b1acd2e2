// Package ui holds the lipgloss palette and the plain (scrollback-friendly)
// output helpers shared by the CLI commands.
package ui

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Status prints a bold "Key value" line, e.g. "Project my-keyboard".
func Status(w io.Writer, key, value string) {
	fmt.Fprintf(w, "%s %s\n", StatusStyle.Render(key), value)
}

// Header prints a section header.
func Header(w io.Writer, text string) {
	fmt.Fprintf(w, "\n%s\n", HeaderStyle.Render("==> "+text))
}

// Infof prints an informational line.
func Infof(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, InfoStyle.Render(fmt.Sprintf(format, args...)))
}

// Successf prints a success line.
func Successf(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, SuccessStyle.Render(fmt.Sprintf(format, args...)))
}

// Errorf prints an error line with a red "error:" prefix.
func Errorf(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("error:"), fmt.Sprintf(format, args...))
}

// ListItem prints an indented list entry.
func ListItem(w io.Writer, item string) {
	fmt.Fprintf(w, "  %s %s\n", DimStyle.Render("-"), item)
}

// FormatDuration renders a duration as "1m 23s" or "4.2s".
func FormatDuration(d time.Duration) string {
	secs := int(d.Seconds())
	if secs >= 60 {
		return fmt.Sprintf("%dm %ds", secs/60, secs%60)
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// Summary prints the final succeeded/failed counts.
func Summary(w io.Writer, succeeded, failed int, total time.Duration) {
	fmt.Fprintln(w)
	timeStr := " in " + FormatDuration(total)
	if failed == 0 {
		fmt.Fprintf(w, "%s %d succeeded, %d failed%s\n",
			BoldStyle.Foreground(Success).Render("Build complete:"), succeeded, failed, timeStr)
		return
	}
	fmt.Fprintf(w, "%s %s, %s%s\n",
		BoldStyle.Foreground(Error).Render("Build complete:"),
		SuccessStyle.Render(fmt.Sprintf("%d succeeded", succeeded)),
		ErrorStyle.Render(fmt.Sprintf("%d failed", failed)),
		timeStr)
}

// BuildErrorOutput prints a captured build log, highlighting error and
// warning lines so the toolchain failure is visible in long output.
func BuildErrorOutput(w io.Writer, target, output string) {
	fmt.Fprintln(w, DimStyle.Render("--- Output for "+target+" ---"))
	for _, line := range strings.Split(output, "\n") {
		switch {
		case strings.Contains(line, "error:") || strings.Contains(line, "Error") || strings.Contains(line, "FATAL"):
			fmt.Fprintln(w, ErrorStyle.Render(line))
		case strings.Contains(line, "warning:"):
			fmt.Fprintln(w, WarningStyle.Render(line))
		default:
			fmt.Fprintln(w, DimStyle.Render(line))
		}
	}
	fmt.Fprintln(w, DimStyle.Render("--- End output ---"))
}
