// Package ui renders the compilemode command's terminal output.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Style definitions
var (
	// Colors
	primaryColor   = lipgloss.Color("#3b82f6") // Blue
	secondaryColor = lipgloss.Color("#64748b") // Gray
	successColor   = lipgloss.Color("#10b981") // Green
	warningColor   = lipgloss.Color("#f59e0b") // Yellow
	errorColor     = lipgloss.Color("#ef4444") // Red
	mutedColor     = lipgloss.Color("#94a3b8") // Muted gray

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	labelStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 2)
)

// Title renders a heading line.
func Title(s string) string {
	return titleStyle.Render(s)
}

// Success renders a successful step.
func Success(s string) string {
	return successStyle.Render("✓ ") + s
}

// Warning renders a warning line.
func Warning(s string) string {
	return warningStyle.Render("! " + s)
}

// Error renders a failed step.
func Error(s string) string {
	return errorStyle.Render("✗ ") + s
}

// Muted renders secondary information.
func Muted(s string) string {
	return mutedStyle.Render(s)
}

// FileResult is one line of a build report.
type FileResult struct {
	Path      string
	Templates int
	Nodes     int
	Cached    bool
	Err       error
}

// FileLine renders the outcome of compiling one file.
func FileLine(r FileResult) string {
	if r.Err != nil {
		return Error(r.Path) + "\n    " + mutedStyle.Render(r.Err.Error())
	}
	detail := fmt.Sprintf("%d templates, %d dynamic nodes", r.Templates, r.Nodes)
	if r.Cached {
		detail += ", cached"
	}
	return Success(r.Path) + " " + mutedStyle.Render("("+detail+")")
}

// Summary renders the boxed report printed after a build.
func Summary(results []FileResult, elapsed time.Duration) string {
	var compiled, cached, failed, templates int
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
		case r.Cached:
			cached++
		default:
			compiled++
		}
		templates += r.Templates
	}

	rows := []string{
		row("Files", fmt.Sprintf("%d", len(results))),
		row("Compiled", fmt.Sprintf("%d", compiled)),
		row("From cache", fmt.Sprintf("%d", cached)),
		row("Templates", fmt.Sprintf("%d", templates)),
		row("Time", elapsed.Round(time.Millisecond).String()),
	}
	if failed > 0 {
		rows = append(rows, labelStyle.Render(pad("Failed"))+errorStyle.Render(fmt.Sprintf("%d", failed)))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		Title("Compile mode build"),
		boxStyle.Render(strings.Join(rows, "\n")),
	)
}

func row(label, value string) string {
	return labelStyle.Render(pad(label)) + value
}

func pad(label string) string {
	return fmt.Sprintf("%-12s", label)
}
