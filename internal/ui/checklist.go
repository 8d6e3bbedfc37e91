package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// CheckStatus is the outcome of one diagnostic check
type CheckStatus int

const (
	CheckPass CheckStatus = iota
	CheckWarn
	CheckFail
	CheckSkip
)

// String returns a lowercase name for the status
func (s CheckStatus) String() string {
	switch s {
	case CheckPass:
		return "pass"
	case CheckWarn:
		return "warn"
	case CheckFail:
		return "fail"
	case CheckSkip:
		return "skip"
	default:
		return "unknown"
	}
}

// Check is one line of a checklist
type Check struct {
	Name    string
	Status  CheckStatus
	Message string // optional note, e.g. "3 devices"
}

// nameColumn is where markers line up
const nameColumn = 36

// RenderChecklist renders checks as numbered lines with a status marker
func RenderChecklist(checks []Check) string {
	lines := make([]string, 0, len(checks))
	for i, c := range checks {
		lines = append(lines, renderCheck(i+1, len(checks), c))
	}
	return strings.Join(lines, "\n")
}

func renderCheck(n, total int, c Check) string {
	var marker string
	var style lipgloss.Style

	switch c.Status {
	case CheckPass:
		marker, style = PassMarker, passStyle
	case CheckWarn:
		marker, style = WarnMarker, warnStyle
	case CheckFail:
		marker, style = FailMarker, failStyle
	default:
		marker, style = SkipMarker, skipStyle
	}

	var b strings.Builder
	fmt.Fprintf(&b, "  [%d/%d] ", n, total)
	b.WriteString(style.Render(c.Name))

	padding := nameColumn - lipgloss.Width(c.Name)
	if padding < 1 {
		padding = 1
	}
	b.WriteString(strings.Repeat(" ", padding))
	b.WriteString(style.Render(marker))

	if c.Message != "" {
		b.WriteString("  ")
		b.WriteString(noteStyle.Render("(" + c.Message + ")"))
	}
	return b.String()
}

// Failed reports whether any check failed
func Failed(checks []Check) bool {
	for _, c := range checks {
		if c.Status == CheckFail {
			return true
		}
	}
	return false
}
