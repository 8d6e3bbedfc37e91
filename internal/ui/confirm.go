package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Confirm shows a warning box on out and reads one line from in. It returns
// true only if the user typed answer (case-insensitive).
func Confirm(in io.Reader, out io.Writer, title string, warnings []string, answer string) bool {
	prompt := lipgloss.NewStyle().Foreground(orange).Bold(true)

	lines := []string{prompt.Render("⚠  WARNING  ─  " + title), ""}
	for _, w := range warnings {
		lines = append(lines, paramValueStyle.Render("• "+w))
	}

	box := framed(lipgloss.DoubleBorder(), orange, GetTerminalWidth(), 1, 2).Render(strings.Join(lines, "\n"))

	_, _ = fmt.Fprintln(out, box)
	_, _ = fmt.Fprint(out, prompt.Render(fmt.Sprintf("Type %q and press Enter to continue: ", answer)))

	input, err := bufio.NewReader(in).ReadString('\n')
	_, _ = fmt.Fprintln(out)
	if err != nil && input == "" {
		return false
	}

	if strings.EqualFold(strings.TrimSpace(input), answer) {
		return true
	}

	_, _ = fmt.Fprintln(out, skipStyle.Render("  Operation cancelled."))
	return false
}
