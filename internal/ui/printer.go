package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Detail is one "key: value" line of a header or result box. A slice keeps
// the order the command chose.
type Detail struct {
	Key   string
	Value string
}

// Printer writes styled command output to a writer
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a Printer for w. If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{
		out:   w,
		width: GetTerminalWidth(),
	}
}

// Width returns the content width used by this printer
func (p *Printer) Width() int {
	return p.width
}

// SetWidth overrides the detected width
func (p *Printer) SetWidth(width int) *Printer {
	p.width = clampWidth(width)
	return p
}

// Writer returns the underlying writer
func (p *Printer) Writer() io.Writer {
	return p.out
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Printf writes formatted content
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

// Newline prints an empty line
func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// PrintHeader prints a command header box
func (p *Printer) PrintHeader(title, command string, params []Detail) {
	p.Println(RenderHeader(title, command, params, p.width))
}

// PrintSuccess prints a success result box
func (p *Printer) PrintSuccess(title string, details []Detail) {
	p.Println(RenderSuccessBox(title, details, p.width))
}

// PrintError prints an error result box with troubleshooting tips
func (p *Printer) PrintError(title string, err error, troubleshooting []string) {
	p.Println(RenderErrorBox(title, err, troubleshooting, p.width))
}

// PrintTable prints rows under headers
func (p *Printer) PrintTable(headers []string, rows [][]string) {
	p.Println(RenderTable(headers, rows))
}

// PrintChecklist prints a doctor-style list of checks
func (p *Printer) PrintChecklist(checks []Check) {
	p.Println(RenderChecklist(checks))
}

// RenderHeader renders a command header box
func RenderHeader(title, command string, params []Detail, width int) string {
	top := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(strings.ToUpper(title)),
		commandStyle.Render(command),
	)
	if len(params) == 0 {
		return framed(lipgloss.RoundedBorder(), accent, width, 0, 0).Render(top)
	}

	lines := make([]string, 0, len(params))
	for _, d := range params {
		lines = append(lines, paramKeyStyle.Render(d.Key+":")+" "+paramValueStyle.Render(d.Value))
	}

	dividerWidth := width - 6 // border and padding
	if dividerWidth < 10 {
		dividerWidth = 10
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		top,
		divider(dividerWidth, "─"),
		strings.Join(lines, "\n"),
	)
	return framed(lipgloss.RoundedBorder(), accent, width, 0, 0).Render(content)
}

// RenderSuccessBox renders a success result box
func RenderSuccessBox(title string, details []Detail, width int) string {
	lines := []string{
		successTitleStyle.Render(PassMarker + "  SUCCESS  ─  " + title),
	}
	if len(details) > 0 {
		lines = append(lines, "")
	}
	for _, d := range details {
		lines = append(lines, detailKeyStyle.Render(d.Key+":")+" "+detailValueStyle.Render(d.Value))
	}
	return framed(lipgloss.DoubleBorder(), green, width, 1, 2).Render(strings.Join(lines, "\n"))
}

// RenderErrorBox renders an error result box with troubleshooting
func RenderErrorBox(title string, err error, troubleshooting []string, width int) string {
	lines := []string{
		errorTitleStyle.Render(FailMarker + "  FAILED  ─  " + title),
	}

	if err != nil {
		lines = append(lines, "", errorTextStyle.Render("Error: "+err.Error()))
	}

	if len(troubleshooting) > 0 {
		tips := []string{tipsTitleStyle.Render("Troubleshooting:"), ""}
		for _, tip := range troubleshooting {
			tips = append(tips, tipStyle.Render("• "+tip))
		}
		lines = append(lines, "", framed(lipgloss.RoundedBorder(), gray, width-6, 0, 1).Render(strings.Join(tips, "\n")))
	}

	return framed(lipgloss.DoubleBorder(), red, width, 1, 2).Render(strings.Join(lines, "\n"))
}

// RenderTable renders a plain column-aligned table
func RenderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	renderRow := func(cells []string, style lipgloss.Style) string {
		parts := make([]string, len(widths))
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			parts[i] = style.Width(widths[i]).Render(cell)
		}
		return "  " + strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	lines := []string{renderRow(headers, tableHeadStyle)}
	for _, row := range rows {
		lines = append(lines, renderRow(row, tableCellStyle))
	}
	return strings.Join(lines, "\n")
}
