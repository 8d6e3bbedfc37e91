package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Output width bounds
const (
	MinTerminalWidth = 60
	MaxContentWidth  = 100
)

var (
	accent = lipgloss.Color("#7D56F4")
	green  = lipgloss.Color("#43BF6D")
	red    = lipgloss.Color("#FF5555")
	orange = lipgloss.Color("#FFA500")
	gray   = lipgloss.Color("#626262")
	white  = lipgloss.Color("#FFFFFF")
)

var (
	titleStyle      = lipgloss.NewStyle().Foreground(white).Bold(true).PaddingLeft(2)
	commandStyle    = lipgloss.NewStyle().Foreground(gray).PaddingLeft(2)
	paramKeyStyle   = lipgloss.NewStyle().Foreground(gray).PaddingLeft(2)
	paramValueStyle = lipgloss.NewStyle().Foreground(white)

	successTitleStyle = lipgloss.NewStyle().Foreground(green).Bold(true)
	errorTitleStyle   = lipgloss.NewStyle().Foreground(red).Bold(true)
	errorTextStyle    = lipgloss.NewStyle().Foreground(red)
	detailKeyStyle    = lipgloss.NewStyle().Foreground(gray).Width(15)
	detailValueStyle  = lipgloss.NewStyle().Foreground(white)
	tipsTitleStyle    = lipgloss.NewStyle().Foreground(gray).Bold(true)
	tipStyle          = lipgloss.NewStyle().Foreground(gray)

	tableHeadStyle = lipgloss.NewStyle().Foreground(accent).Bold(true)
	tableCellStyle = lipgloss.NewStyle().Foreground(white)

	passStyle = lipgloss.NewStyle().Foreground(green)
	warnStyle = lipgloss.NewStyle().Foreground(orange)
	failStyle = lipgloss.NewStyle().Foreground(red).Bold(true)
	skipStyle = lipgloss.NewStyle().Foreground(gray)
	noteStyle = lipgloss.NewStyle().Foreground(gray).Italic(true)
)

// Status markers
const (
	PassMarker = "✓"
	WarnMarker = "!"
	FailMarker = "✗"
	SkipMarker = "·"
)

// GetTerminalWidth returns the stdout width clamped to
// [MinTerminalWidth, MaxContentWidth]; MinTerminalWidth when stdout is not
// a terminal
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return MinTerminalWidth
	}
	return clampWidth(width)
}

func clampWidth(width int) int {
	return max(MinTerminalWidth, min(width, MaxContentWidth))
}

// framed draws a border of the given color around content that fills width
func framed(border lipgloss.Border, color lipgloss.Color, width, padY, padX int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(border).
		BorderForeground(color).
		Width(width-2).
		Padding(padY, padX)
}

func divider(width int, char string) string {
	return lipgloss.NewStyle().Foreground(accent).Render(strings.Repeat(char, width))
}
