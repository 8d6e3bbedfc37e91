package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/govee-panel/internal/panel"
	"github.com/muurk/govee-panel/internal/urls"
	"github.com/muurk/govee-panel/internal/version"
)

// Application branding
const (
	AppName   = "GOVEE PANEL"
	GitHubURL = urls.Repository
)

// Layout constants
const (
	MinTerminalWidth = 60
	CardWidth        = 56
)

// Color palette
var (
	PrimaryColor   = lipgloss.Color("#7D56F4") // Purple
	SecondaryColor = lipgloss.Color("#43BF6D") // Green
	WarningColor   = lipgloss.Color("#FFA500") // Orange
	ErrorColor     = lipgloss.Color("#FF0000") // Red

	TextColor      = lipgloss.Color("#FFFFFF")
	SubtleColor    = lipgloss.Color("#626262")
	BorderColor    = lipgloss.Color("#7D56F4")
	HighlightColor = lipgloss.Color("#43BF6D")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Italic(true)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	// Device cards
	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(SubtleColor).
			Padding(0, 1).
			Width(CardWidth)

	SelectedCardStyle = CardStyle.
				BorderForeground(HighlightColor)

	SKUBadgeStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Background(SubtleColor).
			Padding(0, 1)

	ToggleOnStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Bold(true)

	ToggleOffStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	PendingStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	CardErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	FocusedInputStyle = lipgloss.NewStyle().
				Foreground(PrimaryColor).
				Bold(true)

	BlurredInputStyle = lipgloss.NewStyle().
				Foreground(SubtleColor)

	StatusStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor)

	StatusErrorStyle = lipgloss.NewStyle().
				Foreground(ErrorColor)

	ErrorBoxStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ErrorColor).
			Padding(0, 2)

	HintStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			PaddingLeft(2)
)

// Icon returns the glyph for a block icon name
func Icon(name string) string {
	switch name {
	case panel.IconLight:
		return "💡"
	case panel.IconSocket:
		return "🔌"
	default:
		return "•"
	}
}

// RenderToggle renders a power toggle value
func RenderToggle(on bool) string {
	if on {
		return ToggleOnStyle.Render("[● ON ]")
	}
	return ToggleOffStyle.Render("[ OFF ○]")
}

// RenderSwatch renders a small block filled with hex, followed by the value.
// An empty hex means the color is not known yet.
func RenderSwatch(hex string) string {
	if hex == "" {
		return ToggleOffStyle.Render("  ?  ")
	}
	swatch := lipgloss.NewStyle().
		Background(lipgloss.Color(hex)).
		Render("    ")
	return swatch + " " + hex
}

// InlineEditorStyle is used while a field is being edited in place
func InlineEditorStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.Border{
			Top:    "━",
			Bottom: "━",
			Left:   "┃",
			Right:  "┃",
		}).
		BorderForeground(PrimaryColor).
		Padding(0, 1)
}

func buildHeaderContent() string {
	left := lipgloss.NewStyle().
		Foreground(TextColor).
		Bold(true).
		Render(AppName + " " + version.Version)

	right := lipgloss.NewStyle().
		Foreground(SubtleColor).
		Render(GitHubURL)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
}

// RenderApplicationContainer wraps screen content with the header, a footer
// holding helpText and an outer border filling the terminal.
func RenderApplicationContainer(content string, helpText string, terminalWidth int, terminalHeight int) string {
	if terminalWidth < MinTerminalWidth {
		terminalWidth = MinTerminalWidth
	}
	if terminalHeight < 10 {
		terminalHeight = 10
	}

	headerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderForeground(BorderColor).
		Width(terminalWidth-4).
		Padding(0, 1)

	footerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderForeground(BorderColor).
		Width(terminalWidth-4).
		Padding(0, 1)

	contentStyle := lipgloss.NewStyle().
		Width(terminalWidth-4).
		Padding(0, 1)

	inner := lipgloss.JoinVertical(
		lipgloss.Left,
		headerStyle.Render(buildHeaderContent()),
		contentStyle.Render(content),
		footerStyle.Render(lipgloss.NewStyle().Foreground(SubtleColor).Render(helpText)),
	)

	bordered := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(BorderColor).
		Width(terminalWidth - 2).
		Height(terminalHeight - 2).
		AlignVertical(lipgloss.Top).
		Render(inner)

	return lipgloss.Place(terminalWidth, terminalHeight, lipgloss.Left, lipgloss.Top, bordered)
}

// RenderModal centers modalContent over a dimmed background
func RenderModal(modalContent string, terminalWidth int, terminalHeight int) string {
	return lipgloss.Place(
		terminalWidth,
		terminalHeight,
		lipgloss.Center,
		lipgloss.Center,
		modalContent,
		lipgloss.WithWhitespaceChars("░"),
		lipgloss.WithWhitespaceForeground(lipgloss.Color("240")),
	)
}
