package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/govee-panel/internal/color"
	"github.com/muurk/govee-panel/internal/credential"
	"github.com/muurk/govee-panel/internal/panel"
	"github.com/muurk/govee-panel/internal/relay"
)

// Messages for async operations
type (
	loadDoneMsg struct {
		err error
	}

	keySavedMsg struct {
		err error
	}

	commandDoneMsg struct {
		deviceID string
		err      error
	}
)

// EditMode is the inline editor that currently owns the keyboard
type EditMode int

const (
	EditNone EditMode = iota
	EditKey
	EditColor
)

// dashboardKeyMap defines key bindings for the panel screen
type dashboardKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	Color   key.Binding
	Poll    key.Binding
	Reload  key.Binding
	APIKey  key.Binding
	Help    key.Binding
	Quit    key.Binding
	Confirm key.Binding
	Cancel  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k dashboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Color, k.Poll, k.APIKey, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k dashboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Toggle, k.Color},
		{k.Poll, k.Reload, k.APIKey},
		{k.Confirm, k.Cancel, k.Help, k.Quit},
	}
}

// editorKeyMap is shown while an inline editor is open
type editorKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

func (k editorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Cancel}
}

func (k editorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Confirm, k.Cancel}}
}

func newDashboardKeyMap() dashboardKeyMap {
	return dashboardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "tab"),
			key.WithHelp("↓/tab", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "power"),
		),
		Color: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "color"),
		),
		Poll: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh state"),
		),
		Reload: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reload devices"),
		),
		APIKey: key.NewBinding(
			key.WithKeys("k"),
			key.WithHelp("k", "api key"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "save"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// DashboardModel is the device panel screen
type DashboardModel struct {
	Session *panel.Session
	ctx     context.Context

	Width  int
	Height int

	Cursor      int
	Loading     bool
	ShowingHelp bool
	Editing     EditMode

	KeyInput   textinput.Model
	ColorInput textinput.Model
	Spinner    spinner.Model

	// Status is the one-line result of the last action
	Status      string
	StatusError bool

	QuitRequested bool

	Help       help.Model
	Keys       dashboardKeyMap
	EditorKeys editorKeyMap
}

// NewDashboardModel creates the panel screen for session. ctx bounds the
// relay calls the screen starts.
func NewDashboardModel(ctx context.Context, session *panel.Session) DashboardModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	keyInput := textinput.New()
	keyInput.Placeholder = "paste x-functions-key"
	keyInput.EchoMode = textinput.EchoPassword
	keyInput.EchoCharacter = '•'
	keyInput.CharLimit = 256
	keyInput.Width = 48

	colorInput := textinput.New()
	colorInput.Placeholder = "#RRGGBB"
	colorInput.CharLimit = 7
	colorInput.Width = 10

	keys := newDashboardKeyMap()

	return DashboardModel{
		Session:    session,
		ctx:        ctx,
		Loading:    true,
		KeyInput:   keyInput,
		ColorInput: colorInput,
		Spinner:    s,
		Help:       help.New(),
		Keys:       keys,
		EditorKeys: editorKeyMap{Confirm: keys.Confirm, Cancel: keys.Cancel},
	}
}

// Init starts the spinner and the panel load
func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(m.Spinner.Tick, loadCmd(m.ctx, m.Session, false))
}

func loadCmd(ctx context.Context, session *panel.Session, refresh bool) tea.Cmd {
	return func() tea.Msg {
		if refresh {
			return loadDoneMsg{err: session.Refresh(ctx)}
		}
		return loadDoneMsg{err: session.Load(ctx)}
	}
}

func saveKeyCmd(session *panel.Session, key string) tea.Cmd {
	return func() tea.Msg {
		return keySavedMsg{err: session.SetKey(key)}
	}
}

func toggleCmd(session *panel.Session, id string, on bool) tea.Cmd {
	return func() tea.Msg {
		return commandDoneMsg{deviceID: id, err: session.Toggle(id, on)}
	}
}

func colorCmd(session *panel.Session, id string, hex string) tea.Cmd {
	return func() tea.Msg {
		return commandDoneMsg{deviceID: id, err: session.SetColor(id, hex)}
	}
}

// Update handles messages and updates the model
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case loadDoneMsg:
		m.Loading = false
		m.clampCursor()
		var regErr *panel.RegistryError
		if errors.As(msg.err, &regErr) {
			m.setStatus("Device list unavailable", true)
		} else if msg.err != nil {
			m.setStatus(msg.err.Error(), true)
		} else {
			m.setStatus(fmt.Sprintf("Loaded %d devices", len(m.Session.Renderer.Blocks())), false)
		}
		return m, nil

	case keySavedMsg:
		if msg.err != nil {
			m.setStatus("Could not save key: "+msg.err.Error(), true)
			return m, nil
		}
		m.setStatus("API key saved", false)
		// A key fix is the usual way out of a registry failure
		if m.Session.Store.RegistryError() != nil {
			m.Loading = true
			return m, tea.Batch(m.Spinner.Tick, loadCmd(m.ctx, m.Session, true))
		}
		return m, nil

	case commandDoneMsg:
		if msg.err != nil {
			m.setStatus(msg.err.Error(), true)
		}
		return m, nil

	case panelEventMsg:
		m.handleEvent(msg.event)
		return m, nil
	}

	if m.ShowingHelp {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.ShowingHelp = false
		}
		return m, nil
	}

	switch m.Editing {
	case EditKey:
		return m.updateKeyEditor(msg)
	case EditColor:
		return m.updateColorEditor(msg)
	}

	return m.updateNormalMode(msg)
}

func (m DashboardModel) updateNormalMode(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	blocks := m.Session.Renderer.Blocks()

	switch {
	case key.Matches(keyMsg, m.Keys.Quit):
		m.QuitRequested = true
		return m, nil

	case key.Matches(keyMsg, m.Keys.Help):
		m.ShowingHelp = true

	case key.Matches(keyMsg, m.Keys.Up):
		if len(blocks) > 0 {
			m.Cursor = (m.Cursor - 1 + len(blocks)) % len(blocks)
		}

	case key.Matches(keyMsg, m.Keys.Down):
		if len(blocks) > 0 {
			m.Cursor = (m.Cursor + 1) % len(blocks)
		}

	case key.Matches(keyMsg, m.Keys.Toggle):
		block := m.selected(blocks)
		if block == nil {
			return m, nil
		}
		return m, toggleCmd(m.Session, block.DeviceID, !block.Toggle.Checked())

	case key.Matches(keyMsg, m.Keys.Color):
		block := m.selected(blocks)
		if block == nil || !block.HasColor() {
			m.setStatus("Only lights have a color", true)
			return m, nil
		}
		m.Editing = EditColor
		m.ColorInput.SetValue(block.Color.Value())
		m.ColorInput.CursorEnd()
		return m, m.ColorInput.Focus()

	case key.Matches(keyMsg, m.Keys.Poll):
		m.Session.PollAll()
		m.setStatus("Refreshing state…", false)

	case key.Matches(keyMsg, m.Keys.Reload):
		m.Loading = true
		return m, tea.Batch(m.Spinner.Tick, loadCmd(m.ctx, m.Session, true))

	case key.Matches(keyMsg, m.Keys.APIKey):
		m.Editing = EditKey
		m.KeyInput.SetValue(m.Session.Key())
		m.KeyInput.CursorEnd()
		return m, m.KeyInput.Focus()
	}

	return m, nil
}

func (m DashboardModel) updateKeyEditor(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.Keys.Cancel):
			m.Editing = EditNone
			m.KeyInput.Blur()
			return m, nil
		case key.Matches(keyMsg, m.Keys.Confirm):
			m.Editing = EditNone
			m.KeyInput.Blur()
			return m, saveKeyCmd(m.Session, strings.TrimSpace(m.KeyInput.Value()))
		}
	}

	var cmd tea.Cmd
	m.KeyInput, cmd = m.KeyInput.Update(msg)
	return m, cmd
}

func (m DashboardModel) updateColorEditor(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.Keys.Cancel):
			m.Editing = EditNone
			m.ColorInput.Blur()
			return m, nil
		case key.Matches(keyMsg, m.Keys.Confirm):
			value := strings.TrimSpace(m.ColorInput.Value())
			if _, err := color.ExpandShorthand(value); err != nil {
				m.setStatus(err.Error(), true)
				return m, nil
			}
			m.Editing = EditNone
			m.ColorInput.Blur()
			block := m.selected(m.Session.Renderer.Blocks())
			if block == nil {
				return m, nil
			}
			return m, colorCmd(m.Session, block.DeviceID, value)
		}
	}

	var cmd tea.Cmd
	m.ColorInput, cmd = m.ColorInput.Update(msg)
	return m, cmd
}

func (m *DashboardModel) handleEvent(ev panel.Event) {
	switch ev.Type {
	case panel.EventCommandFailed:
		m.setStatus(fmt.Sprintf("%s: %s", deviceName(ev), relay.ShortMessage(ev.Err)), true)
	case panel.EventCommandSent:
		m.setStatus(fmt.Sprintf("%s: command sent", deviceName(ev)), false)
	case panel.EventRegistryFailed:
		m.clampCursor()
	}
}

func deviceName(ev panel.Event) string {
	if ev.Record.Summary.Name != "" {
		return ev.Record.Summary.Name
	}
	return ev.DeviceID
}

func (m *DashboardModel) setStatus(text string, isErr bool) {
	m.Status = text
	m.StatusError = isErr
}

func (m *DashboardModel) clampCursor() {
	n := len(m.Session.Renderer.Blocks())
	if m.Cursor >= n {
		m.Cursor = n - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

func (m DashboardModel) selected(blocks []*panel.ControlBlock) *panel.ControlBlock {
	if m.Cursor < 0 || m.Cursor >= len(blocks) {
		return nil
	}
	return blocks[m.Cursor]
}

// View renders the panel
func (m DashboardModel) View() string {
	if m.ShowingHelp {
		return RenderModal(m.renderHelpModalContent(), m.Width, m.Height)
	}

	var helpText string
	if m.Editing != EditNone {
		helpText = m.Help.View(m.EditorKeys)
	} else {
		helpText = m.Help.View(m.Keys)
	}

	return RenderApplicationContainer(m.renderContent(), helpText, m.Width, m.Height)
}

func (m DashboardModel) renderContent() string {
	sections := []string{m.renderKeyField()}

	if m.Loading {
		sections = append(sections, "", m.Spinner.View()+" Loading devices…")
	} else if regErr := m.Session.Store.RegistryError(); regErr != nil {
		sections = append(sections, "", m.renderRegistryError(regErr))
	} else {
		sections = append(sections, "", m.renderCards())
	}

	if m.Status != "" {
		style := StatusStyle
		if m.StatusError {
			style = StatusErrorStyle
		}
		sections = append(sections, "", style.Render(m.Status))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m DashboardModel) renderKeyField() string {
	label := BlurredInputStyle.Render("API key  ")
	if m.Editing == EditKey {
		label = FocusedInputStyle.Render("API key  ")
		return InlineEditorStyle().Render(label + m.KeyInput.View())
	}

	value := SubtitleStyle.Render("not set (press k)")
	if stored := m.Session.Key(); stored != "" {
		value = strings.Repeat("•", min(len(stored), 12))
	}
	if err := m.Session.StoreError(); err != nil && credential.IsStoreError(err) {
		value += "  " + CardErrorStyle.Render("storage error")
	}
	return "  " + label + value
}

func (m DashboardModel) renderRegistryError(regErr *panel.RegistryError) string {
	box := ErrorBoxStyle.Render("✗ " + relay.ShortMessage(regErr.Err))
	hint := HintStyle.Render(relay.TroubleshootingHint(regErr.Err))
	return lipgloss.JoinVertical(lipgloss.Left, box, hint, "", SubtitleStyle.Render("Press R to retry"))
}

func (m DashboardModel) renderCards() string {
	blocks := m.Session.Renderer.Blocks()
	if len(blocks) == 0 {
		return SubtitleStyle.Render("No lights or sockets on this account.")
	}

	cards := make([]string, 0, len(blocks))
	for i, b := range blocks {
		rec, _ := m.Session.Store.Get(b.DeviceID)
		cards = append(cards, m.renderCard(b, rec, i == m.Cursor))
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func (m DashboardModel) renderCard(b *panel.ControlBlock, rec panel.Record, selected bool) string {
	style := CardStyle
	if selected {
		style = SelectedCardStyle
	}

	title := lipgloss.JoinHorizontal(lipgloss.Left,
		Icon(b.Icon), " ",
		lipgloss.NewStyle().Bold(true).Render(b.Name), " ",
		SKUBadgeStyle.Render(b.SKU),
	)

	controls := RenderToggle(b.Toggle.Checked())
	if b.HasColor() {
		if selected && m.Editing == EditColor {
			controls += "  " + InlineEditorStyle().Render(m.ColorInput.View())
		} else {
			controls += "  " + RenderSwatch(b.Color.Value())
		}
	}

	lines := []string{title, controls}

	switch {
	case rec.LastError != nil:
		lines = append(lines, CardErrorStyle.Render("⚠ "+relay.ShortMessage(rec.LastError)))
	case rec.Pending:
		lines = append(lines, PendingStyle.Render("… waiting for device"))
	case rec.State == nil:
		lines = append(lines, SubtitleStyle.Render("state unknown"))
	}

	return style.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m DashboardModel) renderHelpModalContent() string {
	titleStyle := lipgloss.NewStyle().Foreground(PrimaryColor).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(SecondaryColor).Bold(true)

	keys := lipgloss.JoinVertical(lipgloss.Left,
		subtitleStyle.Render("Keys:"),
		"  ↑/↓ tab   move between devices",
		"  space     switch power",
		"  c         edit light color (#RGB or #RRGGBB)",
		"  r         fetch device state now",
		"  R         reload the device list",
		"  k         edit the API key",
		"  q         quit",
	)

	states := lipgloss.JoinVertical(lipgloss.Left,
		subtitleStyle.Render("Card status:"),
		"  … waiting   change sent, not yet confirmed by a poll",
		"  ⚠ error     last request for this device failed",
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("GOVEE PANEL HELP"),
		"",
		keys,
		"",
		states,
		"",
		"Press any key to close this help screen",
	)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Padding(1, 2).
		Width(64).
		Render(content)
}
