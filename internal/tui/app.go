package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/govee-panel/internal/panel"
)

// eventBuffer bounds how far the UI may lag behind the panel before events
// are dropped. Views always re-read the store, so a drop only delays a
// status line.
const eventBuffer = 64

// panelEventMsg carries a panel.Event into the Bubble Tea loop
type panelEventMsg struct {
	event panel.Event
}

// waitForEvent blocks until the next panel event arrives
func waitForEvent(events <-chan panel.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return panelEventMsg{event: ev}
	}
}

// AppModel is the top-level model. It owns the event subscription and tears
// the session down on quit.
type AppModel struct {
	Dashboard DashboardModel

	session     *panel.Session
	events      <-chan panel.Event
	unsubscribe func()

	Width  int
	Height int
}

// NewAppModel subscribes to session events and builds the panel screen.
// The session is loaded by Init.
func NewAppModel(ctx context.Context, session *panel.Session) AppModel {
	events, unsubscribe := session.Store.Subscribe(eventBuffer)
	return AppModel{
		Dashboard:   NewDashboardModel(ctx, session),
		session:     session,
		events:      events,
		unsubscribe: unsubscribe,
	}
}

// Init loads the panel and starts listening for events
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.Dashboard.Init(), waitForEvent(m.events))
}

// Update routes messages to the panel screen
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.teardown()
			return m, tea.Quit
		}

	case panelEventMsg:
		updated, cmd := m.Dashboard.Update(msg)
		m.Dashboard = updated.(DashboardModel)
		return m, tea.Batch(cmd, waitForEvent(m.events))
	}

	updated, cmd := m.Dashboard.Update(msg)
	m.Dashboard = updated.(DashboardModel)

	if m.Dashboard.QuitRequested {
		m.teardown()
		return m, tea.Quit
	}
	return m, cmd
}

func (m AppModel) teardown() {
	m.session.Close()
	m.unsubscribe()
}

// View renders the current screen
func (m AppModel) View() string {
	return m.Dashboard.View()
}

// Run starts the panel in the alternate screen and blocks until the user
// quits
func Run(ctx context.Context, session *panel.Session) error {
	program := tea.NewProgram(NewAppModel(ctx, session), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}
