package tui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/govee-panel/internal/credential"
	"github.com/muurk/govee-panel/internal/panel"
	"github.com/muurk/govee-panel/internal/relay"
)

type fakeRelayServer struct {
	mu       sync.Mutex
	requests []string
	keys     []string
	status   int
}

func (f *fakeRelayServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.URL.Path)
	f.keys = append(f.keys, r.Header.Get(relay.AuthHeader))
	status := f.status
	f.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		return
	}

	switch r.URL.Path {
	case "/devices":
		_, _ = w.Write([]byte(`[
			{"device":"A","deviceName":"Desk lamp","sku":"H6008","type":"devices.types.light"},
			{"device":"B","deviceName":"Heater","sku":"H5080","type":"devices.types.socket"}
		]`))
	case "/A/state":
		_, _ = w.Write([]byte(`{"MACAddress":"AA:BB","On":true,"Color":"rgb(255,0,0)"}`))
	case "/B/state":
		_, _ = w.Write([]byte(`{"MACAddress":"CC:DD","On":false}`))
	default:
		_, _ = w.Write([]byte(`{}`))
	}
}

// seen reports whether any of paths was requested. Commands address a
// device by MAC once its state has been polled, by id before that.
func (f *fakeRelayServer) seen(paths ...string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.requests {
		for _, want := range paths {
			if p == want {
				return true
			}
		}
	}
	return false
}

func newTestDashboard(t *testing.T, fake *fakeRelayServer) (DashboardModel, *credential.MemoryStore) {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	store := credential.NewMemoryStore()
	creds := credential.NewAdapter(store)
	session := panel.NewSession(creds, relay.NewClient(server.URL, creds), panel.Options{Mode: panel.ModeOneShot})
	t.Cleanup(session.Close)

	m := NewDashboardModel(context.Background(), session)
	m.Width, m.Height = 100, 40
	return m, store
}

// load runs the initial load synchronously
func load(t *testing.T, m DashboardModel) DashboardModel {
	t.Helper()
	msg := loadCmd(m.ctx, m.Session, false)()
	updated, _ := m.Update(msg)
	return updated.(DashboardModel)
}

func press(m DashboardModel, k tea.KeyMsg) (DashboardModel, tea.Cmd) {
	updated, cmd := m.Update(k)
	return updated.(DashboardModel), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestDashboard_LoadShowsCards(t *testing.T) {
	m, _ := newTestDashboard(t, &fakeRelayServer{})
	m = load(t, m)

	if m.Loading {
		t.Error("Loading should be false after load")
	}

	view := m.View()
	for _, want := range []string{"Desk lamp", "Heater", "H6008", "Loaded 2 devices"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestDashboard_SpaceTogglesSelectedDevice(t *testing.T) {
	fake := &fakeRelayServer{}
	m, _ := newTestDashboard(t, fake)
	m = load(t, m)

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyDown})
	if m.Cursor != 1 {
		t.Fatalf("Cursor = %d, want 1", m.Cursor)
	}

	_, cmd := press(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if cmd == nil {
		t.Fatal("space should return a command")
	}

	done, ok := cmd().(commandDoneMsg)
	if !ok {
		t.Fatal("expected commandDoneMsg")
	}
	if done.err != nil {
		t.Errorf("toggle error = %v", done.err)
	}
	if !fake.seen("/B/power/on", "/CC:DD/power/on") {
		t.Errorf("requests = %v, want /B/power/on", fake.requests)
	}
}

func TestDashboard_ColorEditor(t *testing.T) {
	fake := &fakeRelayServer{}
	m, _ := newTestDashboard(t, fake)
	m = load(t, m)

	m, _ = press(m, runes("c"))
	if m.Editing != EditColor {
		t.Fatalf("Editing = %v, want EditColor", m.Editing)
	}

	m.ColorInput.SetValue("#0f0")
	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Editing != EditNone {
		t.Error("enter should close the editor")
	}
	if cmd == nil {
		t.Fatal("enter should return a command")
	}
	cmd()

	if !fake.seen("/A/color/0/255/0", "/AA:BB/color/0/255/0") {
		t.Errorf("requests = %v, want /A/color/0/255/0", fake.requests)
	}
}

func TestDashboard_ColorEditorRejectsBadHex(t *testing.T) {
	m, _ := newTestDashboard(t, &fakeRelayServer{})
	m = load(t, m)

	m, _ = press(m, runes("c"))
	m.ColorInput.SetValue("#zz")
	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})

	if cmd != nil {
		t.Error("invalid hex should not produce a command")
	}
	if m.Editing != EditColor || !m.StatusError {
		t.Error("editor should stay open with an error status")
	}
}

func TestDashboard_ColorOnSocketRefused(t *testing.T) {
	m, _ := newTestDashboard(t, &fakeRelayServer{})
	m = load(t, m)

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = press(m, runes("c"))

	if m.Editing != EditNone {
		t.Error("sockets have no color editor")
	}
}

func TestDashboard_KeyEditorSavesKey(t *testing.T) {
	fake := &fakeRelayServer{}
	m, store := newTestDashboard(t, fake)
	m = load(t, m)

	m, _ = press(m, runes("k"))
	if m.Editing != EditKey {
		t.Fatalf("Editing = %v, want EditKey", m.Editing)
	}

	m, _ = press(m, runes("secret-1"))
	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should return a save command")
	}

	updated, _ := m.Update(cmd())
	m = updated.(DashboardModel)

	if got, _ := store.Get(credential.StorageKey); got != "secret-1" {
		t.Errorf("stored key = %q, want secret-1", got)
	}
	if m.Status != "API key saved" {
		t.Errorf("Status = %q", m.Status)
	}
}

func TestDashboard_RegistryErrorBanner(t *testing.T) {
	m, _ := newTestDashboard(t, &fakeRelayServer{status: http.StatusUnauthorized})
	m = load(t, m)

	view := m.View()
	if !strings.Contains(view, "No API key set") {
		t.Errorf("view should show the missing key message")
	}
	if !strings.Contains(view, "Press R to retry") {
		t.Errorf("view should offer a retry")
	}
}

func TestDashboard_HelpModal(t *testing.T) {
	m, _ := newTestDashboard(t, &fakeRelayServer{})
	m = load(t, m)

	m, _ = press(m, runes("?"))
	if !m.ShowingHelp {
		t.Fatal("? should open help")
	}
	if !strings.Contains(m.View(), "GOVEE PANEL HELP") {
		t.Error("help modal not rendered")
	}

	m, _ = press(m, runes("x"))
	if m.ShowingHelp {
		t.Error("any key should close help")
	}
}

func TestApp_QuitTearsDown(t *testing.T) {
	m, _ := newTestDashboard(t, &fakeRelayServer{})
	app := NewAppModel(context.Background(), m.Session)
	app.Dashboard = load(t, app.Dashboard)

	updated, cmd := app.Update(runes("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should return tea.Quit")
	}

	if updated.(AppModel).Dashboard.Session.PollNow("A") {
		t.Error("polling should be stopped after quit")
	}
}
