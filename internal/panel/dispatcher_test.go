package panel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/govee-panel/internal/color"
	"github.com/muurk/govee-panel/internal/relay"
)

func setupDispatcher(t *testing.T, fake *fakeRelay, devices ...relay.DeviceSummary) (*Store, *Renderer) {
	t.Helper()
	store := NewStore()
	renderer := NewRenderer()
	d := NewDispatcher(fake, store)
	for _, b := range renderer.Render(devices) {
		d.Bind(context.Background(), b)
	}
	store.Reset(devices)
	return store, renderer
}

func TestDispatch_ToggleSendsOnePowerCommand(t *testing.T) {
	fake := newFakeRelay()
	store, renderer := setupDispatcher(t, fake, socket("B", "Heater"))
	store.ApplyPoll("B", State{MACAddress: "CC:DD"})

	block, _ := renderer.Block("B")
	block.Toggle.Change(true)

	assert.Equal(t, []string{"CC:DD/power/on"}, fake.sent())

	block.Toggle.Change(false)
	assert.Equal(t, []string{"CC:DD/power/on", "CC:DD/power/off"}, fake.sent())
}

func TestDispatch_FallsBackToIDBeforeFirstPoll(t *testing.T) {
	fake := newFakeRelay()
	_, renderer := setupDispatcher(t, fake, light("A", "Desk"))

	block, _ := renderer.Block("A")
	block.Toggle.Change(true)

	assert.Equal(t, []string{"A/power/on"}, fake.sent())
}

func TestDispatch_ColorExpandsShorthand(t *testing.T) {
	fake := newFakeRelay()
	store, renderer := setupDispatcher(t, fake, light("A", "Desk"))
	store.ApplyPoll("A", State{MACAddress: "AA:BB"})

	block, _ := renderer.Block("A")
	block.Color.Change("#0af")

	assert.Equal(t, []string{"AA:BB/color/0/170/255"}, fake.sent())

	rec, _ := store.Get("A")
	require.NotNil(t, rec.State.Color)
	assert.Equal(t, color.RGB{R: 0, G: 170, B: 255}, *rec.State.Color)
	assert.True(t, rec.Pending)
}

func TestDispatch_InvalidColorSendsNothing(t *testing.T) {
	fake := newFakeRelay()
	store, _ := setupDispatcher(t, fake, light("A", "Desk"))
	events, cancel := store.Subscribe(8)
	defer cancel()

	d := NewDispatcher(fake, store)
	err := d.Color(context.Background(), "A", "#12")

	assert.True(t, color.IsParseError(err))
	assert.Empty(t, fake.sent())

	ev := <-events
	assert.Equal(t, EventCommandFailed, ev.Type)
}

func TestDispatch_FailureKeepsOptimisticValue(t *testing.T) {
	fake := newFakeRelay()
	fake.commandErr = errOffline
	store, renderer := setupDispatcher(t, fake, socket("B", "Heater"))

	block, _ := renderer.Block("B")
	block.Toggle.Change(true)

	assert.True(t, block.Toggle.Checked(), "no rollback")
	rec, _ := store.Get("B")
	assert.True(t, rec.State.IsOn)
	assert.ErrorIs(t, rec.LastError, errOffline)
}

func TestDispatch_EventsOrder(t *testing.T) {
	fake := newFakeRelay()
	store, renderer := setupDispatcher(t, fake, socket("B", "Heater"))
	events, cancel := store.Subscribe(8)
	defer cancel()

	block, _ := renderer.Block("B")
	block.Toggle.Change(true)

	assert.Equal(t, EventPending, (<-events).Type)
	assert.Equal(t, EventCommandSent, (<-events).Type)
}

func TestDispatch_ListenersPerControl(t *testing.T) {
	fake := newFakeRelay()
	_, renderer := setupDispatcher(t, fake, socket("B", "Heater"), socket("C", "Lamp"))

	block, _ := renderer.Block("C")
	block.Toggle.Change(true)

	assert.Equal(t, []string{"C/power/on"}, fake.sent())
}
