package panel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/govee-panel/internal/color"
	"github.com/muurk/govee-panel/internal/relay"
)

func TestRender_LightBlock(t *testing.T) {
	r := NewRenderer()

	blocks := r.Render([]relay.DeviceSummary{light("A", "Desk")})

	require.Len(t, blocks, 1)
	b := blocks[0]
	assert.Equal(t, "A", b.DeviceID)
	assert.Equal(t, "Desk", b.Name)
	assert.Equal(t, "H6008", b.SKU)
	assert.Equal(t, IconLight, b.Icon)
	require.NotNil(t, b.Toggle)
	require.True(t, b.HasColor())
	assert.Equal(t, "A-toggle", b.Toggle.ID())
	assert.Equal(t, "A-color", b.Color.ID())
}

func TestRender_SocketHasNoColor(t *testing.T) {
	blocks := NewRenderer().Render([]relay.DeviceSummary{socket("B", "Heater")})

	require.Len(t, blocks, 1)
	assert.Equal(t, IconSocket, blocks[0].Icon)
	assert.NotNil(t, blocks[0].Toggle)
	assert.False(t, blocks[0].HasColor())
}

func TestRender_UnknownTypeRendersNothing(t *testing.T) {
	r := NewRenderer()

	blocks := r.Render([]relay.DeviceSummary{other("C")})

	assert.Empty(t, blocks)
	_, ok := r.Block("C")
	assert.False(t, ok)
}

func TestRender_PreservesRegistryOrder(t *testing.T) {
	blocks := NewRenderer().Render([]relay.DeviceSummary{
		socket("S1", "Heater"),
		other("X"),
		light("L1", "Desk"),
		light("L2", "Shelf"),
	})

	var ids []string
	for _, b := range blocks {
		ids = append(ids, b.DeviceID)
	}
	assert.Equal(t, []string{"S1", "L1", "L2"}, ids)
}

func TestRender_RawTypeOnly(t *testing.T) {
	d := relay.DeviceSummary{ID: "A", Name: "Desk", RawType: "devices.types.light"}

	blocks := NewRenderer().Render([]relay.DeviceSummary{d})

	require.Len(t, blocks, 1)
	assert.Equal(t, relay.TypeLight, blocks[0].Type)
}

func TestRender_DuplicateIDReplacesBlock(t *testing.T) {
	r := NewRenderer()

	blocks := r.Render([]relay.DeviceSummary{
		light("A", "Old name"),
		socket("B", "Heater"),
		light("A", "New name"),
	})

	require.Len(t, blocks, 2)
	assert.Equal(t, "A", blocks[0].DeviceID)
	assert.Equal(t, "New name", blocks[0].Name)

	toggleIDs := map[string]bool{}
	for _, b := range r.Blocks() {
		assert.False(t, toggleIDs[b.Toggle.ID()], "duplicate control id %s", b.Toggle.ID())
		toggleIDs[b.Toggle.ID()] = true
	}
}

func TestRender_ReRenderCarriesValues(t *testing.T) {
	r := NewRenderer()
	first := r.Render([]relay.DeviceSummary{light("A", "Desk")})
	first[0].Toggle.Set(true)
	first[0].Color.Set(color.RGB{R: 255})

	second := r.Render([]relay.DeviceSummary{light("A", "Desk"), socket("B", "Heater")})

	require.Len(t, second, 2)
	assert.NotSame(t, first[0], second[0])
	assert.True(t, second[0].Toggle.Checked())
	assert.Equal(t, "#FF0000", second[0].Color.Value())
	assert.False(t, second[1].Toggle.Checked())
}

func TestRender_DropsRemovedDevices(t *testing.T) {
	r := NewRenderer()
	r.Render([]relay.DeviceSummary{light("A", "Desk"), socket("B", "Heater")})

	r.Render([]relay.DeviceSummary{socket("B", "Heater")})

	_, ok := r.Block("A")
	assert.False(t, ok)
	assert.Len(t, r.Blocks(), 1)
}

func TestControls_ListenersScopedToOwner(t *testing.T) {
	blocks := NewRenderer().Render([]relay.DeviceSummary{light("A", "Desk"), light("B", "Shelf")})

	var heardA, heardB []bool
	blocks[0].Toggle.OnChange(func(on bool) { heardA = append(heardA, on) })
	blocks[1].Toggle.OnChange(func(on bool) { heardB = append(heardB, on) })

	blocks[1].Toggle.Change(true)

	assert.Empty(t, heardA)
	assert.Equal(t, []bool{true}, heardB)
}

func TestControls_SetDoesNotNotify(t *testing.T) {
	tg := newToggle("A-toggle")
	ci := newColorInput("A-color")

	calls := 0
	tg.OnChange(func(bool) { calls++ })
	ci.OnChange(func(string) { calls++ })

	tg.Set(true)
	ci.Set(color.RGB{G: 255})

	assert.Equal(t, 0, calls)
	assert.True(t, tg.Checked())
	assert.Equal(t, "#00FF00", ci.Value())
}

func TestColorInput_ChangeNormalizesDisplay(t *testing.T) {
	ci := newColorInput("A-color")

	var got string
	ci.OnChange(func(hex string) { got = hex })

	ci.Change("#0af")
	assert.Equal(t, "#00AAFF", ci.Value())
	assert.Equal(t, "#0af", got)

	ci.Change("banana")
	assert.Equal(t, "banana", ci.Value())
	assert.Equal(t, "banana", got)
}
