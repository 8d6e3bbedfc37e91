package panel

import (
	"sync"

	"github.com/muurk/govee-panel/internal/relay"
)

// Icon names for each template
const (
	IconLight  = "lightbulb"
	IconSocket = "plug"
)

// ControlBlock is the rendered panel entry for one device
type ControlBlock struct {
	DeviceID string
	Name     string
	SKU      string
	Type     relay.DeviceType
	Icon     string

	Toggle *Toggle
	// Color is nil for sockets
	Color *ColorInput
}

// HasColor reports whether the block carries a color control
func (b *ControlBlock) HasColor() bool {
	return b.Color != nil
}

// ToggleID returns the control id of a device's power toggle
func ToggleID(deviceID string) string { return deviceID + "-toggle" }

// ColorID returns the control id of a device's color input
func ColorID(deviceID string) string { return deviceID + "-color" }

// Renderer turns registry entries into control blocks. It owns the current
// set of blocks, keyed by device id.
type Renderer struct {
	mu     sync.RWMutex
	blocks map[string]*ControlBlock
	order  []string
}

// NewRenderer creates an empty renderer
func NewRenderer() *Renderer {
	return &Renderer{blocks: make(map[string]*ControlBlock)}
}

// Render replaces the panel with one block per light or socket in devices,
// in registry order. Other device types are skipped. A device id that appears
// twice yields a single block holding the later entry. Values already shown
// for a surviving id carry over so the panel does not flicker on reload.
func (r *Renderer) Render(devices []relay.DeviceSummary) []*ControlBlock {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := r.blocks
	r.blocks = make(map[string]*ControlBlock, len(devices))
	r.order = nil

	for _, d := range devices {
		block := renderBlock(d)
		if block == nil {
			continue
		}

		if prev, ok := old[d.ID]; ok {
			block.Toggle.Set(prev.Toggle.Checked())
			if block.Color != nil && prev.Color != nil {
				block.Color.value = prev.Color.Value()
			}
		}

		if _, dup := r.blocks[d.ID]; !dup {
			r.order = append(r.order, d.ID)
		}
		r.blocks[d.ID] = block
	}

	return r.blocksLocked()
}

// Block returns the block for a device id
func (r *Renderer) Block(id string) (*ControlBlock, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.blocks[id]
	return b, ok
}

// Blocks returns every block in registry order
func (r *Renderer) Blocks() []*ControlBlock {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.blocksLocked()
}

// Clear removes every block
func (r *Renderer) Clear() {
	r.mu.Lock()
	r.blocks = make(map[string]*ControlBlock)
	r.order = nil
	r.mu.Unlock()
}

func (r *Renderer) blocksLocked() []*ControlBlock {
	out := make([]*ControlBlock, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.blocks[id])
	}
	return out
}

func renderBlock(d relay.DeviceSummary) *ControlBlock {
	typ := d.Type
	if typ == "" {
		typ = relay.ParseDeviceType(d.RawType)
	}

	block := &ControlBlock{
		DeviceID: d.ID,
		Name:     d.Name,
		SKU:      d.SKU,
		Type:     typ,
		Toggle:   newToggle(ToggleID(d.ID)),
	}

	switch typ {
	case relay.TypeLight:
		block.Icon = IconLight
		block.Color = newColorInput(ColorID(d.ID))
	case relay.TypeSocket:
		block.Icon = IconSocket
	default:
		return nil
	}
	return block
}
