package panel

import (
	"sync"

	"github.com/muurk/govee-panel/internal/color"
)

// Toggle is a device's on/off control. Listeners registered on a toggle only
// ever hear about that toggle.
type Toggle struct {
	id string

	mu        sync.RWMutex
	checked   bool
	listeners []func(on bool)
}

func newToggle(id string) *Toggle {
	return &Toggle{id: id}
}

// ID returns the control id, unique per device
func (t *Toggle) ID() string { return t.id }

// Checked reports the displayed value
func (t *Toggle) Checked() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.checked
}

// Set updates the displayed value without notifying listeners. Polls use it.
func (t *Toggle) Set(on bool) {
	t.mu.Lock()
	t.checked = on
	t.mu.Unlock()
}

// Change is a user edit: the value is updated first, then every listener
// runs in registration order on the caller's goroutine.
func (t *Toggle) Change(on bool) {
	t.mu.Lock()
	t.checked = on
	listeners := append([]func(bool){}, t.listeners...)
	t.mu.Unlock()

	for _, fn := range listeners {
		fn(on)
	}
}

// OnChange registers a listener
func (t *Toggle) OnChange(fn func(on bool)) {
	t.mu.Lock()
	t.listeners = append(t.listeners, fn)
	t.mu.Unlock()
}

// ColorInput is a light's color picker. Its value is a "#RRGGBB" hex string,
// or empty while the color is unknown.
type ColorInput struct {
	id string

	mu        sync.RWMutex
	value     string
	listeners []func(hex string)
}

func newColorInput(id string) *ColorInput {
	return &ColorInput{id: id}
}

// ID returns the control id, unique per device
func (c *ColorInput) ID() string { return c.id }

// Value returns the displayed hex value
func (c *ColorInput) Value() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Set updates the displayed value without notifying listeners
func (c *ColorInput) Set(rgb color.RGB) {
	c.mu.Lock()
	c.value = rgb.Hex()
	c.mu.Unlock()
}

// Change is a user edit. Shorthand input is normalized for display; input
// that is not hex is shown as typed and handed to listeners unchanged so
// they can report it.
func (c *ColorInput) Change(hex string) {
	display := hex
	if full, err := color.ExpandShorthand(hex); err == nil {
		display = full
	}

	c.mu.Lock()
	c.value = display
	listeners := append([]func(string){}, c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(hex)
	}
}

// OnChange registers a listener
func (c *ColorInput) OnChange(fn func(hex string)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}
