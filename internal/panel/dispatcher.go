package panel

import (
	"context"
	"time"

	"github.com/muurk/govee-panel/internal/color"
	"github.com/muurk/govee-panel/internal/logging"
	"github.com/muurk/govee-panel/internal/relay"
)

// Commander sends device commands to the relay
type Commander interface {
	SetPower(ctx context.Context, mac string, on bool) error
	SetColor(ctx context.Context, mac string, rgb color.RGB) error
}

// Dispatcher turns control edits into relay commands. Edits are shown
// immediately and never rolled back; the next poll reports what the device
// actually did.
type Dispatcher struct {
	cmd   Commander
	store *Store

	// Timeout bounds each command; zero means no extra bound
	Timeout time.Duration
}

// NewDispatcher creates a dispatcher for store
func NewDispatcher(cmd Commander, store *Store) *Dispatcher {
	return &Dispatcher{cmd: cmd, store: store}
}

// Bind attaches listeners to the controls of block. Commands issued by those
// listeners run under ctx.
func (d *Dispatcher) Bind(ctx context.Context, block *ControlBlock) {
	id := block.DeviceID

	block.Toggle.OnChange(func(on bool) {
		_ = d.Power(ctx, id, on)
	})

	if block.Color != nil {
		block.Color.OnChange(func(hex string) {
			_ = d.Color(ctx, id, hex)
		})
	}
}

// Power records the edit and sends one power command for device id
func (d *Dispatcher) Power(ctx context.Context, id string, on bool) error {
	d.store.ApplyEdit(id, func(st *State) { st.IsOn = on })

	mac := d.macFor(id)
	value := relay.PowerSegment(on)

	err := d.send(ctx, func(ctx context.Context) error {
		return d.cmd.SetPower(ctx, mac, on)
	})
	d.finish(id, "power", value, err)
	return err
}

// Color records the edit and sends one color command for device id. Input
// that does not parse as hex is reported without contacting the relay.
func (d *Dispatcher) Color(ctx context.Context, id string, hex string) error {
	rgb, err := color.ParseHex(hex)
	if err != nil {
		d.finish(id, "color", hex, err)
		return err
	}

	d.store.ApplyEdit(id, func(st *State) { st.Color = &rgb })

	mac := d.macFor(id)
	err = d.send(ctx, func(ctx context.Context) error {
		return d.cmd.SetColor(ctx, mac, rgb)
	})
	d.finish(id, "color", rgb.Hex(), err)
	return err
}

func (d *Dispatcher) macFor(id string) string {
	if rec, ok := d.store.Get(id); ok {
		return rec.MAC()
	}
	return id
}

func (d *Dispatcher) send(ctx context.Context, fn func(ctx context.Context) error) error {
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}
	return fn(ctx)
}

func (d *Dispatcher) finish(id, command, value string, err error) {
	logging.LogCommand(id, command, value, err)
	if err != nil {
		d.store.MarkCommandFailed(id, err)
		return
	}
	d.store.MarkCommandSent(id)
}
