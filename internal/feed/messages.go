package feed

import (
	"time"

	"github.com/muurk/govee-panel/internal/panel"
	"github.com/muurk/govee-panel/internal/relay"
)

// Message types sent to clients
const (
	TypeSnapshot = "snapshot"
	TypeEvent    = "event"
	TypeAck      = "ack"
	TypeError    = "error"
)

// Actions accepted from clients
const (
	ActionPower = "power"
	ActionColor = "color"
	ActionPoll  = "poll"
)

// DeviceView is one rendered control block with its last known state
type DeviceView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	SKU      string `json:"sku"`
	Type     string `json:"type"`
	Icon     string `json:"icon"`
	ToggleID string `json:"toggleId"`
	ColorID  string `json:"colorId,omitempty"`
	MAC      string `json:"mac,omitempty"`
	On       bool   `json:"on"`
	Color    string `json:"color,omitempty"`
	Pending  bool   `json:"pending"`
	Error    string `json:"error,omitempty"`
}

// Snapshot is the full panel, sent on connect and served at /devices
type Snapshot struct {
	Type          string       `json:"type"`
	Devices       []DeviceView `json:"devices"`
	RegistryError string       `json:"registryError,omitempty"`
}

// EventMessage forwards one panel event
type EventMessage struct {
	Type   string      `json:"type"`
	Event  string      `json:"event"`
	Device *DeviceView `json:"device,omitempty"`
	Error  string      `json:"error,omitempty"`
	Time   time.Time   `json:"time"`
}

// Action is a control edit sent by a client
type Action struct {
	Action string `json:"action"`
	Device string `json:"device"`
	On     *bool  `json:"on,omitempty"`
	Hex    string `json:"hex,omitempty"`
}

// Reply acknowledges or rejects an Action
type Reply struct {
	Type   string `json:"type"`
	Action string `json:"action,omitempty"`
	Device string `json:"device,omitempty"`
	Error  string `json:"error,omitempty"`
}

func buildSnapshot(session *panel.Session) Snapshot {
	snap := Snapshot{Type: TypeSnapshot, Devices: []DeviceView{}}

	if regErr := session.Store.RegistryError(); regErr != nil {
		snap.RegistryError = relay.ShortMessage(regErr.Err)
		return snap
	}

	for _, b := range session.Renderer.Blocks() {
		rec, _ := session.Store.Get(b.DeviceID)
		snap.Devices = append(snap.Devices, deviceView(b, rec))
	}
	return snap
}

func deviceView(b *panel.ControlBlock, rec panel.Record) DeviceView {
	v := DeviceView{
		ID:       b.DeviceID,
		Name:     b.Name,
		SKU:      b.SKU,
		Type:     string(b.Type),
		Icon:     b.Icon,
		ToggleID: b.Toggle.ID(),
		On:       b.Toggle.Checked(),
		Pending:  rec.Pending,
	}
	if b.Color != nil {
		v.ColorID = b.Color.ID()
		v.Color = b.Color.Value()
	}
	if rec.State != nil {
		v.MAC = rec.State.MACAddress
	}
	if rec.LastError != nil {
		v.Error = relay.ShortMessage(rec.LastError)
	}
	return v
}

func eventMessage(session *panel.Session, ev panel.Event) EventMessage {
	msg := EventMessage{Type: TypeEvent, Event: ev.Type.String(), Time: ev.Time}
	if ev.Err != nil {
		msg.Error = relay.ShortMessage(ev.Err)
	}
	if ev.DeviceID != "" {
		if b, ok := session.Renderer.Block(ev.DeviceID); ok {
			v := deviceView(b, ev.Record)
			msg.Device = &v
		}
	}
	return msg
}
