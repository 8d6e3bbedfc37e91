package relay

import (
	"encoding/json"
	"strings"
)

// DeviceType is the kind of device reported by the registry
type DeviceType string

const (
	TypeLight  DeviceType = "light"
	TypeSocket DeviceType = "socket"
	TypeOther  DeviceType = "other"
)

// Raw type strings used by the relay
const (
	rawTypeLight  = "devices.types.light"
	rawTypeSocket = "devices.types.socket"
)

// ParseDeviceType maps the relay's type string onto a DeviceType
func ParseDeviceType(raw string) DeviceType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case rawTypeLight, string(TypeLight):
		return TypeLight
	case rawTypeSocket, string(TypeSocket):
		return TypeSocket
	default:
		return TypeOther
	}
}

// DeviceSummary is one registry entry
type DeviceSummary struct {
	ID      string     `json:"device"`
	Name    string     `json:"deviceName"`
	SKU     string     `json:"sku"`
	Type    DeviceType `json:"-"`
	RawType string     `json:"type"`
}

// UnmarshalJSON keeps the raw type and derives Type from it
func (d *DeviceSummary) UnmarshalJSON(data []byte) error {
	type wire DeviceSummary
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*d = DeviceSummary(w)
	d.Type = ParseDeviceType(d.RawType)
	return nil
}

// DeviceState is the relay's answer to /{id}/state
type DeviceState struct {
	MACAddress string `json:"MACAddress"`
	On         bool   `json:"On"`
	// Color is "rgb(r,g,b)" for lights and empty for sockets
	Color string `json:"Color,omitempty"`
}
