package panel

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/muurk/govee-panel/internal/color"
	"github.com/muurk/govee-panel/internal/relay"
)

// fakeRelay is an in-memory Client that records every call
type fakeRelay struct {
	mu sync.Mutex

	devices     []relay.DeviceSummary
	registryErr error
	states      map[string]relay.DeviceState
	stateErr    map[string]error
	commandErr  error

	stateCalls map[string]int
	commands   []string
}

func newFakeRelay(devices ...relay.DeviceSummary) *fakeRelay {
	return &fakeRelay{
		devices:    devices,
		states:     make(map[string]relay.DeviceState),
		stateErr:   make(map[string]error),
		stateCalls: make(map[string]int),
	}
}

func (f *fakeRelay) ListDevices(ctx context.Context) ([]relay.DeviceSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.registryErr != nil {
		return nil, f.registryErr
	}
	return append([]relay.DeviceSummary(nil), f.devices...), nil
}

func (f *fakeRelay) GetState(ctx context.Context, id string) (*relay.DeviceState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stateCalls[id]++
	if err := f.stateErr[id]; err != nil {
		return nil, err
	}
	st, ok := f.states[id]
	if !ok {
		return nil, relay.NewHTTPError(404, "unknown device")
	}
	return &st, nil
}

func (f *fakeRelay) SetPower(ctx context.Context, mac string, on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, fmt.Sprintf("%s/power/%s", mac, relay.PowerSegment(on)))
	return f.commandErr
}

func (f *fakeRelay) SetColor(ctx context.Context, mac string, rgb color.RGB) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, fmt.Sprintf("%s/color/%d/%d/%d", mac, rgb.R, rgb.G, rgb.B))
	return f.commandErr
}

func (f *fakeRelay) setState(id string, st relay.DeviceState) {
	f.mu.Lock()
	f.states[id] = st
	delete(f.stateErr, id)
	f.mu.Unlock()
}

func (f *fakeRelay) failState(id string, err error) {
	f.mu.Lock()
	f.stateErr[id] = err
	f.mu.Unlock()
}

func (f *fakeRelay) calls(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stateCalls[id]
}

func (f *fakeRelay) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.commands...)
}

var errOffline = errors.New("relay offline")

func light(id, name string) relay.DeviceSummary {
	return relay.DeviceSummary{ID: id, Name: name, SKU: "H6008", Type: relay.TypeLight, RawType: "devices.types.light"}
}

func socket(id, name string) relay.DeviceSummary {
	return relay.DeviceSummary{ID: id, Name: name, SKU: "H5080", Type: relay.TypeSocket, RawType: "devices.types.socket"}
}

func other(id string) relay.DeviceSummary {
	return relay.DeviceSummary{ID: id, Name: "Thing", SKU: "H7100", Type: relay.TypeOther, RawType: "devices.types.fan"}
}
