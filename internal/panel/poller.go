package panel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/govee-panel/internal/color"
	"github.com/muurk/govee-panel/internal/logging"
	"github.com/muurk/govee-panel/internal/relay"
)

// DefaultInterval is the refresh period in ModeInterval
const DefaultInterval = 5 * time.Second

// Mode selects how often device state is fetched
type Mode int

const (
	// ModeOneShot fetches state once, right after render
	ModeOneShot Mode = iota
	// ModeInterval fetches state every Interval until stopped
	ModeInterval
)

// String returns the config name of the mode
func (m Mode) String() string {
	switch m {
	case ModeOneShot:
		return "oneshot"
	case ModeInterval:
		return "interval"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses a config or flag value
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "oneshot", "one-shot", "once":
		return ModeOneShot, nil
	case "interval", "":
		return ModeInterval, nil
	default:
		return ModeInterval, fmt.Errorf("unknown poll mode %q (want oneshot or interval)", s)
	}
}

// StateFetcher reads live device state
type StateFetcher interface {
	GetState(ctx context.Context, deviceID string) (*relay.DeviceState, error)
}

// Poller keeps control blocks in sync with the relay. Each device gets its
// own task so one slow device never delays another.
type Poller struct {
	fetcher  StateFetcher
	store    *Store
	renderer *Renderer

	Mode     Mode
	Interval time.Duration

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	trigger map[string]chan struct{}
	wg      sync.WaitGroup
}

// NewPoller creates a poller writing into store and renderer
func NewPoller(fetcher StateFetcher, store *Store, renderer *Renderer, mode Mode, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		fetcher:  fetcher,
		store:    store,
		renderer: renderer,
		Mode:     mode,
		Interval: interval,
		trigger:  make(map[string]chan struct{}),
	}
}

// Start launches one task per device id. In ModeInterval calling Start again
// adds tasks only for ids not yet watched.
func (p *Poller) Start(ctx context.Context, ids []string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctx == nil {
		p.ctx, p.cancel = context.WithCancel(ctx)
	}

	for _, id := range ids {
		if p.Mode == ModeOneShot {
			p.wg.Add(1)
			go func(ctx context.Context, id string) {
				defer p.wg.Done()
				_ = p.Poll(ctx, id)
			}(p.ctx, id)
			continue
		}

		if _, running := p.trigger[id]; running {
			continue
		}
		trigger := make(chan struct{}, 1)
		p.trigger[id] = trigger

		p.wg.Add(1)
		go p.run(p.ctx, id, trigger)
	}
}

// Stop cancels every task and waits for them to return. The poller may be
// started again afterwards.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.mu.Unlock()

	p.wg.Wait()

	p.mu.Lock()
	p.ctx = nil
	p.cancel = nil
	p.trigger = make(map[string]chan struct{})
	p.mu.Unlock()
}

// PollNow asks for an immediate refresh of id. It returns false when the
// poller is not running.
func (p *Poller) PollNow(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctx == nil || p.ctx.Err() != nil {
		return false
	}

	if trigger, ok := p.trigger[id]; ok {
		select {
		case trigger <- struct{}{}:
		default:
		}
		return true
	}

	// One-shot mode keeps no task around; run a tracked one-off fetch
	p.wg.Add(1)
	go func(ctx context.Context) {
		defer p.wg.Done()
		_ = p.Poll(ctx, id)
	}(p.ctx)
	return true
}

func (p *Poller) run(ctx context.Context, id string, trigger chan struct{}) {
	defer p.wg.Done()

	_ = p.Poll(ctx, id)

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-trigger:
		}
		_ = p.Poll(ctx, id)
	}
}

// Poll fetches the state of one device and applies it. On failure the
// controls keep their values and the error is recorded on the device.
func (p *Poller) Poll(ctx context.Context, id string) error {
	st, err := p.fetcher.GetState(ctx, id)
	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return err
		}
		logging.Warn("State poll failed",
			zap.String("device_id", id),
			zap.Error(err),
		)
		p.store.MarkPollFailed(id, err)
		return err
	}

	next := State{MACAddress: st.MACAddress, IsOn: st.On}

	if st.Color != "" {
		rgb, cerr := color.ParseRGBString(st.Color)
		if cerr != nil {
			logging.Debug("Ignoring device color",
				zap.String("device_id", id),
				zap.String("color", st.Color),
				zap.Error(cerr),
			)
		} else {
			next.Color = &rgb
		}
	}

	if !p.store.ApplyPoll(id, next) {
		// Device dropped by a registry reload while the fetch was in flight
		return nil
	}

	if block, ok := p.renderer.Block(id); ok {
		block.Toggle.Set(next.IsOn)
		if block.Color != nil && next.Color != nil {
			block.Color.Set(*next.Color)
		}
	}

	logging.LogStateUpdate(id, next.MACAddress, next.IsOn, st.Color)
	return nil
}
