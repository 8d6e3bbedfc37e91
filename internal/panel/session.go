package panel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/govee-panel/internal/credential"
	"github.com/muurk/govee-panel/internal/logging"
	"github.com/muurk/govee-panel/internal/relay"
)

// Client is the subset of the relay API the panel needs
type Client interface {
	ListDevices(ctx context.Context) ([]relay.DeviceSummary, error)
	StateFetcher
	Commander
}

// Options tune a session
type Options struct {
	Mode     Mode
	Interval time.Duration
	// CommandTimeout bounds each device command; zero leaves it to the client
	CommandTimeout time.Duration
}

// Session wires the panel together: it loads the key, fetches the registry,
// renders blocks, binds controls and keeps state fresh until closed.
type Session struct {
	creds  *credential.Adapter
	client Client

	Store      *Store
	Renderer   *Renderer
	Dispatcher *Dispatcher
	Poller     *Poller

	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	storeErr error
}

// NewSession creates an unloaded session
func NewSession(creds *credential.Adapter, client Client, opts Options) *Session {
	store := NewStore()
	renderer := NewRenderer()

	dispatcher := NewDispatcher(client, store)
	dispatcher.Timeout = opts.CommandTimeout

	return &Session{
		creds:      creds,
		client:     client,
		Store:      store,
		Renderer:   renderer,
		Dispatcher: dispatcher,
		Poller:     NewPoller(client, store, renderer, opts.Mode, opts.Interval),
	}
}

// Load runs the panel-load flow. Polling and command listeners live until
// ctx is cancelled or Close is called. A failed registry fetch leaves the
// session in the registry-error state and is returned as *RegistryError.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	if _, err := s.creds.Init(); err != nil {
		// The relay will reject the empty key; keep loading so the user
		// can still see the panel and fix the key.
		logging.Warn("Could not initialize API key", zap.Error(err))
		s.mu.Lock()
		s.storeErr = err
		s.mu.Unlock()
	}

	return s.reload(ctx)
}

// Refresh re-fetches the registry and re-renders the panel
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	loaded := s.ctx != nil
	s.mu.Unlock()

	if !loaded {
		return s.Load(ctx)
	}
	return s.reload(ctx)
}

// reload fetches the registry under fetchCtx; everything it starts runs
// under the session context
func (s *Session) reload(fetchCtx context.Context) error {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	s.Poller.Stop()

	devices, err := s.client.ListDevices(fetchCtx)
	if err != nil {
		logging.Warn("Device registry fetch failed", zap.Error(err))
		s.Renderer.Clear()
		return s.Store.SetRegistryError(err)
	}

	blocks := s.Renderer.Render(devices)

	ids := make([]string, 0, len(blocks))
	for _, b := range blocks {
		ids = append(ids, b.DeviceID)
		s.Dispatcher.Bind(ctx, b)
	}

	rendered := make([]relay.DeviceSummary, 0, len(blocks))
	for _, d := range devices {
		if b, ok := s.Renderer.Block(d.ID); ok {
			d.Type = b.Type
			rendered = append(rendered, d)
		}
	}
	s.Store.Reset(rendered)

	logging.Info("Panel rendered",
		zap.Int("registry_devices", len(devices)),
		zap.Int("blocks", len(blocks)),
	)

	s.Poller.Start(ctx, ids)
	return nil
}

// SetKey stores a new API key. The next request uses it; nothing is
// reloaded.
func (s *Session) SetKey(key string) error {
	return s.creds.Write(key)
}

// Key returns the stored API key
func (s *Session) Key() string {
	return s.creds.Key()
}

// StoreError returns the credential failure seen during Load, if any
func (s *Session) StoreError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storeErr
}

// Toggle acts as if the user flipped the power toggle of device id
func (s *Session) Toggle(id string, on bool) error {
	block, ok := s.Renderer.Block(id)
	if !ok {
		return fmt.Errorf("no device %q on the panel", id)
	}
	block.Toggle.Change(on)
	return nil
}

// SetColor acts as if the user picked hex on the color input of device id
func (s *Session) SetColor(id string, hex string) error {
	block, ok := s.Renderer.Block(id)
	if !ok {
		return fmt.Errorf("no device %q on the panel", id)
	}
	if block.Color == nil {
		return fmt.Errorf("device %q has no color control", id)
	}
	block.Color.Change(hex)
	return nil
}

// PollNow asks for an immediate state refresh of device id
func (s *Session) PollNow(id string) bool {
	return s.Poller.PollNow(id)
}

// PollAll asks for an immediate state refresh of every device
func (s *Session) PollAll() {
	for _, id := range s.Store.IDs() {
		s.Poller.PollNow(id)
	}
}

// Close stops polling and releases listeners' context
func (s *Session) Close() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	s.Poller.Stop()
}
