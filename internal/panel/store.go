package panel

import (
	"fmt"
	"sync"
	"time"

	"github.com/muurk/govee-panel/internal/color"
	"github.com/muurk/govee-panel/internal/relay"
)

// EventType identifies what changed in the store
type EventType int

const (
	// EventRendered fires once per device when a control block is created
	EventRendered EventType = iota
	// EventStateUpdated fires after a successful state poll
	EventStateUpdated
	// EventCommandSent fires after the relay accepted a command
	EventCommandSent
	// EventCommandFailed fires when a command could not be sent
	EventCommandFailed
	// EventPollFailed fires when a state poll failed
	EventPollFailed
	// EventRegistryFailed fires when the device list could not be fetched
	EventRegistryFailed
	// EventPending fires when a user edit is applied ahead of its command
	EventPending
)

// String returns the wire name used by the feed
func (t EventType) String() string {
	switch t {
	case EventRendered:
		return "rendered"
	case EventStateUpdated:
		return "state"
	case EventCommandSent:
		return "command_sent"
	case EventCommandFailed:
		return "command_failed"
	case EventPollFailed:
		return "poll_failed"
	case EventRegistryFailed:
		return "registry_failed"
	case EventPending:
		return "pending"
	default:
		return fmt.Sprintf("EventType(%d)", int(t))
	}
}

// State is the last known live state of a device
type State struct {
	MACAddress string
	IsOn       bool
	// Color is nil for sockets and for lights whose color is not yet known
	Color *color.RGB
}

// Record is everything the panel knows about one device
type Record struct {
	Summary relay.DeviceSummary
	// State is nil until the first state poll or user edit
	State     *State
	Pending   bool
	LastPoll  time.Time
	LastError error
}

// MAC returns the address commands should use: the MAC from the latest
// state, or the registry id before the first successful poll.
func (r Record) MAC() string {
	if r.State != nil && r.State.MACAddress != "" {
		return r.State.MACAddress
	}
	return r.Summary.ID
}

func (r Record) clone() Record {
	if r.State != nil {
		s := *r.State
		if s.Color != nil {
			c := *s.Color
			s.Color = &c
		}
		r.State = &s
	}
	return r
}

// Event is delivered to subscribers. Record is a snapshot taken when the
// event was published.
type Event struct {
	Type     EventType
	DeviceID string
	Record   Record
	Err      error
	Time     time.Time
}

// RegistryError is the explicit state shown when the device list could not
// be loaded
type RegistryError struct {
	Err error
}

func (e *RegistryError) Error() string {
	return "device registry unavailable: " + e.Err.Error()
}

func (e *RegistryError) Unwrap() error {
	return e.Err
}

// Store holds one Record per rendered device, in registry order
type Store struct {
	mu          sync.RWMutex
	records     map[string]*Record
	order       []string
	registryErr *RegistryError

	subMu   sync.Mutex
	subs    map[int]chan Event
	nextSub int
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		records: make(map[string]*Record),
		subs:    make(map[int]chan Event),
	}
}

// Reset replaces all records with fresh ones for devices and clears any
// registry error. Known state for ids that survive is kept.
func (s *Store) Reset(devices []relay.DeviceSummary) {
	s.mu.Lock()
	old := s.records
	s.records = make(map[string]*Record, len(devices))
	s.order = s.order[:0]
	s.registryErr = nil

	var events []Event
	for _, d := range devices {
		rec, seen := s.records[d.ID]
		if !seen {
			s.order = append(s.order, d.ID)
			rec = &Record{}
			if prev, ok := old[d.ID]; ok {
				rec.State = prev.State
				rec.LastPoll = prev.LastPoll
			}
			s.records[d.ID] = rec
		}
		rec.Summary = d
		events = append(events, Event{Type: EventRendered, DeviceID: d.ID, Record: rec.clone()})
	}
	s.mu.Unlock()

	for _, ev := range events {
		s.publish(ev)
	}
}

// SetRegistryError records a failed registry fetch. Existing records are
// dropped so the panel never shows a stale list as if it were current.
func (s *Store) SetRegistryError(err error) *RegistryError {
	regErr := &RegistryError{Err: err}

	s.mu.Lock()
	s.records = make(map[string]*Record)
	s.order = s.order[:0]
	s.registryErr = regErr
	s.mu.Unlock()

	s.publish(Event{Type: EventRegistryFailed, Err: regErr})
	return regErr
}

// RegistryError returns the last registry failure, or nil
func (s *Store) RegistryError() *RegistryError {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registryErr
}

// Get returns a snapshot of one record
func (s *Store) Get(id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return Record{}, false
	}
	return rec.clone(), true
}

// Records returns snapshots of every record in registry order
func (s *Store) Records() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id].clone())
	}
	return out
}

// IDs returns device ids in registry order
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// ApplyPoll overwrites the state of id with a fresh poll result. A nil color
// keeps the previously known color. Pending edits are cleared.
func (s *Store) ApplyPoll(id string, st State) bool {
	return s.update(id, EventStateUpdated, nil, func(rec *Record) {
		if st.Color == nil && rec.State != nil {
			st.Color = rec.State.Color
		}
		rec.State = &st
		rec.Pending = false
		rec.LastPoll = time.Now()
		rec.LastError = nil
	})
}

// ApplyEdit applies a user edit ahead of the relay confirming it
func (s *Store) ApplyEdit(id string, edit func(st *State)) bool {
	return s.update(id, EventPending, nil, func(rec *Record) {
		var st State
		if rec.State != nil {
			st = *rec.State
		}
		edit(&st)
		rec.State = &st
		rec.Pending = true
	})
}

// MarkPollFailed records a failed poll without touching state
func (s *Store) MarkPollFailed(id string, err error) bool {
	return s.update(id, EventPollFailed, err, func(rec *Record) {
		rec.LastError = err
	})
}

// MarkCommandSent records an accepted command
func (s *Store) MarkCommandSent(id string) bool {
	return s.update(id, EventCommandSent, nil, func(rec *Record) {
		rec.LastError = nil
	})
}

// MarkCommandFailed records a failed command. The optimistic state stays
// until the next poll reconciles it.
func (s *Store) MarkCommandFailed(id string, err error) bool {
	return s.update(id, EventCommandFailed, err, func(rec *Record) {
		rec.LastError = err
	})
}

func (s *Store) update(id string, typ EventType, err error, fn func(rec *Record)) bool {
	s.mu.Lock()
	rec, ok := s.records[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	fn(rec)
	ev := Event{Type: typ, DeviceID: id, Record: rec.clone(), Err: err}
	s.mu.Unlock()

	s.publish(ev)
	return true
}

// Subscribe returns a channel of events and a function that cancels the
// subscription. Events are dropped for subscribers that fall behind by more
// than buffer events.
func (s *Store) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (s *Store) publish(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
