package panel

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/govee-panel/internal/color"
	"github.com/muurk/govee-panel/internal/relay"
)

func TestStore_ResetPublishesRendered(t *testing.T) {
	s := NewStore()
	events, cancel := s.Subscribe(8)
	defer cancel()

	s.Reset([]relay.DeviceSummary{light("A", "Desk"), socket("B", "Heater")})

	for _, want := range []string{"A", "B"} {
		ev := <-events
		assert.Equal(t, EventRendered, ev.Type)
		assert.Equal(t, want, ev.DeviceID)
	}
	assert.Equal(t, []string{"A", "B"}, s.IDs())
}

func TestStore_ApplyPollKeepsColorWhenAbsent(t *testing.T) {
	s := NewStore()
	s.Reset([]relay.DeviceSummary{light("A", "Desk")})

	red := color.RGB{R: 255}
	require.True(t, s.ApplyPoll("A", State{MACAddress: "AA:BB", IsOn: true, Color: &red}))
	require.True(t, s.ApplyPoll("A", State{MACAddress: "AA:BB", IsOn: false}))

	rec, ok := s.Get("A")
	require.True(t, ok)
	assert.False(t, rec.State.IsOn)
	require.NotNil(t, rec.State.Color)
	assert.Equal(t, red, *rec.State.Color)
	assert.False(t, rec.LastPoll.IsZero())
}

func TestStore_EditThenPollClearsPending(t *testing.T) {
	s := NewStore()
	s.Reset([]relay.DeviceSummary{socket("B", "Heater")})

	s.ApplyEdit("B", func(st *State) { st.IsOn = true })
	rec, _ := s.Get("B")
	assert.True(t, rec.Pending)
	assert.True(t, rec.State.IsOn)

	s.ApplyPoll("B", State{MACAddress: "CC:DD", IsOn: false})
	rec, _ = s.Get("B")
	assert.False(t, rec.Pending)
	assert.False(t, rec.State.IsOn, "server state wins")
}

func TestStore_SnapshotsAreCopies(t *testing.T) {
	s := NewStore()
	s.Reset([]relay.DeviceSummary{light("A", "Desk")})
	s.ApplyPoll("A", State{IsOn: true, Color: &color.RGB{B: 9}})

	rec, _ := s.Get("A")
	rec.State.IsOn = false
	rec.State.Color.B = 200

	again, _ := s.Get("A")
	assert.True(t, again.State.IsOn)
	assert.Equal(t, uint8(9), again.State.Color.B)
}

func TestStore_UnknownIDIgnored(t *testing.T) {
	s := NewStore()
	assert.False(t, s.ApplyPoll("nope", State{}))
	assert.False(t, s.MarkPollFailed("nope", errOffline))
}

func TestStore_RegistryError(t *testing.T) {
	s := NewStore()
	s.Reset([]relay.DeviceSummary{light("A", "Desk")})
	events, cancel := s.Subscribe(4)
	defer cancel()

	regErr := s.SetRegistryError(errOffline)

	assert.True(t, errors.Is(regErr, errOffline))
	assert.Same(t, regErr, s.RegistryError())
	assert.Empty(t, s.Records())

	ev := <-events
	assert.Equal(t, EventRegistryFailed, ev.Type)

	s.Reset(nil)
	assert.Nil(t, s.RegistryError())
}

func TestStore_RecordMAC(t *testing.T) {
	rec := Record{Summary: light("A", "Desk")}
	assert.Equal(t, "A", rec.MAC())

	rec.State = &State{MACAddress: "AA:BB"}
	assert.Equal(t, "AA:BB", rec.MAC())
}

func TestStore_SlowSubscriberDoesNotBlock(t *testing.T) {
	s := NewStore()
	_, cancel := s.Subscribe(1)
	defer cancel()

	done := make(chan struct{})
	go func() {
		s.Reset([]relay.DeviceSummary{light("A", "1"), light("B", "2"), light("C", "3")})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
}

func TestStore_CancelClosesChannel(t *testing.T) {
	s := NewStore()
	events, cancel := s.Subscribe(1)
	cancel()
	cancel()

	_, open := <-events
	assert.False(t, open)
}

func TestEventType_String(t *testing.T) {
	assert.Equal(t, "state", EventStateUpdated.String())
	assert.Equal(t, "registry_failed", EventRegistryFailed.String())
	assert.Equal(t, "EventType(42)", EventType(42).String())
}
