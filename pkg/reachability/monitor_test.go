package reachability

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/halcyon-io/halcyon-api-client/pkg/events"
)

func drainOne(t *testing.T, ch <-chan events.Event) State {
	t.Helper()
	select {
	case event := <-ch:
		state, ok := event.Payload.(State)
		if !ok {
			t.Fatalf("Payload = %T, want State", event.Payload)
		}
		return state
	case <-time.After(time.Second):
		t.Fatal("No reachability event received")
		return Offline
	}
}

func expectNone(t *testing.T, ch <-chan events.Event) {
	t.Helper()
	select {
	case event := <-ch:
		t.Errorf("Unexpected event: %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMonitor_FirstRefreshBroadcasts(t *testing.T) {
	bus := events.NewBus(zerolog.Nop())
	ch, stop := bus.Subscribe(events.ReachabilityChanged, 4)
	defer stop()

	provider := NewStaticProvider(State{Reachable: true, WiFi: true})
	monitor := NewMonitor(provider, bus, zerolog.Nop())

	if _, ok := monitor.Last(); ok {
		t.Error("Last() reported a state before the first refresh")
	}

	monitor.Refresh()

	got := drainOne(t, ch)
	if !got.Reachable || !got.WiFi || got.Cellular {
		t.Errorf("State = %+v", got)
	}
	if last, ok := monitor.Last(); !ok || !last.Equal(got) {
		t.Errorf("Last() = %+v, %v", last, ok)
	}
}

func TestMonitor_DeduplicatesIdenticalStates(t *testing.T) {
	bus := events.NewBus(zerolog.Nop())
	ch, stop := bus.Subscribe(events.ReachabilityChanged, 4)
	defer stop()

	provider := NewStaticProvider(State{Reachable: true, Cellular: true})
	monitor := NewMonitor(provider, bus, zerolog.Nop())

	monitor.Refresh()
	drainOne(t, ch)

	// Same state observed again: no event.
	monitor.Refresh()
	monitor.Refresh()
	expectNone(t, ch)

	// Actual transition: one event.
	provider.SetState(Offline)
	got := drainOne(t, ch)
	if !got.Equal(Offline) {
		t.Errorf("State = %+v, want offline", got)
	}
	expectNone(t, ch)
}

func TestMonitor_ProviderHookTriggersRefresh(t *testing.T) {
	bus := events.NewBus(zerolog.Nop())
	ch, stop := bus.Subscribe(events.ReachabilityChanged, 4)
	defer stop()

	provider := NewStaticProvider(Offline)
	NewMonitor(provider, bus, zerolog.Nop())

	// SetState fires the hook the monitor registered.
	provider.SetState(State{Reachable: true})
	got := drainOne(t, ch)
	if !got.Reachable {
		t.Errorf("State = %+v", got)
	}
}

func TestMonitor_SetProviderKeepsLastState(t *testing.T) {
	bus := events.NewBus(zerolog.Nop())
	ch, stop := bus.Subscribe(events.ReachabilityChanged, 4)
	defer stop()

	first := NewStaticProvider(State{Reachable: true, WiFi: true})
	monitor := NewMonitor(first, bus, zerolog.Nop())
	monitor.Refresh()
	drainOne(t, ch)

	// Swapping to a provider reporting the identical state must not
	// rebroadcast.
	second := NewStaticProvider(State{Reachable: true, WiFi: true})
	monitor.SetProvider(second)
	monitor.Refresh()
	expectNone(t, ch)
}

func TestMonitor_NilProviderIsDormant(t *testing.T) {
	bus := events.NewBus(zerolog.Nop())
	ch, stop := bus.Subscribe(events.ReachabilityChanged, 4)
	defer stop()

	monitor := NewMonitor(nil, bus, zerolog.Nop())
	monitor.Refresh()
	expectNone(t, ch)

	if _, ok := monitor.Last(); ok {
		t.Error("Dormant monitor reported a state")
	}
}
