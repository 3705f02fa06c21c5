package reachability

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/halcyon-io/halcyon-api-client/pkg/events"
)

// Provider reports the current reachability of the network. Implementations
// call the registered change hook whenever their view may have changed; the
// Monitor deduplicates before broadcasting.
type Provider interface {
	IsReachable() bool
	IsReachableViaCellular() bool
	IsReachableViaWiFi() bool

	// OnChange registers the hook invoked on potential state changes.
	OnChange(func())
}

// Monitor holds the last known reachability state and broadcasts a
// ReachabilityChanged event only when a refresh observes a different state.
// Safe for concurrent use.
type Monitor struct {
	mu       sync.Mutex
	provider Provider
	last     *State

	bus    *events.Bus
	logger zerolog.Logger
}

// NewMonitor creates a monitor over the given provider and registers the
// provider's change hook. A nil provider leaves the monitor dormant until
// SetProvider installs one.
func NewMonitor(provider Provider, bus *events.Bus, logger zerolog.Logger) *Monitor {
	m := &Monitor{
		bus:    bus,
		logger: logger.With().Str("component", "reachability").Logger(),
	}
	m.SetProvider(provider)
	return m
}

// SetProvider swaps the reachability provider, e.g. during client
// reconfiguration. The last known state is kept so a swap alone does not
// rebroadcast an unchanged state.
func (m *Monitor) SetProvider(provider Provider) {
	m.mu.Lock()
	m.provider = provider
	m.mu.Unlock()

	if provider != nil {
		provider.OnChange(m.Refresh)
	}
}

// Last returns the last observed state; ok is false before the first
// refresh.
func (m *Monitor) Last() (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.last == nil {
		return Offline, false
	}
	return *m.last, true
}

// Refresh reads the provider and broadcasts ReachabilityChanged when the
// observed state differs from the last known one.
func (m *Monitor) Refresh() {
	m.mu.Lock()
	provider := m.provider
	m.mu.Unlock()

	if provider == nil {
		return
	}

	current := State{
		Reachable: provider.IsReachable(),
		Cellular:  provider.IsReachableViaCellular(),
		WiFi:      provider.IsReachableViaWiFi(),
	}

	m.mu.Lock()
	changed := m.last == nil || !m.last.Equal(current)
	m.last = &current
	m.mu.Unlock()

	if !changed {
		return
	}

	m.logger.Info().
		Bool("reachable", current.Reachable).
		Bool("cellular", current.Cellular).
		Bool("wifi", current.WiFi).
		Msg("Reachability changed")

	m.bus.Publish(events.ReachabilityChanged, current)
}
