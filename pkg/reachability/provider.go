package reachability

import "sync"

// StaticProvider is a Provider whose state is set programmatically. Useful
// for tests and for hosts that receive reachability from an external
// monitoring source.
type StaticProvider struct {
	mu    sync.Mutex
	state State
	hook  func()
}

// NewStaticProvider creates a provider starting in the given state.
func NewStaticProvider(initial State) *StaticProvider {
	return &StaticProvider{state: initial}
}

// SetState updates the provider's state and fires the change hook.
func (p *StaticProvider) SetState(state State) {
	p.mu.Lock()
	p.state = state
	hook := p.hook
	p.mu.Unlock()

	if hook != nil {
		hook()
	}
}

// IsReachable implements Provider.
func (p *StaticProvider) IsReachable() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Reachable
}

// IsReachableViaCellular implements Provider.
func (p *StaticProvider) IsReachableViaCellular() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Cellular
}

// IsReachableViaWiFi implements Provider.
func (p *StaticProvider) IsReachableViaWiFi() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.WiFi
}

// OnChange implements Provider.
func (p *StaticProvider) OnChange(hook func()) {
	p.mu.Lock()
	p.hook = hook
	p.mu.Unlock()
}
