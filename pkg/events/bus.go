// Package events implements the in-process notification bus: named events
// broadcast fire-and-forget to any number of subscribers, with no
// acknowledgment and no ordering guarantee relative to callback delivery.
package events

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/halcyon-io/halcyon-api-client/pkg/api"
)

// Name identifies a broadcast event.
type Name string

const (
	// ReachabilityChanged fires when the deduplicated reachability state
	// transitions. Payload: reachability state value.
	ReachabilityChanged Name = "ReachabilityChanged"

	// AccountChanged fires on every current-account mutation.
	// Payload: AccountChange.
	AccountChanged Name = "AccountChanged"

	// ServiceUnavailable fires for service-unavailable failures. No payload.
	ServiceUnavailable Name = "ServiceUnavailable"

	// InvalidToken fires for invalid-authentication-token failures.
	// Payload: TokenInfo with the bearer token of the failing request, or
	// nil when the request carried none.
	InvalidToken Name = "InvalidToken"
)

// Event is one broadcast notification.
type Event struct {
	Name    Name
	Payload any
}

// AccountChange carries the previous account value of an AccountChanged
// event. HadPrevious distinguishes "no previous account" from a zero value.
type AccountChange struct {
	Previous    *api.Account
	HadPrevious bool
}

// TokenInfo carries the bearer token of an InvalidToken event.
type TokenInfo struct {
	Token string
}

// Bus is a process-local broadcast bus. The zero value is not usable;
// construct with NewBus. Safe for concurrent use.
type Bus struct {
	mu     sync.RWMutex
	subs   map[Name]map[int]chan Event
	nextID int
	logger zerolog.Logger
}

// NewBus creates an empty bus.
func NewBus(logger zerolog.Logger) *Bus {
	return &Bus{
		subs:   make(map[Name]map[int]chan Event),
		logger: logger.With().Str("component", "event-bus").Logger(),
	}
}

// Subscribe registers interest in an event name. The returned channel is
// buffered; events arriving while the buffer is full are dropped, matching
// the fire-and-forget contract. Call the returned func to unsubscribe.
func (b *Bus) Subscribe(name Name, buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	if b.subs[name] == nil {
		b.subs[name] = make(map[int]chan Event)
	}
	b.subs[name][id] = ch
	b.mu.Unlock()

	unsubscribe := func() {
		b.mu.Lock()
		if subs, ok := b.subs[name]; ok {
			if sub, ok := subs[id]; ok {
				delete(subs, id)
				close(sub)
			}
		}
		b.mu.Unlock()
	}
	return ch, unsubscribe
}

// Publish broadcasts an event to all current subscribers without blocking.
func (b *Bus) Publish(name Name, payload any) {
	event := Event{Name: name, Payload: payload}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs[name] {
		select {
		case ch <- event:
		default:
			b.logger.Debug().
				Str("event", string(name)).
				Msg("Subscriber buffer full, event dropped")
		}
	}
}
