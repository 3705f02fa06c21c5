// Package client provides the top-level API client: it wires the dispatch
// engine, transport adapter, response cache, notification bus, and
// reachability monitor, and owns the process-wide current-account state.
package client

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/halcyon-io/halcyon-api-client/pkg/api"
	"github.com/halcyon-io/halcyon-api-client/pkg/cache"
	"github.com/halcyon-io/halcyon-api-client/pkg/dispatch"
	"github.com/halcyon-io/halcyon-api-client/pkg/events"
	"github.com/halcyon-io/halcyon-api-client/pkg/reachability"
	"github.com/halcyon-io/halcyon-api-client/pkg/transport"
)

// Config holds the client configuration.
type Config struct {
	// Transport settings for the default HTTP adapter.
	Transport transport.Config

	// Cache overrides the response cache backend. When nil, Redis is used
	// if configured, otherwise caching is disabled.
	Cache cache.Store

	// Redis client for the default cache backend.
	Redis *redis.Client

	// CacheTTL bounds how long cached payloads are served.
	CacheTTL time.Duration

	// Reachability is the optional reachability provider to monitor.
	Reachability reachability.Provider
}

// DefaultConfig returns a safe default configuration for the given API base
// URL, caching in Redis when a client is provided.
func DefaultConfig(baseURL string, redisClient *redis.Client) Config {
	return Config{
		Transport: transport.DefaultConfig(baseURL),
		Redis:     redisClient,
		CacheTTL:  cache.DefaultTTL,
	}
}

// Client is the main API client.
type Client struct {
	engine  *dispatch.Engine
	bus     *events.Bus
	monitor *reachability.Monitor
	store   cache.Store
	config  Config
	logger  zerolog.Logger

	accountMu sync.Mutex
	account   atomic.Pointer[api.Account]

	adapterMu sync.RWMutex
	adapter   transport.Adapter
}

// New creates a new API client.
func New(cfg Config) (*Client, error) {
	if cfg.Transport.BaseURL == "" {
		return nil, fmt.Errorf("transport base URL is required")
	}
	if cfg.Transport.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	logger := log.With().Str("component", "api-client").Logger()

	store := cfg.Cache
	if store == nil {
		if cfg.Redis != nil {
			store = cache.NewRedisStore(cfg.Redis, cfg.CacheTTL)
		} else {
			store = cache.NewNopStore()
		}
	}

	adapter, err := transport.NewHTTPAdapter(cfg.Transport, logger)
	if err != nil {
		return nil, fmt.Errorf("create transport adapter: %w", err)
	}

	bus := events.NewBus(logger)
	monitor := reachability.NewMonitor(cfg.Reachability, bus, logger)
	engine := dispatch.NewEngine(adapter, store, bus, logger)

	client := &Client{
		engine:  engine,
		bus:     bus,
		monitor: monitor,
		store:   store,
		config:  cfg,
		logger:  logger,
		adapter: adapter,
	}
	return client, nil
}

// Engine exposes the dispatch engine for advanced callers (pagination
// walkers, custom executors).
func (c *Client) Engine() *dispatch.Engine {
	return c.engine
}

// Bus exposes the notification bus for event subscribers.
func (c *Client) Bus() *events.Bus {
	return c.bus
}

// Reachability exposes the reachability monitor.
func (c *Client) Reachability() *reachability.Monitor {
	return c.monitor
}

// Execute dispatches a request descriptor. See dispatch.Engine.Execute.
func (c *Client) Execute(req *api.Request, opts dispatch.Options, cb dispatch.Callback) (*dispatch.Token, error) {
	return c.engine.Execute(req, opts, cb)
}

// Do dispatches a request descriptor and blocks for the final result.
func (c *Client) Do(ctx context.Context, req *api.Request) (*api.Response, error) {
	return c.engine.Do(ctx, req)
}

// ClearCache drops every cached response payload.
func (c *Client) ClearCache(ctx context.Context) error {
	return c.store.Clear(ctx)
}

// Reconfigure invalidates the current transport adapter and installs a new
// one built from the given settings, and swaps the reachability provider.
// In-flight tokens continue against the tasks of the old adapter until they
// complete or are cancelled. Safe to call at any time.
func (c *Client) Reconfigure(transportCfg transport.Config, provider reachability.Provider) error {
	adapter, err := transport.NewHTTPAdapter(transportCfg, c.logger)
	if err != nil {
		return fmt.Errorf("create transport adapter: %w", err)
	}

	// The new adapter inherits the current authentication state.
	if account := c.account.Load(); account != nil {
		adapter.OnAuthenticated(account)
	}

	c.adapterMu.Lock()
	c.adapter = adapter
	c.adapterMu.Unlock()
	c.engine.SetAdapter(adapter)

	c.monitor.SetProvider(provider)

	c.logger.Info().
		Str("base_url", transportCfg.BaseURL).
		Msg("Client reconfigured")

	return nil
}

// Account returns the current account, or nil.
func (c *Client) Account() *api.Account {
	return c.account.Load()
}

// SetAccount mutates the current account. Transitions notify the transport
// adapter: none-to-some authenticates; some-to-none and some-to-other clear
// (re-authentication is a clear followed by a later set). Every mutation
// broadcasts AccountChanged carrying the previous value.
func (c *Client) SetAccount(account *api.Account) {
	c.accountMu.Lock()
	defer c.accountMu.Unlock()

	previous := c.account.Swap(account)

	c.adapterMu.RLock()
	adapter := c.adapter
	c.adapterMu.RUnlock()

	switch {
	case previous == nil && account != nil:
		adapter.OnAuthenticated(account)
		c.logger.Info().Str("account_id", account.ID).Msg("Account authenticated")
	case previous != nil:
		adapter.OnAccountCleared()
		c.logger.Info().Msg("Account cleared")
	}

	c.bus.Publish(events.AccountChanged, events.AccountChange{
		Previous:    previous,
		HadPrevious: previous != nil,
	})
}
