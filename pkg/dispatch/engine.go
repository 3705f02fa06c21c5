// Package dispatch implements the request execution pipeline: per request
// it decides between cache and network, interprets success and failure,
// derives paginated continuations, and retries transient failures with
// exponential backoff, exposing a single execute/cancel contract.
package dispatch

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/halcyon-io/halcyon-api-client/pkg/api"
	"github.com/halcyon-io/halcyon-api-client/pkg/cache"
	"github.com/halcyon-io/halcyon-api-client/pkg/events"
	"github.com/halcyon-io/halcyon-api-client/pkg/transport"
)

// Callback receives exactly one terminal result per attempt. Retried
// requests invoke the same callback once for every attempt; a cancelled
// attempt invokes nothing.
type Callback func(*api.Response, error)

// Executor runs a callback on a caller-chosen execution context. The
// default executor invokes the callback on the engine's delivery goroutine.
type Executor func(func())

// Options control how a single Execute call behaves.
type Options struct {
	// StartImmediately resumes the transport task before Execute returns.
	StartImmediately bool

	// Executor, when set, receives every callback invocation for this
	// request. Callbacks are never invoked inline on the Execute caller.
	Executor Executor
}

// Engine orchestrates cache lookup, transport invocation, interpretation,
// pagination link resolution, retry scheduling, and event broadcasting.
// Safe for concurrent use.
type Engine struct {
	mu      sync.RWMutex
	adapter transport.Adapter

	store  cache.Store
	bus    *events.Bus
	logger zerolog.Logger
}

// NewEngine creates an engine over the given collaborators. The cache store
// and bus must be non-nil; use cache.NewNopStore() to disable caching.
func NewEngine(adapter transport.Adapter, store cache.Store, bus *events.Bus, logger zerolog.Logger) *Engine {
	return &Engine{
		adapter: adapter,
		store:   store,
		bus:     bus,
		logger:  logger.With().Str("component", "dispatch").Logger(),
	}
}

// SetAdapter installs a new transport adapter. Tokens issued earlier keep
// running against the adapter that created their task.
func (e *Engine) SetAdapter(adapter transport.Adapter) {
	e.mu.Lock()
	e.adapter = adapter
	e.mu.Unlock()
}

func (e *Engine) currentAdapter() transport.Adapter {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.adapter
}

// Execute dispatches one request descriptor. The returned token supports
// Resume and Cancel; for cache-path requests it carries no task. The
// callback fires exactly once per attempt with a terminal result, except
// when the attempt was cancelled.
func (e *Engine) Execute(req *api.Request, opts Options, cb Callback) (*Token, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.UseCache {
		token := &Token{path: req.Path}
		go e.executeCachePath(req, opts, cb)
		return token, nil
	}

	return e.executeNetworkPath(req, opts, cb)
}

// executeCachePath resolves the request against the response cache. There
// is no network fallback on any failure branch.
func (e *Engine) executeCachePath(req *api.Request, opts Options, cb Callback) {
	start := time.Now()
	key := req.CacheKey()

	payload, err := e.store.Lookup(context.Background(), key)
	switch {
	case errors.Is(err, cache.ErrCacheMiss):
		e.logger.Debug().Str("endpoint", req.Path).Str("cache_key", key).Msg("Cache miss")
		failure := api.NewError(api.CodeCachedResponseNotFound, api.ClassUnclassified,
			"no cached response for "+req.Path, api.ErrCachedResponseNotFound)
		e.dispatchFailure(failure, nil)
		e.deliver(opts, cb, nil, failure)
	case err != nil:
		e.logger.Warn().Err(err).Str("endpoint", req.Path).Msg("Cache lookup error")
		failure := api.NewError(api.CodeStorageFailure, api.ClassUnclassified, "cache lookup failed", err)
		e.dispatchFailure(failure, nil)
		e.deliver(opts, cb, nil, failure)
	default:
		e.interpret(req, payload, true, opts, cb)
	}

	requestDuration.WithLabelValues(req.Path).Observe(time.Since(start).Seconds())
}

// executeNetworkPath invokes the transport adapter. Raw results are handled
// on the adapter's background goroutine, decoupled from the caller.
func (e *Engine) executeNetworkPath(req *api.Request, opts Options, cb Callback) (*Token, error) {
	start := time.Now()

	e.logger.Debug().
		Str("endpoint", req.Path).
		Int("attempts_remaining", req.Retry.Remaining()).
		Msg("Dispatching request")

	handle, err := e.currentAdapter().Call(req, func(raw transport.RawResult) {
		e.handleRawResult(req, raw, opts, cb)
		requestDuration.WithLabelValues(req.Path).Observe(time.Since(start).Seconds())
	})
	if err != nil {
		// The adapter produced no task: malformed request, never retried.
		failure := api.NewError(api.CodeRequestMalformed, api.ClassUnclassified,
			"transport rejected request", err)
		token := &Token{path: req.Path}
		go func() {
			e.dispatchFailure(failure, nil)
			e.deliver(opts, cb, nil, failure)
		}()
		return token, nil
	}

	token := &Token{path: req.Path, handle: handle}
	if opts.StartImmediately {
		handle.Resume()
	}
	return token, nil
}

// handleRawResult consumes one terminal raw result from the transport.
func (e *Engine) handleRawResult(req *api.Request, raw transport.RawResult, opts Options, cb Callback) {
	if raw.Err != nil {
		if api.IsCancellation(raw.Err) {
			// Suppressed: no callback, no notification.
			e.logger.Debug().Str("endpoint", req.Path).Msg("Request cancelled, result suppressed")
			return
		}

		e.dispatchFailure(raw.Err, raw.Request)
		e.applyRetry(req, raw.Err, opts, cb)
		requestsTotal.WithLabelValues(req.Path, "failure").Inc()
		e.deliver(opts, cb, nil, raw.Err)
		return
	}

	e.interpret(req, raw.Payload, false, opts, cb)
}

// interpret maps a successful payload, network- or cache-derived, into a
// typed Response. The payload is committed to the cache only after mapping
// succeeds, and only when the descriptor asks for it.
func (e *Engine) interpret(req *api.Request, payload map[string]any, cached bool, opts Options, cb Callback) {
	if len(payload) == 0 {
		if api.IsNoContent(req.Model) {
			model, _ := req.Model.DecodeModel(nil)
			requestsTotal.WithLabelValues(req.Path, "success").Inc()
			e.deliver(opts, cb, &api.Response{
				Model:   model,
				Payload: map[string]any{},
				Cached:  cached,
			}, nil)
			return
		}

		failure := api.NewError(api.CodeInvalidResponseDictionary, api.ClassUnclassified,
			"empty payload for "+req.Path, api.ErrInvalidResponseDictionary)
		e.dispatchFailure(failure, nil)
		requestsTotal.WithLabelValues(req.Path, "failure").Inc()
		e.deliver(opts, cb, nil, failure)
		return
	}

	object, ok := api.ResolveKeyPath(payload, req.ModelKeyPath)
	if !ok {
		e.failMapping(req, opts, cb,
			api.NewError(api.CodeMappingFailure, api.ClassUnclassified,
				"model key path "+req.ModelKeyPath+" not found", nil))
		return
	}

	model, err := req.Model.DecodeModel(object)
	if err != nil {
		e.failMapping(req, opts, cb,
			api.NewError(api.CodeMappingFailure, api.ClassUnclassified, "model mapping failed", err))
		return
	}

	response := &api.Response{
		Model:      model,
		Payload:    payload,
		Cached:     cached,
		Pagination: buildPagination(req, payload),
	}

	if req.CacheResponse && !cached {
		if err := e.store.Store(context.Background(), req.CacheKey(), payload); err != nil {
			e.logger.Warn().Err(err).Str("endpoint", req.Path).Msg("Failed to cache response")
		} else {
			e.logger.Debug().
				Str("endpoint", req.Path).
				Str("cache_key", req.CacheKey()).
				Msg("Cached response payload")
		}
	}

	requestsTotal.WithLabelValues(req.Path, "success").Inc()
	e.deliver(opts, cb, response, nil)
}

// failMapping removes any previously cached entry for the request's key so
// the cache never holds a payload the engine cannot reinterpret, then
// routes the failure.
func (e *Engine) failMapping(req *api.Request, opts Options, cb Callback, failure *api.Error) {
	key := req.CacheKey()
	if err := e.store.Remove(context.Background(), key); err != nil {
		e.logger.Warn().Err(err).Str("cache_key", key).Msg("Failed to evict cache entry")
	} else {
		cache.CacheEvictions.WithLabelValues("mapping_failure").Inc()
	}

	e.logger.Warn().
		Str("endpoint", req.Path).
		Str("cache_key", key).
		Msg("Model mapping failed, cache entry evicted")

	e.dispatchFailure(failure, nil)
	requestsTotal.WithLabelValues(req.Path, "failure").Inc()
	e.deliver(opts, cb, nil, failure)
}

// dispatchFailure classifies a terminal failure and broadcasts the global
// events its class demands. Unclassified failures reach only the callback.
// The outgoing request, when available, supplies the bearer token for
// invalid-token events.
func (e *Engine) dispatchFailure(err error, outgoing *http.Request) {
	class := api.ClassOf(err)
	errorsTotal.WithLabelValues(string(class)).Inc()

	switch class {
	case api.ClassServiceUnavailable:
		e.bus.Publish(events.ServiceUnavailable, nil)
	case api.ClassInvalidToken:
		// The token rides along only when the outgoing request carried one.
		if token, ok := transport.BearerToken(outgoing); ok {
			e.bus.Publish(events.InvalidToken, events.TokenInfo{Token: token})
		} else {
			e.bus.Publish(events.InvalidToken, nil)
		}
	}
}

// applyRetry reschedules a failed network attempt when the descriptor's
// policy permits. The failure callback for the current attempt still fires;
// the rescheduled attempt later produces its own terminal callback.
func (e *Engine) applyRetry(req *api.Request, cause error, opts Options, cb Callback) {
	class := string(api.ClassOf(cause))

	if !req.Retry.ShouldRetry() {
		if req.Retry.Remaining() == 1 {
			retryExhaustedTotal.WithLabelValues(class).Inc()
			e.logger.Warn().
				Str("endpoint", req.Path).
				Str("error_class", class).
				Msg("Retry attempts exhausted")
		}
		return
	}

	delay := req.Retry.Delay()
	next := req.WithRetry(req.Retry.Next())

	retriesTotal.WithLabelValues(class).Inc()
	retryBackoffSeconds.WithLabelValues(class).Observe(delay.Seconds())

	e.logger.Debug().
		Str("endpoint", req.Path).
		Str("error_class", class).
		Dur("backoff", delay).
		Int("attempts_remaining", next.Retry.Remaining()).
		Msg("Retrying request after backoff")

	time.AfterFunc(delay, func() {
		if _, err := e.Execute(next, Options{StartImmediately: true, Executor: opts.Executor}, cb); err != nil {
			e.logger.Error().Err(err).Str("endpoint", next.Path).Msg("Retry dispatch failed")
		}
	})
}

// deliver invokes the callback with a terminal result, on the caller's
// executor when one was supplied. Never inline on the Execute caller.
func (e *Engine) deliver(opts Options, cb Callback, resp *api.Response, err error) {
	if cb == nil {
		return
	}
	if opts.Executor != nil {
		opts.Executor(func() { cb(resp, err) })
		return
	}
	cb(resp, err)
}

// Do is the blocking convenience wrapper over Execute: it dispatches the
// request immediately and waits for the final terminal result, honoring
// ctx. Intermediate per-attempt failures are absorbed; the last one is
// returned when every attempt fails.
func (e *Engine) Do(ctx context.Context, req *api.Request) (*api.Response, error) {
	attempts := req.Retry.Remaining()
	if attempts < 1 {
		attempts = 1
	}

	type outcome struct {
		resp *api.Response
		err  error
	}
	results := make(chan outcome, attempts)

	token, err := e.Execute(req, Options{StartImmediately: true}, func(resp *api.Response, err error) {
		results <- outcome{resp: resp, err: err}
	})
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		select {
		case <-ctx.Done():
			token.Cancel()
			return nil, ctx.Err()
		case out := <-results:
			if out.err == nil {
				return out.resp, nil
			}
			lastErr = out.err
			// Only transport failures are retried; every other code is
			// terminal for the logical call.
			if code, ok := api.CodeOf(out.err); ok && code != api.CodeTransportFailure {
				return nil, out.err
			}
		}
	}
	return nil, lastErr
}
