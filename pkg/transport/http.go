package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/halcyon-io/halcyon-api-client/pkg/api"
)

// HTTPAdapter is the default Adapter over net/http. It decodes JSON bodies
// into payload maps and classifies HTTP failures for the dispatch engine.
// Safe for concurrent use; tokens issued before a reconfigure keep running
// against the adapter instance that created them.
type HTTPAdapter struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger

	mu    sync.RWMutex
	token string
}

// NewHTTPAdapter creates an adapter for the configured base URL.
func NewHTTPAdapter(cfg Config, logger zerolog.Logger) (*HTTPAdapter, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	return &HTTPAdapter{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		config:     cfg,
		logger:     logger.With().Str("component", "transport").Logger(),
	}, nil
}

// OnAuthenticated implements Adapter.
func (a *HTTPAdapter) OnAuthenticated(account *api.Account) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if account != nil {
		a.token = account.Token
	}
}

// OnAccountCleared implements Adapter.
func (a *HTTPAdapter) OnAccountCleared() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.token = ""
}

// Call implements Adapter. The returned handle executes the HTTP exchange
// on its own goroutine once resumed and delivers exactly one RawResult.
func (a *HTTPAdapter) Call(req *api.Request, deliver func(RawResult)) (Handle, error) {
	httpReq, err := a.buildRequest(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(httpReq.Context())
	httpReq = httpReq.WithContext(ctx)

	handle := &httpHandle{
		cancel: cancel,
		run: func() {
			deliver(a.execute(httpReq))
			cancel()
		},
	}
	return handle, nil
}

func (a *HTTPAdapter) buildRequest(req *api.Request) (*http.Request, error) {
	target := strings.TrimSuffix(a.config.BaseURL, "/") + "/" + strings.TrimPrefix(req.Path, "/")

	httpReq, err := http.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %q: %w", req.Path, err)
	}

	if len(req.Params) > 0 {
		httpReq.URL.RawQuery = req.Params.Encode()
	}

	httpReq.Header.Set("User-Agent", a.config.UserAgent)
	httpReq.Header.Set("Accept", "application/json")

	a.mu.RLock()
	token := a.token
	a.mu.RUnlock()
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	return httpReq, nil
}

// execute performs the exchange and classifies the outcome.
func (a *HTTPAdapter) execute(httpReq *http.Request) RawResult {
	endpoint := httpReq.URL.Path

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		if api.IsCancellation(err) {
			a.logger.Debug().Str("endpoint", endpoint).Msg("Request cancelled")
			return RawResult{Request: httpReq, Err: err}
		}
		a.logger.Error().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
		return RawResult{
			Request: httpReq,
			Err:     api.NewError(api.CodeTransportFailure, api.ClassUnclassified, "network failure", err),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		a.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Msg("API request error")
		return RawResult{Request: httpReq, Err: classifyStatus(resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return RawResult{
			Request: httpReq,
			Err:     api.NewError(api.CodeTransportFailure, api.ClassUnclassified, "read response body", err),
		}
	}

	if len(body) == 0 || resp.StatusCode == http.StatusNoContent {
		return RawResult{Request: httpReq}
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return RawResult{
			Request: httpReq,
			Err:     api.NewError(api.CodeTransportFailure, api.ClassUnclassified, "decode response body", err),
		}
	}

	return RawResult{Payload: payload, Request: httpReq}
}

// classifyStatus maps HTTP status codes to the notification-relevant
// failure classes.
func classifyStatus(status int) error {
	switch {
	case status == http.StatusServiceUnavailable:
		return api.NewError(api.CodeTransportFailure, api.ClassServiceUnavailable,
			fmt.Sprintf("status %d", status), nil)
	case status == http.StatusUnauthorized:
		return api.NewError(api.CodeTransportFailure, api.ClassInvalidToken,
			fmt.Sprintf("status %d", status), nil)
	default:
		return api.NewError(api.CodeTransportFailure, api.ClassUnclassified,
			fmt.Sprintf("status %d", status), nil)
	}
}

// httpHandle is the Handle for one HTTP exchange. Resume is idempotent and
// Cancel is best-effort through context cancellation.
type httpHandle struct {
	once   sync.Once
	cancel context.CancelFunc
	run    func()
}

// Resume implements Handle.
func (h *httpHandle) Resume() {
	h.once.Do(func() {
		go h.run()
	})
}

// Cancel implements Handle.
func (h *httpHandle) Cancel() {
	h.cancel()
}
