// Package transport defines the adapter contract the dispatch engine
// consumes, and provides the default net/http JSON adapter.
package transport

import (
	"net/http"
	"strings"
	"time"

	"github.com/halcyon-io/halcyon-api-client/pkg/api"
)

// RawResult is the terminal outcome of a single transport attempt: either a
// decoded payload map or a classified error, together with the outgoing
// request for header inspection. Consumed exactly once per attempt.
type RawResult struct {
	Payload map[string]any
	Request *http.Request
	Err     error
}

// Handle represents one in-flight transport task.
type Handle interface {
	// Resume begins or continues execution of the task.
	Resume()

	// Cancel aborts the task best-effort. A result already produced before
	// cancel is observed is still delivered.
	Cancel()
}

// Adapter executes a single network call for a request descriptor and
// yields a RawResult asynchronously via deliver. The returned handle does
// not start executing until Resume is called.
type Adapter interface {
	Call(req *api.Request, deliver func(RawResult)) (Handle, error)

	// OnAuthenticated installs the account's bearer token on outgoing calls.
	OnAuthenticated(account *api.Account)

	// OnAccountCleared removes any installed bearer token.
	OnAccountCleared()
}

// Config holds transport adapter settings.
type Config struct {
	// BaseURL is the scheme+host prefix for all request paths.
	BaseURL string

	// UserAgent is sent on every outgoing request.
	UserAgent string

	// Timeout bounds a single network attempt.
	Timeout time.Duration
}

// DefaultConfig returns safe transport defaults for the given base URL.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:   baseURL,
		UserAgent: "halcyon-api-client/1.0",
		Timeout:   30 * time.Second,
	}
}

// BearerToken extracts the bearer token from a request's Authorization
// header, if present.
func BearerToken(req *http.Request) (string, bool) {
	if req == nil {
		return "", false
	}
	auth := req.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "", false
	}
	token := strings.TrimSpace(auth[len(prefix):])
	return token, token != ""
}
