// Package api defines the request descriptor data model, retry policy,
// typed response wrapper, and error domain shared by the dispatch engine
// and its collaborators.
package api

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Request is an immutable-by-value description of one logical API call.
// Construct one per call; continuations of a paginated response are derived
// with CloneWithPath so that every field except the path is preserved.
type Request struct {
	// Path is the logical endpoint path (e.g. "/v1/posts").
	Path string

	// Params are the transport query parameters.
	// A request with UseCache set never mutates Params.
	Params url.Values

	// UseCache selects the cache-path: the response cache is consulted by
	// cache key and no network activity occurs.
	UseCache bool

	// CacheResponse enables the cache write after a payload has been
	// successfully decoded (verify-then-cache).
	CacheResponse bool

	// Retry governs rescheduling of transient network failures.
	Retry RetryPolicy

	// ModelKeyPath locates the primary object inside the payload,
	// as a dotted path (e.g. "data.post"). Empty means the payload root.
	ModelKeyPath string

	// Model decodes the located object into its typed model.
	Model ModelDecoder
}

// CacheKey generates a deterministic cache key string for the request.
// Format: api:path:param1=val1:param2=val2
//
// Example:
//
//	api:v1/posts:page=2:per_page=20
func (r *Request) CacheKey() string {
	parts := []string{"api"}

	path := strings.Trim(r.Path, "/")
	if path != "" {
		parts = append(parts, path)
	}

	if len(r.Params) > 0 {
		keys := make([]string, 0, len(r.Params))
		for key := range r.Params {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, r.Params.Get(key)))
		}
	}

	return strings.Join(parts, ":")
}

// CloneWithPath returns a copy of the request pointing at a new path.
// Model, retry policy, cache flags and parameters are preserved, which is
// what makes the copy usable as a paginated continuation.
func (r *Request) CloneWithPath(path string) *Request {
	clone := *r
	clone.Path = path
	if r.Params != nil {
		clone.Params = make(url.Values, len(r.Params))
		for key, values := range r.Params {
			clone.Params[key] = append([]string(nil), values...)
		}
	}
	return &clone
}

// WithRetry returns a copy of the request carrying an updated retry policy.
// Used by the engine to reschedule a failed attempt with decremented state.
func (r *Request) WithRetry(policy RetryPolicy) *Request {
	clone := r.CloneWithPath(r.Path)
	clone.Retry = policy
	return clone
}

// Validate checks the structural invariants of the descriptor.
func (r *Request) Validate() error {
	if r.Path == "" {
		return ErrRequestMalformed
	}
	return nil
}
