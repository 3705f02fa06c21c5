package dispatch

import "github.com/halcyon-io/halcyon-api-client/pkg/transport"

// Token is the opaque handle returned to the caller for one dispatched
// request. It pairs the request path with the in-flight transport task;
// cache-path tokens carry no task. A token becomes inert once the terminal
// callback has fired or Cancel has been invoked.
type Token struct {
	path   string
	handle transport.Handle
}

// Path returns the logical path of the dispatched request.
func (t *Token) Path() string {
	return t.path
}

// HasTask reports whether a live transport task backs this token.
// Cache-resolved tokens have none.
func (t *Token) HasTask() bool {
	return t.handle != nil
}

// Resume begins or continues execution of the underlying transport task.
// No-op for cache-path tokens.
func (t *Token) Resume() {
	if t.handle != nil {
		t.handle.Resume()
	}
}

// Cancel aborts the underlying transport task best-effort. If the transport
// already produced a result before cancel is observed, the failure path
// still executes. No-op for cache-path tokens.
func (t *Token) Cancel() {
	if t.handle != nil {
		t.handle.Cancel()
	}
}
