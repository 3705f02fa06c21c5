package dispatch

import "testing"

func TestToken_WithoutTask(t *testing.T) {
	token := &Token{path: "/v1/posts"}

	if token.HasTask() {
		t.Error("HasTask() = true for a task-less token")
	}
	if got := token.Path(); got != "/v1/posts" {
		t.Errorf("Path() = %q, want /v1/posts", got)
	}

	// Resume and Cancel are no-ops, not panics.
	token.Resume()
	token.Cancel()
}

func TestToken_DelegatesToHandle(t *testing.T) {
	resumed := make(chan struct{}, 1)
	handle := &fakeHandle{run: func() { resumed <- struct{}{} }}
	token := &Token{path: "/v1/posts", handle: handle}

	if !token.HasTask() {
		t.Error("HasTask() = false for a token with a handle")
	}

	token.Resume()
	select {
	case <-resumed:
	default:
		// run is started on a goroutine; give it a moment.
		<-resumed
	}

	token.Cancel()
	handle.mu.Lock()
	cancelled := handle.cancelled
	handle.mu.Unlock()
	if !cancelled {
		t.Error("Cancel() did not reach the handle")
	}
}
