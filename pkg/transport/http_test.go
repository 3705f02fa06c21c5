package transport

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/halcyon-io/halcyon-api-client/internal/testutil"
	"github.com/halcyon-io/halcyon-api-client/pkg/api"
)

func newTestAdapter(t *testing.T, baseURL string) *HTTPAdapter {
	t.Helper()
	adapter, err := NewHTTPAdapter(DefaultConfig(baseURL), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHTTPAdapter() error = %v", err)
	}
	return adapter
}

func call(t *testing.T, adapter *HTTPAdapter, req *api.Request) RawResult {
	t.Helper()

	results := make(chan RawResult, 1)
	handle, err := adapter.Call(req, func(raw RawResult) { results <- raw })
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	handle.Resume()

	select {
	case raw := <-results:
		return raw
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for raw result")
		return RawResult{}
	}
}

func TestNewHTTPAdapter_RequiresBaseURL(t *testing.T) {
	if _, err := NewHTTPAdapter(Config{}, zerolog.Nop()); err == nil {
		t.Error("NewHTTPAdapter() should reject an empty base URL")
	}
}

func TestHTTPAdapter_DecodesJSONPayload(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/v1/posts/1", testutil.NewJSONResponse(`{"post": {"id": 1, "title": "hi"}}`))

	adapter := newTestAdapter(t, mock.URL())
	raw := call(t, adapter, &api.Request{Path: "/v1/posts/1"})

	if raw.Err != nil {
		t.Fatalf("RawResult.Err = %v", raw.Err)
	}
	post, ok := raw.Payload["post"].(map[string]any)
	if !ok || post["id"] != float64(1) {
		t.Errorf("Payload = %v", raw.Payload)
	}
	if raw.Request == nil {
		t.Error("RawResult should carry the outgoing request")
	}
}

func TestHTTPAdapter_QueryParamsAndHeaders(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()

	var gotQuery url.Values
	mock.SetHandler("/v1/posts", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok": true}`))
	})

	adapter := newTestAdapter(t, mock.URL())
	raw := call(t, adapter, &api.Request{
		Path:   "/v1/posts",
		Params: url.Values{"page": {"2"}, "per_page": {"20"}},
	})
	if raw.Err != nil {
		t.Fatalf("RawResult.Err = %v", raw.Err)
	}

	if gotQuery.Get("page") != "2" || gotQuery.Get("per_page") != "20" {
		t.Errorf("Query = %v", gotQuery)
	}
	if ua := mock.LastRequestHeader.Get("User-Agent"); ua != DefaultConfig(mock.URL()).UserAgent {
		t.Errorf("User-Agent = %q", ua)
	}
	if accept := mock.LastRequestHeader.Get("Accept"); accept != "application/json" {
		t.Errorf("Accept = %q", accept)
	}
}

func TestHTTPAdapter_BearerTokenLifecycle(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()

	adapter := newTestAdapter(t, mock.URL())
	req := &api.Request{Path: "/v1/me"}

	// Unauthenticated by default.
	call(t, adapter, req)
	if mock.GetAuthorizedCount() != 0 {
		t.Error("Request carried a token before authentication")
	}

	adapter.OnAuthenticated(&api.Account{ID: "u1", Token: "tok-123"})
	call(t, adapter, req)
	if mock.GetAuthorizedCount() != 1 {
		t.Error("Authenticated request did not carry a token")
	}
	if auth := mock.LastRequestHeader.Get("Authorization"); auth != "Bearer tok-123" {
		t.Errorf("Authorization = %q", auth)
	}

	adapter.OnAccountCleared()
	call(t, adapter, req)
	if mock.GetAuthorizedCount() != 1 {
		t.Error("Request carried a token after the account was cleared")
	}
}

func TestHTTPAdapter_StatusClassification(t *testing.T) {
	tests := []struct {
		name      string
		response  testutil.MockResponse
		wantClass api.Class
	}{
		{"service unavailable", testutil.NewUnavailableResponse(), api.ClassServiceUnavailable},
		{"invalid token", testutil.NewUnauthorizedResponse(), api.ClassInvalidToken},
		{"server error", testutil.NewServerErrorResponse(), api.ClassUnclassified},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockAPI()
			defer mock.Close()
			mock.SetResponse("/v1/posts", tt.response)

			adapter := newTestAdapter(t, mock.URL())
			raw := call(t, adapter, &api.Request{Path: "/v1/posts"})

			if raw.Err == nil {
				t.Fatal("Expected a classified error")
			}
			if got := api.ClassOf(raw.Err); got != tt.wantClass {
				t.Errorf("Class = %q, want %q", got, tt.wantClass)
			}
			if code, _ := api.CodeOf(raw.Err); code != api.CodeTransportFailure {
				t.Errorf("Code = %q, want transportFailure", code)
			}
		})
	}
}

func TestHTTPAdapter_EmptyBodyYieldsNilPayload(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/v1/posts/1", testutil.NewNoContentResponse())

	adapter := newTestAdapter(t, mock.URL())
	raw := call(t, adapter, &api.Request{Path: "/v1/posts/1"})

	if raw.Err != nil {
		t.Fatalf("RawResult.Err = %v", raw.Err)
	}
	if raw.Payload != nil {
		t.Errorf("Payload = %v, want nil", raw.Payload)
	}
}

func TestHTTPAdapter_CancelYieldsCancellation(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/v1/slow", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"ok": true}`,
		Delay:      2 * time.Second,
	})

	adapter := newTestAdapter(t, mock.URL())

	results := make(chan RawResult, 1)
	handle, err := adapter.Call(&api.Request{Path: "/v1/slow"}, func(raw RawResult) { results <- raw })
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	handle.Resume()
	time.Sleep(50 * time.Millisecond)
	handle.Cancel()

	select {
	case raw := <-results:
		if !api.IsCancellation(raw.Err) {
			t.Errorf("RawResult.Err = %v, want cancellation", raw.Err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for cancelled result")
	}
}

func TestHTTPAdapter_ReleasesContextOnCompletion(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/v1/posts/1", testutil.NewJSONResponse(`{"ok": true}`))

	adapter := newTestAdapter(t, mock.URL())
	raw := call(t, adapter, &api.Request{Path: "/v1/posts/1"})
	if raw.Err != nil {
		t.Fatalf("RawResult.Err = %v", raw.Err)
	}

	// The handle cancels its derived context after delivery so the exchange
	// never leaks a context on the normal completion path.
	deadline := time.Now().Add(time.Second)
	for raw.Request.Context().Err() == nil {
		if time.Now().After(deadline) {
			t.Fatal("Derived context still live after delivery")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHTTPAdapter_TimeoutIsTransportFailure(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/v1/slow", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"ok": true}`,
		Delay:      500 * time.Millisecond,
	})

	cfg := DefaultConfig(mock.URL())
	cfg.Timeout = 50 * time.Millisecond
	adapter, err := NewHTTPAdapter(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHTTPAdapter() error = %v", err)
	}

	raw := call(t, adapter, &api.Request{Path: "/v1/slow"})
	if raw.Err == nil {
		t.Fatal("Expected a timeout error")
	}
	// A client timeout unwraps to context.DeadlineExceeded; it must stay a
	// retryable transport failure, not a suppressed cancellation.
	if api.IsCancellation(raw.Err) {
		t.Fatalf("RawResult.Err = %v, classified as cancellation", raw.Err)
	}
	if code, ok := api.CodeOf(raw.Err); !ok || code != api.CodeTransportFailure {
		t.Errorf("Code = %q, want transportFailure", code)
	}
}

func TestHTTPAdapter_ResumeIsIdempotent(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()

	adapter := newTestAdapter(t, mock.URL())

	results := make(chan RawResult, 4)
	handle, err := adapter.Call(&api.Request{Path: "/v1/posts"}, func(raw RawResult) { results <- raw })
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	for i := 0; i < 4; i++ {
		handle.Resume()
	}

	<-results
	time.Sleep(100 * time.Millisecond)
	if mock.GetRequestCount() != 1 {
		t.Errorf("Requests = %d, want 1", mock.GetRequestCount())
	}
	select {
	case <-results:
		t.Error("Multiple results delivered for one task")
	default:
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		wantOK bool
	}{
		{"bearer token", "Bearer abc123", "abc123", true},
		{"missing header", "", "", false},
		{"wrong scheme", "Basic abc123", "", false},
		{"empty token", "Bearer ", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "https://example.com", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			got, ok := BearerToken(req)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("BearerToken() = %q, %v, want %q, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}

	if _, ok := BearerToken(nil); ok {
		t.Error("BearerToken(nil) ok = true")
	}
}
