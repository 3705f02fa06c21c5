package pagination

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/halcyon-io/halcyon-api-client/pkg/api"
)

// scriptedFetcher returns canned responses keyed by request path.
type scriptedFetcher struct {
	responses map[string]*api.Response
	errs      map[string]error
	calls     []string
}

func (f *scriptedFetcher) Do(_ context.Context, req *api.Request) (*api.Response, error) {
	f.calls = append(f.calls, req.Path)
	if err, ok := f.errs[req.Path]; ok {
		return nil, err
	}
	resp, ok := f.responses[req.Path]
	if !ok {
		return nil, fmt.Errorf("unexpected path %q", req.Path)
	}
	return resp, nil
}

func pageChain(paths ...string) map[string]*api.Response {
	responses := make(map[string]*api.Response, len(paths))
	for i, path := range paths {
		resp := &api.Response{Payload: map[string]any{"page": float64(i + 1)}}
		if i+1 < len(paths) {
			resp.Pagination = &api.Pagination{
				Next: &api.Request{Path: paths[i+1]},
			}
		}
		responses[path] = resp
	}
	return responses
}

func TestWalker_FollowsNextChain(t *testing.T) {
	fetcher := &scriptedFetcher{responses: pageChain("/v?page=1", "/v?page=2", "/v?page=3")}
	walker := NewWalker(fetcher, DefaultConfig())

	pages, err := walker.FetchAll(context.Background(), &api.Request{Path: "/v?page=1"})
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("Pages = %d, want 3", len(pages))
	}
	want := []string{"/v?page=1", "/v?page=2", "/v?page=3"}
	for i, path := range want {
		if fetcher.calls[i] != path {
			t.Errorf("Call %d = %q, want %q", i, fetcher.calls[i], path)
		}
	}
}

func TestWalker_SinglePageWithoutPagination(t *testing.T) {
	fetcher := &scriptedFetcher{responses: map[string]*api.Response{
		"/v1/posts/1": {Payload: map[string]any{"id": float64(1)}},
	}}
	walker := NewWalker(fetcher, DefaultConfig())

	pages, err := walker.FetchAll(context.Background(), &api.Request{Path: "/v1/posts/1"})
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if len(pages) != 1 {
		t.Errorf("Pages = %d, want 1", len(pages))
	}
}

func TestWalker_MaxPagesCapsTraversal(t *testing.T) {
	// Self-referencing page: would loop forever without a cap.
	fetcher := &scriptedFetcher{responses: map[string]*api.Response{
		"/v?page=1": {
			Payload:    map[string]any{},
			Pagination: &api.Pagination{Next: &api.Request{Path: "/v?page=1"}},
		},
	}}
	walker := NewWalker(fetcher, Config{MaxPages: 5})

	pages, err := walker.FetchAll(context.Background(), &api.Request{Path: "/v?page=1"})
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if len(pages) != 5 {
		t.Errorf("Pages = %d, want 5", len(pages))
	}
}

func TestWalker_MidChainFailureReturnsPartial(t *testing.T) {
	boom := errors.New("boom")
	fetcher := &scriptedFetcher{
		responses: pageChain("/v?page=1", "/v?page=2", "/v?page=3"),
		errs:      map[string]error{"/v?page=2": boom},
	}
	walker := NewWalker(fetcher, DefaultConfig())

	pages, err := walker.FetchAll(context.Background(), &api.Request{Path: "/v?page=1"})
	if !errors.Is(err, boom) {
		t.Fatalf("FetchAll() error = %v, want wrapped boom", err)
	}
	if len(pages) != 1 {
		t.Errorf("Partial pages = %d, want 1", len(pages))
	}
}
