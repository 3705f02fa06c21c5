package pagination

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/halcyon-io/halcyon-api-client/pkg/api"
)

// Fetcher dispatches one request descriptor and blocks for its terminal
// result. *dispatch.Engine satisfies this via its Do method.
type Fetcher interface {
	Do(ctx context.Context, req *api.Request) (*api.Response, error)
}

// Config holds walker configuration.
type Config struct {
	// MaxPages caps how many pages a single FetchAll traverses.
	MaxPages int

	// Timeout bounds each single page fetch.
	Timeout time.Duration
}

// DefaultConfig returns safe walker defaults.
func DefaultConfig() Config {
	return Config{
		MaxPages: 100,
		Timeout:  15 * time.Second,
	}
}

// Walker traverses a paginated collection page by page.
type Walker struct {
	fetcher Fetcher
	config  Config
}

// NewWalker creates a walker over the given fetcher.
func NewWalker(fetcher Fetcher, config Config) *Walker {
	if config.MaxPages <= 0 {
		config.MaxPages = 100
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	return &Walker{fetcher: fetcher, config: config}
}

// FetchAll dispatches req and follows Next continuations until the chain
// ends or MaxPages is reached. On a mid-chain failure the pages fetched so
// far are returned alongside the error.
func (w *Walker) FetchAll(ctx context.Context, req *api.Request) ([]*api.Response, error) {
	start := time.Now()

	var pages []*api.Response
	current := req

	for current != nil && len(pages) < w.config.MaxPages {
		pageCtx, cancel := context.WithTimeout(ctx, w.config.Timeout)
		resp, err := w.fetcher.Do(pageCtx, current)
		cancel()

		if err != nil {
			log.Warn().
				Err(err).
				Str("endpoint", current.Path).
				Int("pages_fetched", len(pages)).
				Msg("Page fetch failed")
			return pages, fmt.Errorf("fetch page %d (%s): %w", len(pages)+1, current.Path, err)
		}

		pages = append(pages, resp)

		current = nil
		if resp.Pagination != nil {
			current = resp.Pagination.Next
		}

		if len(pages)%50 == 0 {
			log.Info().
				Str("endpoint", req.Path).
				Int("pages_fetched", len(pages)).
				Msg("Fetch progress")
		}
	}

	log.Info().
		Str("endpoint", req.Path).
		Int("pages", len(pages)).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	return pages, nil
}
