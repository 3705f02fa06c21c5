package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/halcyon-io/halcyon-api-client/pkg/api"
	"github.com/halcyon-io/halcyon-api-client/pkg/client"
)

func newServeCommand() *cobra.Command {
	var listenAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a caching proxy in front of the API",
		Long: `Expose the client runtime as an HTTP proxy. Requests under /api/ are
dispatched through the engine with cache writes enabled, so repeated reads
are served from the response cache. /health, /ready and /metrics serve
liveness, readiness and Prometheus metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildClient(cmd.Context())
			if err != nil {
				return err
			}

			var redisClient *redis.Client
			if addr := viper.GetString("redis_addr"); addr != "" {
				redisClient = redis.NewClient(&redis.Options{Addr: addr})
			}

			mux := http.NewServeMux()
			mux.HandleFunc("/health", healthHandler)
			mux.HandleFunc("/ready", readyHandler(redisClient))
			mux.Handle("/metrics", promhttp.Handler())
			mux.HandleFunc("/api/", proxyHandler(c))

			server := &http.Server{
				Addr:              listenAddr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}

			go func() {
				<-cmd.Context().Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					log.Error().Err(err).Msg("Server shutdown failed")
				}
			}()

			log.Info().Str("addr", listenAddr).Msg("Starting proxy server")
			if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&listenAddr, "listen", ":8080", "listen address")

	return cmd
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// readyHandler reports ready once the cache backend answers. Without Redis
// the proxy is ready as soon as it serves.
func readyHandler(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := redisClient.Ping(ctx).Err(); err != nil {
				http.Error(w, fmt.Sprintf("redis unavailable: %v", err), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	}
}

// proxyHandler dispatches /api/<path> through the engine and renders the
// payload as JSON. Cache writes are enabled so repeated reads hit the cache.
func proxyHandler(c *client.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		endpoint := r.URL.Path[len("/api"):]
		if endpoint == "" {
			http.Error(w, "missing endpoint path", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout())
		defer cancel()

		req := &api.Request{
			Path:          endpoint,
			Params:        r.URL.Query(),
			CacheResponse: true,
			Model:         api.RawModel,
			Retry:         api.MultipleAttempts(2, 500*time.Millisecond),
		}

		// Cache read first; a miss falls back to the network leg, whose
		// verified payload is then cached for the next read.
		cached := *req
		cached.UseCache = true
		resp, err := c.Do(ctx, &cached)
		if err != nil && errors.Is(err, api.ErrCachedResponseNotFound) {
			resp, err = c.Do(ctx, req)
		}
		if err != nil {
			http.Error(w, fmt.Sprintf("upstream request failed: %v", err), http.StatusBadGateway)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if resp.Cached {
			w.Header().Set("X-Cache", "HIT")
		}
		if err := json.NewEncoder(w).Encode(resp.Payload); err != nil {
			log.Error().Err(err).Str("endpoint", endpoint).Msg("Failed to write response")
		}
	}
}
