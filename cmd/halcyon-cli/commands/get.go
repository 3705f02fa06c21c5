package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/halcyon-io/halcyon-api-client/pkg/api"
)

func newGetCommand() *cobra.Command {
	var (
		params     []string
		keyPath    string
		useCache   bool
		cacheWrite bool
		retries    int
		retryDelay time.Duration
	)

	cmd := &cobra.Command{
		Use:   "get <path>",
		Short: "Fetch a single endpoint and print the payload",
		Long: `Dispatch one request and print the resulting payload as JSON.

With --cache the request is resolved against the response cache only and
fails when no entry exists; with --cache-response the fetched payload is
stored for later cache reads.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildClient(cmd.Context())
			if err != nil {
				return err
			}

			values := url.Values{}
			for _, param := range params {
				key, value, found := strings.Cut(param, "=")
				if !found {
					return fmt.Errorf("invalid query parameter %q, want key=value", param)
				}
				values.Add(key, value)
			}

			req := &api.Request{
				Path:          args[0],
				Params:        values,
				UseCache:      useCache,
				CacheResponse: cacheWrite,
				ModelKeyPath:  keyPath,
				Model:         api.RawModel,
			}
			if retries > 1 {
				req.Retry = api.MultipleAttempts(retries, retryDelay)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout())
			defer cancel()

			resp, err := c.Do(ctx, req)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(resp.Payload, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "query parameter (key=value, repeatable)")
	cmd.Flags().StringVar(&keyPath, "key-path", "", "dotted key path of the primary payload object")
	cmd.Flags().BoolVar(&useCache, "cache", false, "resolve from the response cache only")
	cmd.Flags().BoolVar(&cacheWrite, "cache-response", false, "cache the fetched payload")
	cmd.Flags().IntVar(&retries, "retries", 1, "total attempts for transient network failures")
	cmd.Flags().DurationVar(&retryDelay, "retry-delay", time.Second, "backoff before the first retry (doubles per attempt)")

	return cmd
}
