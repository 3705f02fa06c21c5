package commands

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/halcyon-io/halcyon-api-client/pkg/api"
	"github.com/halcyon-io/halcyon-api-client/pkg/pagination"
)

func newWalkCommand() *cobra.Command {
	var (
		params   []string
		keyPath  string
		maxPages int
	)

	cmd := &cobra.Command{
		Use:   "walk <path>",
		Short: "Fetch a paginated collection across all pages",
		Long: `Dispatch a request and follow its pagination continuations until the
collection ends or --max-pages is reached. Payloads are printed as a JSON
array, one element per page.`,
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

			walkerCfg := pagination.DefaultConfig()
			if maxPages > 0 {
				walkerCfg.MaxPages = maxPages
			}
			walkerCfg.Timeout = requestTimeout()

			walker := pagination.NewWalker(c.Engine(), walkerCfg)
			pages, err := walker.FetchAll(cmd.Context(), &api.Request{
				Path:         args[0],
				Params:       values,
				ModelKeyPath: keyPath,
				Model:        api.RawModel,
				Retry:        api.MultipleAttempts(3, time.Second),
			})
			if err != nil {
				// Partial results are still printed below.
				fmt.Fprintf(cmd.ErrOrStderr(), "walk aborted after %d pages: %v\n", len(pages), err)
			}

			payloads := make([]map[string]any, 0, len(pages))
			for _, page := range pages {
				payloads = append(payloads, page.Payload)
			}
			out, marshalErr := json.MarshalIndent(payloads, "", "  ")
			if marshalErr != nil {
				return marshalErr
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}

	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "query parameter (key=value, repeatable)")
	cmd.Flags().StringVar(&keyPath, "key-path", "", "dotted key path of the primary payload object")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "page cap (0 uses the default)")

	return cmd
}
