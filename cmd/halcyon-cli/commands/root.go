// Package commands implements the halcyon CLI command tree.
package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/halcyon-io/halcyon-api-client/pkg/api"
	"github.com/halcyon-io/halcyon-api-client/pkg/client"
)

// Execute runs the root command.
func Execute(ctx context.Context, version, commit string) error {
	rootCmd := newRootCommand(version, commit)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "halcyon",
		Short: "Halcyon API command line client",
		Long: `Issue requests against the Halcyon API through the client runtime:
cache-or-network resolution, typed payload mapping, pagination traversal,
and retry with exponential backoff.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("base-url", "", "API base URL")
	rootCmd.PersistentFlags().String("user-agent", "halcyon-cli/"+version, "User-Agent header")
	rootCmd.PersistentFlags().String("redis-addr", "", "Redis address for the response cache (empty disables caching)")
	rootCmd.PersistentFlags().String("token", "", "bearer token for authenticated endpoints")
	rootCmd.PersistentFlags().Duration("timeout", 30*time.Second, "per-request timeout")

	viper.BindPFlag("base_url", rootCmd.PersistentFlags().Lookup("base-url"))
	viper.BindPFlag("user_agent", rootCmd.PersistentFlags().Lookup("user-agent"))
	viper.BindPFlag("redis_addr", rootCmd.PersistentFlags().Lookup("redis-addr"))
	viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))
	viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))

	viper.SetEnvPrefix("HALCYON")
	viper.AutomaticEnv()

	rootCmd.AddCommand(newGetCommand())
	rootCmd.AddCommand(newWalkCommand())
	rootCmd.AddCommand(newServeCommand())

	return rootCmd
}

// buildClient assembles a client from the resolved configuration.
func buildClient(ctx context.Context) (*client.Client, error) {
	baseURL := viper.GetString("base_url")
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is required (--base-url or HALCYON_BASE_URL)")
	}

	var redisClient *redis.Client
	if addr := viper.GetString("redis_addr"); addr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: addr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
		}
	}

	cfg := client.DefaultConfig(baseURL, redisClient)
	cfg.Transport.UserAgent = viper.GetString("user_agent")
	if timeout := viper.GetDuration("timeout"); timeout > 0 {
		cfg.Transport.Timeout = timeout
	}

	c, err := client.New(cfg)
	if err != nil {
		return nil, err
	}

	if token := viper.GetString("token"); token != "" {
		c.SetAccount(&api.Account{ID: "cli", Token: token})
	}
	return c, nil
}

func requestTimeout() time.Duration {
	if timeout := viper.GetDuration("timeout"); timeout > 0 {
		return timeout
	}
	return 30 * time.Second
}
