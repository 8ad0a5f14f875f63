package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/trackviz/internal/config"
	"github.com/matzehuels/trackviz/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the table and chart cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached table, artifact and uploaded chart",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.Config.Cache == config.CacheNone {
				printInfo("Caching is disabled")
				return nil
			}

			ch, err := c.Config.OpenCache(cmd.Context())
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer ch.Close()

			clr, ok := ch.(cache.Clearer)
			if !ok {
				printWarning("The %s cache cannot be cleared", c.Config.Cache)
				return nil
			}
			n, err := clr.Clear(cmd.Context())
			if err != nil {
				return err
			}

			printSuccess("Cleared %d cached entries", n)
			printDetail("Backend: %s", cacheLocation(c.Config))
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache lives",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(stdout, cacheLocation(c.Config))
			return nil
		},
	}
}

func cacheLocation(cfg *config.Config) string {
	switch cfg.Cache {
	case config.CacheRedis:
		return cfg.RedisURL
	case config.CacheNone:
		return "none"
	default:
		return cfg.CacheDir
	}
}
