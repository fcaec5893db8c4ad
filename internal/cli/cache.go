package cli

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matzehuels/fretboard/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the result cache",
		Long: `Manage the result cache.

Computed scales, chord fingerings and fretboards are cached on disk so
repeated requests are instant. Entries expire on their own; the [cache]
section of the config file can cap their lifetime or disable caching.`,
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cacheInfoCommand())

	return cmd
}

// openFileCache opens the cache directory if it exists.
func (c *CLI) openFileCache() (*cache.FileCache, string, error) {
	dir, err := c.cacheDir()
	if err != nil {
		return nil, "", fmt.Errorf("get cache dir: %w", err)
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, dir, nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, dir, err
	}
	return fc, dir, nil
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			fc, dir, err := c.openFileCache()
			if err != nil {
				return err
			}
			if fc == nil {
				printInfo(w, "Cache is empty")
				return nil
			}

			entries, size, err := fc.Stats()
			if err != nil {
				return fmt.Errorf("scan cache: %w", err)
			}
			if err := fc.Clear(); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess(w, "Cleared %s cached %s (%s)", humanize.Comma(int64(entries)), plural(entries, "entry", "entries"), humanize.Bytes(uint64(size)))
			printDetail(w, "Directory: %s", dir)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}

// cacheInfoCommand creates the "cache info" subcommand.
func (c *CLI) cacheInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show cache size and settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			fc, dir, err := c.openFileCache()
			if err != nil {
				return err
			}

			var (
				entries int
				size    int64
			)
			if fc != nil {
				if entries, size, err = fc.Stats(); err != nil {
					return fmt.Errorf("scan cache: %w", err)
				}
			}

			cfg := c.config()
			status := "enabled"
			if cfg.Cache.Disabled {
				status = "disabled"
			}
			ttl := "per result kind"
			if d := cfg.CacheTTL(); d > 0 {
				ttl = "at most " + d.String()
			}

			printKeyValue(w, "Directory", dir)
			printKeyValue(w, "Status", status)
			printKeyValue(w, "Entries", humanize.Comma(int64(entries)))
			printKeyValue(w, "Size", humanize.Bytes(uint64(size)))
			printKeyValue(w, "Lifetime", ttl)
			return nil
		},
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
