package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/famtree/internal/config"
	"github.com/matzehuels/famtree/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the render and document caches",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear rendered frames and fetched documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Cache.Backend == config.BackendNone {
				printInfo("Render cache is disabled")
			} else {
				backend, err := c.newCache(cmd.Context(), cfg.Cache, false)
				if err != nil {
					return err
				}
				defer backend.Close()

				clearer, ok := backend.(cache.Clearer)
				if !ok {
					return fmt.Errorf("%s cache cannot be cleared", cfg.Cache.Backend)
				}
				n, err := clearer.Clear(cmd.Context())
				if err != nil {
					return fmt.Errorf("clear render cache: %w", err)
				}
				printSuccess("Cleared %d rendered frames", n)
				if fc, ok := backend.(*cache.FileCache); ok {
					printDetail("Directory: %s", fc.Dir())
				}
			}

			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			n, err := removeFiles(filepath.Join(dir, "documents"))
			if err != nil {
				return fmt.Errorf("clear document cache: %w", err)
			}
			printSuccess("Cleared %d fetched documents", n)
			return nil
		},
	}
}

// removeFiles deletes the regular files directly inside dir. A missing
// directory counts as empty.
func removeFiles(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	count := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err == nil {
			count++
		}
	}
	return count, nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Println(dir)
			return nil
		},
	}
}
