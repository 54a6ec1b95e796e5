package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matzehuels/framecraft/pkg/cache"
)

// The cache subcommands only manage the file backend. A Redis cache
// expires its own keys.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and clean the image cache",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "path",
			Short: "Print the cache directory",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				dir, err := c.cacheDir()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), dir)
				return nil
			},
		},
		&cobra.Command{
			Use:   "stats",
			Short: "Show cached entries per kind",
			Args:  cobra.NoArgs,
			RunE:  c.runCacheStats,
		},
		&cobra.Command{
			Use:   "prune",
			Short: "Remove expired entries",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				fc, err := c.existingFileCache()
				if fc == nil || err != nil {
					return err
				}
				n, err := fc.Prune(cmd.Context())
				if err != nil {
					return err
				}
				printSuccess("Removed %d expired entries", n)
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every entry",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				fc, err := c.existingFileCache()
				if fc == nil || err != nil {
					return err
				}
				n, err := fc.Clear()
				if err != nil {
					return err
				}
				printSuccess("Cleared %d entries", n)
				printDetail("Directory: %s", fc.Dir())
				return nil
			},
		},
	)
	return cmd
}

func (c *CLI) runCacheStats(cmd *cobra.Command, _ []string) error {
	fc, err := c.existingFileCache()
	if fc == nil || err != nil {
		return err
	}
	usage, err := fc.Usage()
	if err != nil {
		return err
	}
	if len(usage) == 0 {
		printInfo("Cache is empty")
		return nil
	}

	rows := make([][]string, len(usage))
	var entries, expired int
	var size int64
	for i, u := range usage {
		rows[i] = []string{u.Kind, strconv.Itoa(u.Entries), strconv.Itoa(u.Expired), humanize.IBytes(uint64(u.Bytes))}
		entries += u.Entries
		expired += u.Expired
		size += u.Bytes
	}
	fmt.Fprintln(uiOut, newTable([]string{"Kind", "Entries", "Expired", "Size"}, rows, func(row, col int) lipgloss.Style {
		if col == 2 && usage[row].Expired > 0 {
			return StyleWarning
		}
		return styleCell
	}))
	printKeyValue("Total", fmt.Sprintf("%d entries, %s", entries, humanize.IBytes(uint64(size))))
	if expired > 0 {
		printNextStep("Reclaim expired entries", appName+" cache prune")
	}
	return nil
}

// existingFileCache opens the cache directory without creating it. It
// returns nil and reports an empty cache when the directory is missing.
func (c *CLI) existingFileCache() (*cache.FileCache, error) {
	dir, err := c.cacheDir()
	if err != nil {
		return nil, fmt.Errorf("cache dir: %w", err)
	}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		printInfo("Cache is empty")
		return nil, nil
	}
	return cache.NewFileCache(dir)
}
