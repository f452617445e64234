package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/varcop/internal/cli"
	"github.com/theirongolddev/varcop/internal/pipeline"
	"github.com/theirongolddev/varcop/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagCachePrune bool
	flagCacheClear bool
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Show or clean the parse cache",
	RunE:  runCache,
}

func init() {
	cacheCmd.Flags().BoolVar(&flagCachePrune, "prune", false, "Drop entries for export files that no longer exist")
	cacheCmd.Flags().BoolVar(&flagCacheClear, "clear", false, "Delete the whole cache")
	rootCmd.AddCommand(cacheCmd)
}

func runCache(_ *cobra.Command, _ []string) error {
	path := pipeline.CachePath()

	if flagCacheClear {
		for _, p := range []string{path, path + "-wal", path + "-shm"} {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("removing cache: %w", err)
			}
		}
		fmt.Printf("  Removed %s\n", path)
		return nil
	}

	cache, err := store.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = cache.Close() }()

	if flagCachePrune {
		n, err := cache.Prune()
		if err != nil {
			return err
		}
		lg.Info("cache pruned", "removed", n)
		fmt.Printf("  Pruned %d stale files\n\n", n)
	}

	files, err := cache.FileCount()
	if err != nil {
		return err
	}
	postings, err := cache.PostingCount()
	if err != nil {
		return err
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Parse cache",
		Headers: []string{"Item", "Value"},
		Rows: [][]string{
			{"Path", path},
			{"Files", cli.FormatNumber(int64(files))},
			{"Postings", cli.FormatNumber(int64(postings))},
		},
	}))
	return nil
}
