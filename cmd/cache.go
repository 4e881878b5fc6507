package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adlabtools/kwopt/internal/utils"
	"github.com/adlabtools/kwopt/pkg/storage"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the persistent estimate cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how many estimates are cached and how fresh they are",
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, cleanup, err := openCache(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		stats, err := cache.Stats()
		if err != nil {
			return err
		}
		fmt.Printf("Cached estimates: %d\n", stats.Entries)
		if stats.Entries > 0 {
			fmt.Printf("Oldest entry:     %s\n", stats.Oldest.Format("2006-01-02 15:04:05"))
			fmt.Printf("Newest entry:     %s\n", stats.Newest.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every cached estimate",
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, cleanup, err := openCache(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		removed, err := cache.Clear()
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d cached estimates\n", removed)
		return nil
	},
}

func openCache(cmd *cobra.Command) (*storage.EstimateCache, func(), error) {
	path, _ := cacheCmd.PersistentFlags().GetString("cache-db")
	absPath, err := utils.GetAbsDBPath(path)
	if err != nil {
		return nil, nil, err
	}

	lock, err := utils.NewDBLock(absPath)
	if err != nil {
		return nil, nil, err
	}
	if err := lock.Lock(); err != nil {
		return nil, nil, err
	}

	cache, err := storage.Open(absPath)
	if err != nil {
		lock.Unlock()
		return nil, nil, err
	}
	return cache, func() {
		cache.Close()
		lock.Unlock()
	}, nil
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.PersistentFlags().String("cache-db", "", "Path to the sqlite estimate cache (default is ~/.config/kwopt/estimates.sqlite)")
}
