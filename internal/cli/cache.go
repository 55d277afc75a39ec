package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"jobalert/internal/logger"
	"jobalert/internal/seen"
)

func NewCacheCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or prune the seen-postings cache",
	}
	cmd.AddCommand(newCacheStatsCommand(rootOpts))
	cmd.AddCommand(newCachePruneCommand(rootOpts))
	return cmd
}

// withCache opens the configured store, loads it and hands both to fn.
func withCache(ctx context.Context, rootOpts *RootOptions, fn func(seen.Store, *seen.Cache, time.Duration) error) error {
	loaded, log, err := loadConfig(rootOpts)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	st, err := seen.Open(ctx, loaded.Config.Cache, log)
	if err != nil {
		return WrapExitError(ExitFailure, "open seen cache", err)
	}
	defer st.Close()

	c, err := st.Load(ctx)
	if errors.Is(err, seen.ErrCacheCorrupt) {
		log.Warn("seen cache corrupt, treating as empty", logger.Error(err))
	} else if err != nil {
		return WrapExitError(ExitFailure, "load seen cache", err)
	}
	return fn(st, c, loaded.Config.Cache.Retention)
}

func newCacheStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show entry counts and age range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(cmd.Context(), rootOpts, func(_ seen.Store, c *seen.Cache, _ time.Duration) error {
				stats := c.Stats()
				out := cmd.OutOrStdout()
				if rootOpts.Format == "json" {
					return json.NewEncoder(out).Encode(stats)
				}

				fmt.Fprintf(out, "entries: %d\n", stats.Entries)
				if stats.Entries > 0 {
					fmt.Fprintf(out, "oldest:  %s\n", stats.Oldest.Format(time.RFC3339))
					fmt.Fprintf(out, "newest:  %s\n", stats.Newest.Format(time.RFC3339))
				}
				for _, src := range stats.Sources() {
					fmt.Fprintf(out, "  %-24s %d\n", src, stats.PerSource[src])
				}
				return nil
			})
		},
	}
}

func newCachePruneCommand(rootOpts *RootOptions) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Drop entries older than the retention window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(cmd.Context(), rootOpts, func(st seen.Store, c *seen.Cache, retention time.Duration) error {
				if olderThan > 0 {
					retention = olderThan
				}
				n := c.Prune(time.Now(), retention)
				if err := st.Save(cmd.Context(), c); err != nil {
					return WrapExitError(ExitFailure, "save seen cache", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "pruned %d entries older than %s, %d left\n", n, retention, c.Len())
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "retention window (default cache.retention)")
	return cmd
}
