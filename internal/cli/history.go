package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"jobalert/internal/config"
	"jobalert/internal/store"
)

func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		limit     int
		olderThan time.Duration
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs from the history database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, log, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			db, err := store.Open(loaded.Config.Store.Path)
			if err != nil {
				return WrapExitError(ExitFailure, "open run history", err)
			}
			defer db.Close()

			out := cmd.OutOrStdout()
			if olderThan > 0 {
				n, err := db.CleanupOld(cmd.Context(), time.Now(), olderThan)
				if err != nil {
					return WrapExitError(ExitFailure, "clean history", err)
				}
				fmt.Fprintf(out, "deleted %d runs older than %s\n", n, olderThan)
			}

			runs, err := db.ListRuns(cmd.Context(), limit)
			if err != nil {
				return WrapExitError(ExitFailure, "list runs", err)
			}
			if rootOpts.Format == "json" {
				return json.NewEncoder(out).Encode(runs)
			}
			return printRuns(out, runs, loaded.Config)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	cmd.Flags().DurationVar(&olderThan, "delete-older-than", 0, "delete runs older than this before listing")
	return cmd
}

func printRuns(w io.Writer, runs []store.Run, cfg config.Config) error {
	if len(runs) == 0 {
		if !cfg.Store.Enabled {
			fmt.Fprintln(w, "no runs recorded (store.enabled is false)")
		} else {
			fmt.Fprintln(w, "no runs recorded")
		}
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tDURATION\tFRESH\tSOURCES\tUNAVAILABLE\tNOTIFY")
	for _, r := range runs {
		notify := "ok"
		if r.NotifyError != "" {
			notify = "failed"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%s\t%s\n",
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Second),
			r.Fresh,
			r.Sources,
			strings.Join(r.FailedSources, ","),
			notify,
		)
	}
	return tw.Flush()
}
