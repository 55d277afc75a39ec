package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"jobalert/internal/poll"
)

func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Fetch every source once, send the digest and update the cache",
		Long: `Run one pass: fetch all enabled sources concurrently, keep the relevant
postings not seen before, send them as one digest and persist the seen cache.

Exit status is 1 when the digest could not be sent (the cache is still
saved) and 2 when the configuration is invalid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			sum, runErr := a.orchestrator().Run(cmd.Context(), a.cfg.Sources)
			if err := printSummary(cmd.OutOrStdout(), rootOpts.Format, sum); err != nil {
				return err
			}
			return runError(runErr)
		},
	}
}

func printSummary(w io.Writer, format string, sum poll.RunSummary) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	}

	fmt.Fprintf(w, "%s from %s", plural(sum.FreshCount, "new posting"), plural(len(sum.PerSource), "source"))
	if len(sum.Failed) > 0 {
		fmt.Fprintf(w, " (%d unavailable)", len(sum.Failed))
	}
	fmt.Fprintln(w)

	names := make([]string, 0, len(sum.PerSource))
	for name := range sum.PerSource {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ci, cj := sum.PerSource[names[i]], sum.PerSource[names[j]]
		if ci != cj {
			return ci > cj
		}
		return names[i] < names[j]
	})

	failed := make(map[string]bool, len(sum.Failed))
	for _, f := range sum.Failed {
		failed[f] = true
	}
	for _, name := range names {
		mark := ""
		if failed[name] {
			mark = " (unavailable)"
		}
		fmt.Fprintf(w, "  %-24s %d%s\n", name, sum.PerSource[name], mark)
	}
	return nil
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
