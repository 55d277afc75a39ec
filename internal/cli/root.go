// Package cli is the jobalert command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	DataDir    string
	LogLevel   string
	LogFormat  string
	Format     string // "text" | "json"
}

var validFormats = []string{"text", "json"}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "jobalert",
		Short: "Watch job boards and mail a digest of new matching postings",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range validFormats {
				if opts.Format == f {
					return nil
				}
			}
			return WrapExitError(ExitConfigInvalid, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, validFormats), nil)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default $CONFIG_PATH or <data-dir>/config.yml)")
	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", os.Getenv("JOBALERT_DATA_DIR"), "directory holding config, cache and history")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "override log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "", "override log format (json|console)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewCacheCommand(opts))
	cmd.AddCommand(NewSecretsCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}
