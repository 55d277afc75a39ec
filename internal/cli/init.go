package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"jobalert/internal/config"
)

func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration unless one exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(rootOpts.ConfigPath, rootOpts.DataDir)
			created, err := config.EnsureUserConfig(path)
			if err != nil {
				return WrapExitError(ExitFailure, "write config", err)
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists\n", path)
			}
			return nil
		},
	}
}
