package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"jobalert/internal/secrets"
)

var secretAccounts = map[string]string{
	"sendgrid": secrets.SendGridAccount,
	"telegram": secrets.TelegramAccount,
}

func accountFor(name string) (string, error) {
	if acc, ok := secretAccounts[strings.ToLower(name)]; ok {
		return acc, nil
	}
	return "", WrapExitError(ExitConfigInvalid, fmt.Sprintf("unknown secret %q: use sendgrid or telegram", name), nil)
}

func NewSecretsCommand(_ *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secrets",
		Short: "Store notifier credentials in the OS keychain",
	}

	set := &cobra.Command{
		Use:   "set <sendgrid|telegram> [value]",
		Short: "Store a credential; reads stdin when value is omitted",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			acc, err := accountFor(args[0])
			if err != nil {
				return err
			}
			var value string
			if len(args) == 2 {
				value = args[1]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return WrapExitError(ExitFailure, "read secret from stdin", err)
				}
				value = line
			}
			value = strings.TrimSpace(value)
			if value == "" {
				return WrapExitError(ExitConfigInvalid, "empty secret", nil)
			}
			if err := secrets.Set(acc, value); err != nil {
				return WrapExitError(ExitFailure, "store secret", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %s\n", acc)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <sendgrid|telegram>",
		Short: "Remove a stored credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			acc, err := accountFor(args[0])
			if err != nil {
				return err
			}
			if err := secrets.Delete(acc); err != nil {
				return WrapExitError(ExitFailure, "delete secret", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", acc)
			return nil
		},
	}

	cmd.AddCommand(set, del)
	return cmd
}
