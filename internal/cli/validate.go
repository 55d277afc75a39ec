package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"jobalert/internal/config"
)

// ValidationResult is the json output of validate.
type ValidationResult struct {
	Valid     bool     `json:"valid"`
	Path      string   `json:"path"`
	Defaulted bool     `json:"defaulted"`
	Sources   int      `json:"sources"`
	Errors    []string `json:"errors,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration without fetching anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(rootOpts.ConfigPath, rootOpts.DataDir)
			res := ValidationResult{Path: path}

			loaded, err := config.Load(path)
			if err != nil {
				var inv *config.InvalidError
				if errors.As(err, &inv) && len(inv.Problems) > 0 {
					res.Errors = inv.Problems
				} else {
					res.Errors = []string{err.Error()}
				}
			} else {
				res.Valid = true
				res.Defaulted = loaded.Defaulted
				res.Sources = len(loaded.Config.Sources)
				res.Warnings = loaded.Validation.Warnings
			}

			out := cmd.OutOrStdout()
			if rootOpts.Format == "json" {
				if err := json.NewEncoder(out).Encode(res); err != nil {
					return err
				}
			} else {
				switch {
				case !res.Valid:
					fmt.Fprintf(out, "%s: invalid\n", res.Path)
				case res.Defaulted:
					fmt.Fprintf(out, "%s: not found, built-in defaults are valid (%d sources)\n", res.Path, res.Sources)
				default:
					fmt.Fprintf(out, "%s: ok (%d sources)\n", res.Path, res.Sources)
				}
				for _, e := range res.Errors {
					fmt.Fprintf(out, "  error: %s\n", e)
				}
				for _, w := range res.Warnings {
					fmt.Fprintf(out, "  warning: %s\n", w)
				}
			}

			if !res.Valid {
				return WrapExitError(ExitConfigInvalid, "invalid configuration", err)
			}
			return nil
		},
	}
}
