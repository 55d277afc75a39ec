package cli

import (
	"errors"
	"fmt"

	"jobalert/internal/config"
	"jobalert/internal/notify"
)

// Exit codes.
const (
	ExitSuccess       = 0
	ExitFailure       = 1 // notification failed, cache unusable, other runtime errors
	ExitConfigInvalid = 2
)

// ExitError carries the process exit code for an error returned by a
// command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode maps err to a process exit code. Errors that are not an
// ExitError still get ExitConfigInvalid when they wrap a config problem.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if errors.Is(err, config.ErrConfigInvalid) {
		return ExitConfigInvalid
	}
	return ExitFailure
}

// runError classifies an orchestrator error.
func runError(err error) error {
	if err == nil {
		return nil
	}
	var nf *notify.NotificationFailureError
	if errors.As(err, &nf) {
		return WrapExitError(ExitFailure, "notification failed", err)
	}
	return WrapExitError(ExitFailure, "run failed", err)
}
