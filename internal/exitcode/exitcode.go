// Package exitcode defines exit codes for the CLI.
package exitcode

import (
	"context"
	"errors"

	"google.golang.org/api/googleapi"

	"gallery/internal/fetch"
	"gallery/internal/service"
)

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, not found, ambiguous).
	UserError = 1

	// AuthError indicates an auth/config error.
	AuthError = 2

	// BackendError indicates a store or API error.
	BackendError = 3

	// Unreachable indicates the store could not be reached within the retry window.
	Unreachable = 4

	// Interrupted indicates the user cancelled the command (SIGINT).
	Interrupted = 130
)

// ForError maps a failed store operation to an exit code.
func ForError(err error) int {
	var apiErr *googleapi.Error
	switch {
	case err == nil:
		return Success
	case errors.Is(err, context.Canceled):
		return Interrupted
	case errors.Is(err, fetch.ErrUnreachable):
		return Unreachable
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrAmbiguous):
		return UserError
	case errors.As(err, &apiErr) && (apiErr.Code == 401 || apiErr.Code == 403):
		return AuthError
	case fetch.Classify(err) == fetch.ClassTransient:
		return Unreachable
	default:
		return BackendError
	}
}
