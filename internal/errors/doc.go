// Package errors provides error handling conventions for the kata CLI.
//
// This package defines sentinel errors for common failure conditions,
// an ExitError type for CLI exit code handling, and exit code constants
// following standard Unix conventions. It re-exports the wrapping helpers of
// github.com/cockroachdb/errors so that packages import a single errors
// package.
//
// # Exit Codes
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): Invalid input, conflicting flags, failed validation
//   - ExitSystem (2): I/O, network, permissions
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and optional
// suggestion:
//
//	err := kerrors.NewUserError(kerrors.ErrConflictingFlags, "Use either --global or --local")
//	os.Exit(kerrors.ExitCode(err))
package errors
