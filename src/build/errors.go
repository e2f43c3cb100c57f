package build

import "errors"

// Process exit codes.
const (
	ExitOK                = 0
	ExitUsage             = 1 // bad flags, invalid tag, config or setup errors
	ExitBuildFailed       = 2
	ExitDaemonUnreachable = 3
)

// ExitError carries the process exit code for a failed run.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

func exitErr(code int, err error) *ExitError {
	return &ExitError{Code: code, Err: err}
}

// ExitCode maps err to a process exit code. Errors that carry no code are
// usage errors.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ExitUsage
}
