package output

import "errors"

// Exit codes following sysexits.h convention
const (
	ExitOK           = 0  // Success
	ExitGeneral      = 1  // General error
	ExitUsage        = 2  // Invalid usage / bad arguments
	ExitAuth         = 3  // No usable Kaggle credentials
	ExitNotFound     = 4  // Resource not found
	ExitConflict     = 5  // Conflict (resource already exists)
	ExitForbidden    = 6  // Permission denied
	ExitRateLimit    = 75 // Rate limited (EX_TEMPFAIL from sysexits.h)
	ExitTimeout      = 8  // Request or wait timeout
	ExitAPIError     = 9  // Kaggle API error (non-specific)
	ExitConfigError  = 10 // Configuration error
	ExitNetworkError = 11 // Network connectivity error
)

// CLIError represents a structured error with exit code and optional hint
type CLIError struct {
	ExitCode int
	Message  string
	Hint     string
	Err      error
}

// Error implements the error interface
func (e *CLIError) Error() string {
	return e.Message
}

// Unwrap returns the underlying error, if any
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError
func NewCLIError(code int, msg string) *CLIError {
	return &CLIError{
		ExitCode: code,
		Message:  msg,
	}
}

// WithHint adds a user-facing hint to the error
func (e *CLIError) WithHint(hint string) *CLIError {
	e.Hint = hint
	return e
}

// Wrap records the underlying error for errors.Is/As
func (e *CLIError) Wrap(err error) *CLIError {
	e.Err = err
	return e
}

// Report prints err via the formatter and returns the process exit code.
// Errors that are not CLIErrors exit with ExitGeneral.
func Report(formatter Formatter, err error) int {
	formatter.PrintError(err)

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		if cliErr.Hint != "" {
			formatter.PrintHint(cliErr.Hint)
		}
		return cliErr.ExitCode
	}
	return ExitGeneral
}
