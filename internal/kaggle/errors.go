package kaggle

import (
	"errors"
	"fmt"
)

// ErrUnusableOutput marks CLI output that parsed but lacks the identity column.
var ErrUnusableOutput = errors.New("cli output has no ref column")

// TransportError is returned when an operation could not be completed over
// any transport. Err is the last error observed.
type TransportError struct {
	Op   string
	File string // set for per-file failures in batch downloads
	Err  error
}

func (e *TransportError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: file %s: %v", e.Op, e.File, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError is returned when a CSV or JSON body does not have the expected shape.
type DecodeError struct {
	Format string // "csv" or "json"
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// MalformedArtifactError is returned when a local kernel directory cannot be pushed.
type MalformedArtifactError struct {
	Path   string
	Reason string
}

func (e *MalformedArtifactError) Error() string {
	return fmt.Sprintf("malformed kernel directory %s: %s", e.Path, e.Reason)
}

// APIError is a non-2xx response from the Kaggle API
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	Code       int    `json:"code"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}
