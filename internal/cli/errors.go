package cli

import (
	"context"
	"errors"
	"net/http"

	"github.com/semmy-space/kgl/internal/auth"
	"github.com/semmy-space/kgl/internal/kaggle"
	"github.com/semmy-space/kgl/internal/output"
)

// toCLIError maps library errors to exit codes and hints.
func toCLIError(err error) error {
	if err == nil {
		return nil
	}

	var cliErr *output.CLIError
	if errors.As(err, &cliErr) {
		return err
	}

	e := &output.CLIError{Message: err.Error(), ExitCode: output.ExitGeneral, Err: err}

	var (
		apiErr      *kaggle.APIError
		artifactErr *kaggle.MalformedArtifactError
		decodeErr   *kaggle.DecodeError
		transErr    *kaggle.TransportError
	)

	switch {
	case errors.Is(err, auth.ErrNoCredentials):
		e.ExitCode = output.ExitAuth
		e.Hint = auth.NoCredentialsHint
	case errors.Is(err, auth.ErrSignInCanceled):
		e.ExitCode = output.ExitAuth
	case errors.Is(err, kaggle.ErrWaitTimeout), errors.Is(err, context.DeadlineExceeded):
		e.ExitCode = output.ExitTimeout
	case errors.As(err, &artifactErr):
		e.ExitCode = output.ExitUsage
		e.Hint = "A kernel directory needs " + kaggle.KernelMetadataFile + " and exactly one source file"
	case errors.As(err, &apiErr):
		e.ExitCode, e.Hint = statusExit(apiErr.StatusCode)
	case errors.As(err, &decodeErr):
		e.ExitCode = output.ExitAPIError
	case errors.As(err, &transErr):
		e.ExitCode = output.ExitNetworkError
	}

	return e
}

func statusExit(status int) (int, string) {
	switch status {
	case http.StatusUnauthorized:
		return output.ExitAuth, "Check your username and API key: kgl auth status"
	case http.StatusForbidden:
		return output.ExitForbidden, ""
	case http.StatusNotFound:
		return output.ExitNotFound, ""
	case http.StatusConflict:
		return output.ExitConflict, ""
	case http.StatusTooManyRequests:
		return output.ExitRateLimit, "Kaggle is rate limiting requests; retry later"
	}
	return output.ExitAPIError, ""
}

// usageError reports a bad argument
func usageError(err error) error {
	return &output.CLIError{Message: err.Error(), ExitCode: output.ExitUsage, Err: err}
}

// parseRef parses an owner/slug argument
func parseRef(s string) (kaggle.Ref, error) {
	ref, err := kaggle.ParseRef(s)
	if err != nil {
		return kaggle.Ref{}, usageError(err)
	}
	return ref, nil
}
