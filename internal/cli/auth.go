package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/semmy-space/kgl/internal/auth"
	"github.com/semmy-space/kgl/internal/output"
	"github.com/semmy-space/kgl/internal/secrets"
)

func openStore(sp *ServiceProvider) (secrets.Store, error) {
	store, err := sp.Store()
	if err != nil {
		return nil, &output.CLIError{
			Message:  fmt.Sprintf("Failed to initialize secrets store: %v", err),
			ExitCode: output.ExitGeneral,
			Hint:     "Set " + secrets.BackendEnv + "=file to use the encrypted file store",
			Err:      err,
		}
	}
	return store, nil
}

// AuthLoginCmd implements the auth login command
type AuthLoginCmd struct {
	File string `help:"Import a kaggle.json token file instead of prompting" type:"existingfile" predictor:"file" short:"f"`
}

// Run executes the login command
func (cmd *AuthLoginCmd) Run(ctx context.Context, sp *ServiceProvider, fp *FormatterProvider) error {
	store, err := openStore(sp)
	if err != nil {
		return err
	}

	var (
		creds  auth.Credentials
		source string
	)
	if cmd.File != "" {
		creds, err = auth.ImportTokenFile(store, cmd.File)
		if err != nil {
			return usageError(err)
		}
		source = cmd.File
	} else {
		creds, source, err = auth.SignIn(ctx, store, sp.lookupEnv, sp.Prompter())
		if errors.Is(err, auth.ErrNoCredentials) {
			return &output.CLIError{
				Message:  "no token to store",
				ExitCode: output.ExitAuth,
				Hint:     "Use --file ~/.kaggle/kaggle.json, set " + auth.EnvTokenJSON + ", or run interactively",
				Err:      err,
			}
		}
		if err != nil {
			return toCLIError(err)
		}
	}

	fp.Formatter.PrintMessage(fmt.Sprintf("Stored Kaggle token for %s (from %s, %s backend)",
		creds.Username, source, secrets.DetectBackend()))
	return nil
}

// AuthLogoutCmd implements the auth logout command
type AuthLogoutCmd struct{}

// Run executes the logout command
func (cmd *AuthLogoutCmd) Run(sp *ServiceProvider, fp *FormatterProvider) error {
	store, err := openStore(sp)
	if err != nil {
		return err
	}
	if err := auth.ClearStoredToken(store); err != nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Failed to remove token: %v", err),
			ExitCode: output.ExitGeneral,
			Err:      err,
		}
	}

	fp.Formatter.PrintMessage("Stored token removed")
	return nil
}

// AuthStatusCmd implements the auth status command
type AuthStatusCmd struct {
	Check bool `help:"Verify the credentials against the CLI or the API" short:"c"`
}

type authStatus struct {
	Source    string `json:"source"`
	Username  string `json:"username"`
	Key       string `json:"key"`
	Transport string `json:"transport,omitempty"`
	Version   string `json:"version,omitempty"`
	Valid     string `json:"valid,omitempty"`
}

// Run executes the status command. It never prompts.
func (cmd *AuthStatusCmd) Run(ctx context.Context, sp *ServiceProvider, fp *FormatterProvider) error {
	var getter auth.SecretGetter
	if store, err := sp.Store(); err == nil {
		getter = store
	}

	status := authStatus{Source: "none"}
	for _, src := range auth.DefaultSources(getter, sp.lookupEnv, nil) {
		creds, ok, err := src.Lookup(ctx)
		if err != nil || !ok {
			continue
		}
		status.Source = src.Name()
		status.Username = creds.Username
		status.Key = maskSecret(creds.Key)
		break
	}

	if status.Source == "none" {
		return toCLIError(auth.ErrNoCredentials)
	}

	if cmd.Check {
		a := sp.Fetcher().Check(ctx)
		status.Transport = a.Transport
		status.Version = a.Version
		status.Valid = formatBool(a.Available)
		if !a.Available {
			if err := fp.Formatter.Print(status); err != nil {
				return err
			}
			return &output.CLIError{Message: a.Error, ExitCode: output.ExitAuth}
		}
	}

	return fp.Formatter.Print(status)
}

// maskSecret masks sensitive values, showing only last 4 characters
func maskSecret(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 4 {
		return "****"
	}
	return "****" + value[len(value)-4:]
}
