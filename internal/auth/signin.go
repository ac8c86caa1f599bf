package auth

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/semmy-space/kgl/internal/secrets"
)

// TokenStore is the subset of secrets.Store used to persist the API token.
type TokenStore interface {
	SecretGetter
	Set(key, value string) error
	Delete(key string) error
}

// SignIn stores a token taken from KAGGLE_TOKEN_JSON if it is valid,
// otherwise prompts for a username and key. It returns the name of the
// source the token came from.
func SignIn(ctx context.Context, store TokenStore, lookup LookupEnv, prompter Prompter) (Credentials, string, error) {
	env := &EnvJSONSource{Env: lookup}
	if creds, ok, _ := env.Lookup(ctx); ok {
		if err := store.Set(SecretKey, creds.JSON()); err != nil {
			return Credentials{}, "", fmt.Errorf("store token: %w", err)
		}
		return creds, env.Name(), nil
	}

	if prompter == nil {
		return Credentials{}, "", ErrNoCredentials
	}

	creds, err := promptCredentials(prompter)
	if err != nil {
		return Credentials{}, "", err
	}
	if err := store.Set(SecretKey, creds.JSON()); err != nil {
		return Credentials{}, "", fmt.Errorf("store token: %w", err)
	}
	return creds, "prompt", nil
}

// ImportTokenFile validates a kaggle.json file and stores its contents.
func ImportTokenFile(store TokenStore, path string) (Credentials, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("read token file: %w", err)
	}
	creds, ok := parseToken(string(raw))
	if !ok {
		return Credentials{}, fmt.Errorf("invalid kaggle.json (missing username/key): %s", path)
	}
	if err := store.Set(SecretKey, string(raw)); err != nil {
		return Credentials{}, fmt.Errorf("store token: %w", err)
	}
	return creds, nil
}

// ClearStoredToken removes the stored token. A missing token is not an error.
func ClearStoredToken(store TokenStore) error {
	if err := store.Delete(SecretKey); err != nil && !errors.Is(err, secrets.ErrNotFound) {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}
