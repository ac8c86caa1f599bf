package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// SecretKey is the secret store key holding the JSON-encoded API token
const SecretKey = "kaggle.api.token.json"

// Environment variables consulted during resolution
const (
	EnvTokenJSON = "KAGGLE_TOKEN_JSON"
	EnvUsername  = "KAGGLE_USERNAME"
	EnvKey       = "KAGGLE_KEY"
)

var (
	// ErrNoCredentials is returned when every source is exhausted
	ErrNoCredentials = errors.New("no Kaggle token found")

	// ErrSignInCanceled is returned when an interactive prompt is left empty
	ErrSignInCanceled = errors.New("sign in canceled")
)

// NoCredentialsHint tells the user how to provide credentials.
const NoCredentialsHint = `Run "kgl auth login" or set KAGGLE_TOKEN_JSON / KAGGLE_USERNAME & KAGGLE_KEY`

// Credentials is a resolved Kaggle username and API key pair.
type Credentials struct {
	Username string `json:"username"`
	Key      string `json:"key"`
}

// Valid reports whether both fields are non-empty.
func (c Credentials) Valid() bool {
	return c.Username != "" && c.Key != ""
}

// JSON returns the kaggle.json encoding of the credentials.
func (c Credentials) JSON() string {
	data, _ := json.Marshal(c)
	return string(data)
}

// Env returns the variables the external CLI reads its credentials from.
func (c Credentials) Env() []string {
	return []string{
		EnvUsername + "=" + c.Username,
		EnvKey + "=" + c.Key,
	}
}

// parseToken decodes a kaggle.json payload. ok is false for malformed JSON
// or a payload missing either field.
func parseToken(raw string) (Credentials, bool) {
	if strings.TrimSpace(raw) == "" {
		return Credentials{}, false
	}
	var creds Credentials
	if err := json.Unmarshal([]byte(raw), &creds); err != nil {
		return Credentials{}, false
	}
	return creds, creds.Valid()
}

// LookupEnv matches the signature of os.LookupEnv.
type LookupEnv func(key string) (string, bool)

func (l LookupEnv) get(key string) string {
	if l == nil {
		l = os.LookupEnv
	}
	v, _ := l(key)
	return v
}

// Resolve walks sources in order and returns the first usable pair.
// A source that yields nothing is skipped; a source error aborts resolution.
func Resolve(ctx context.Context, sources ...Source) (Credentials, error) {
	for _, src := range sources {
		creds, ok, err := src.Lookup(ctx)
		if err != nil {
			return Credentials{}, fmt.Errorf("%s: %w", src.Name(), err)
		}
		if ok && creds.Valid() {
			return creds, nil
		}
	}
	return Credentials{}, ErrNoCredentials
}

// Resolver resolves credentials from a fixed source list on every call.
type Resolver struct {
	sources []Source
}

// NewResolver creates a resolver over the given sources in priority order.
func NewResolver(sources ...Source) *Resolver {
	return &Resolver{sources: sources}
}

// Resolve returns the first usable credentials.
func (r *Resolver) Resolve(ctx context.Context) (Credentials, error) {
	return Resolve(ctx, r.sources...)
}

// Sources returns the configured sources in priority order.
func (r *Resolver) Sources() []Source {
	return r.sources
}

// DefaultSources returns the standard resolution order. A nil prompter
// makes the chain non-interactive.
func DefaultSources(store SecretGetter, lookup LookupEnv, prompter Prompter) []Source {
	var sources []Source
	if store != nil {
		sources = append(sources, &StoreSource{Store: store})
	}
	sources = append(sources,
		&EnvJSONSource{Env: lookup},
		&EnvPairSource{Env: lookup},
	)
	if prompter != nil {
		sources = append(sources, &PromptSource{Prompter: prompter})
	}
	return sources
}
