package auth

import (
	"context"
	"strings"
)

// Source yields credentials or signals absence with ok == false.
// Only hard failures (a canceled prompt) are returned as errors.
type Source interface {
	Name() string
	Lookup(ctx context.Context) (creds Credentials, ok bool, err error)
}

// SecretGetter is the read side of the secret store.
type SecretGetter interface {
	Get(key string) (string, error)
}

// StoreSource reads the JSON token saved by "kgl auth login".
type StoreSource struct {
	Store SecretGetter
}

func (s *StoreSource) Name() string { return "secret store" }

// Lookup treats a missing key, a store failure and a malformed payload alike.
func (s *StoreSource) Lookup(ctx context.Context) (Credentials, bool, error) {
	raw, err := s.Store.Get(SecretKey)
	if err != nil {
		return Credentials{}, false, nil
	}
	creds, ok := parseToken(raw)
	return creds, ok, nil
}

// EnvJSONSource reads a kaggle.json payload from KAGGLE_TOKEN_JSON.
type EnvJSONSource struct {
	Env LookupEnv
}

func (s *EnvJSONSource) Name() string { return EnvTokenJSON }

func (s *EnvJSONSource) Lookup(ctx context.Context) (Credentials, bool, error) {
	creds, ok := parseToken(s.Env.get(EnvTokenJSON))
	return creds, ok, nil
}

// EnvPairSource reads KAGGLE_USERNAME and KAGGLE_KEY.
type EnvPairSource struct {
	Env LookupEnv
}

func (s *EnvPairSource) Name() string { return EnvUsername + "/" + EnvKey }

func (s *EnvPairSource) Lookup(ctx context.Context) (Credentials, bool, error) {
	creds := Credentials{
		Username: s.Env.get(EnvUsername),
		Key:      s.Env.get(EnvKey),
	}
	return creds, creds.Valid(), nil
}

// PromptSource asks for a username and then a key.
// An empty answer at either step cancels the whole resolution.
type PromptSource struct {
	Prompter Prompter
}

func (s *PromptSource) Name() string { return "prompt" }

func (s *PromptSource) Lookup(ctx context.Context) (Credentials, bool, error) {
	creds, err := promptCredentials(s.Prompter)
	if err != nil {
		return Credentials{}, false, err
	}
	return creds, true, nil
}

func promptCredentials(p Prompter) (Credentials, error) {
	username, err := p.Prompt("Kaggle Username", false)
	if err != nil || strings.TrimSpace(username) == "" {
		return Credentials{}, ErrSignInCanceled
	}
	key, err := p.Prompt("Kaggle API Key", true)
	if err != nil || strings.TrimSpace(key) == "" {
		return Credentials{}, ErrSignInCanceled
	}
	return Credentials{
		Username: strings.TrimSpace(username),
		Key:      strings.TrimSpace(key),
	}, nil
}
