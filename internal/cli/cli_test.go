package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/adrg/xdg"
	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semmy-space/kgl/internal/auth"
	"github.com/semmy-space/kgl/internal/config"
	"github.com/semmy-space/kgl/internal/kaggle"
	"github.com/semmy-space/kgl/internal/logging"
	"github.com/semmy-space/kgl/internal/output"
	"github.com/semmy-space/kgl/internal/secrets"
)

func TestToCLIError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		hint string
	}{
		{
			name: "no credentials",
			err:  auth.ErrNoCredentials,
			code: output.ExitAuth,
			hint: auth.NoCredentialsHint,
		},
		{
			name: "sign in canceled",
			err:  fmt.Errorf("prompt: %w", auth.ErrSignInCanceled),
			code: output.ExitAuth,
		},
		{
			name: "malformed kernel dir",
			err:  &kaggle.MalformedArtifactError{Path: ".", Reason: "kernel-metadata.json not found"},
			code: output.ExitUsage,
		},
		{
			name: "not found",
			err:  &kaggle.TransportError{Op: "pull kernel a/b", Err: &kaggle.APIError{StatusCode: http.StatusNotFound}},
			code: output.ExitNotFound,
		},
		{
			name: "rate limited",
			err:  &kaggle.TransportError{Op: "list datasets", Err: &kaggle.APIError{StatusCode: http.StatusTooManyRequests}},
			code: output.ExitRateLimit,
		},
		{
			name: "unauthorized",
			err:  &kaggle.TransportError{Op: "list datasets", Err: &kaggle.APIError{StatusCode: http.StatusUnauthorized}},
			code: output.ExitAuth,
		},
		{
			name: "push rejected",
			err:  &kaggle.TransportError{Op: "push kernel", Err: &kaggle.APIError{StatusCode: http.StatusOK, Message: "push rejected: title is required"}},
			code: output.ExitAPIError,
		},
		{
			name: "decode",
			err:  &kaggle.TransportError{Op: "list datasets", Err: &kaggle.DecodeError{Format: "json", Err: errors.New("eof")}},
			code: output.ExitAPIError,
		},
		{
			name: "network",
			err:  &kaggle.TransportError{Op: "list datasets", Err: errors.New("dial tcp: connection refused")},
			code: output.ExitNetworkError,
		},
		{
			name: "wait timeout",
			err:  kaggle.ErrWaitTimeout,
			code: output.ExitTimeout,
		},
		{
			name: "other",
			err:  errors.New("boom"),
			code: output.ExitGeneral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := toCLIError(tt.err)

			var cliErr *output.CLIError
			require.ErrorAs(t, err, &cliErr)
			assert.Equal(t, tt.code, cliErr.ExitCode)
			assert.Equal(t, tt.err.Error(), cliErr.Message)
			if tt.hint != "" {
				assert.Equal(t, tt.hint, cliErr.Hint)
			}
			assert.ErrorIs(t, err, tt.err)
		})
	}

	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, toCLIError(nil))
	})

	t.Run("passthrough", func(t *testing.T) {
		orig := output.NewCLIError(output.ExitConfigError, "bad config")
		assert.Same(t, orig, toCLIError(orig))
	})
}

func TestParseRefUsage(t *testing.T) {
	_, err := parseRef("just-a-slug")

	var cliErr *output.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, output.ExitUsage, cliErr.ExitCode)
}

type memStore map[string]string

func (m memStore) Get(key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", secrets.ErrNotFound
	}
	return v, nil
}
func (m memStore) Set(key, value string) error { m[key] = value; return nil }
func (m memStore) Delete(key string) error     { delete(m, key); return nil }
func (m memStore) List() ([]string, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys, nil
}

func envOf(vars map[string]string) auth.LookupEnv {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func newTestProvider(cfg *config.Config, globals *Globals) *ServiceProvider {
	sp := NewServiceProvider(cfg, globals, logging.New(io.Discard, false))
	sp.interactive = func() bool { return false }
	sp.lookupEnv = envOf(nil)
	return sp
}

func TestServiceProviderResolver(t *testing.T) {
	t.Run("store wins over environment", func(t *testing.T) {
		sp := newTestProvider(&config.Config{}, &Globals{})
		sp.newStore = func() (secrets.Store, error) {
			return memStore{auth.SecretKey: `{"username":"stored","key":"k1"}`}, nil
		}
		sp.lookupEnv = envOf(map[string]string{auth.EnvUsername: "env", auth.EnvKey: "k2"})

		creds, err := sp.Resolver().Resolve(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "stored", creds.Username)
	})

	t.Run("unavailable store falls through to environment", func(t *testing.T) {
		sp := newTestProvider(&config.Config{}, &Globals{})
		sp.newStore = func() (secrets.Store, error) { return nil, errors.New("no keyring") }
		sp.lookupEnv = envOf(map[string]string{auth.EnvTokenJSON: `{"username":"ci","key":"k3"}`})

		creds, err := sp.Resolver().Resolve(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "ci", creds.Username)
	})

	t.Run("non-interactive has no prompt", func(t *testing.T) {
		sp := newTestProvider(&config.Config{}, &Globals{})
		sp.newStore = func() (secrets.Store, error) { return memStore{}, nil }

		assert.Nil(t, sp.Prompter())
		_, err := sp.Resolver().Resolve(context.Background())
		assert.ErrorIs(t, err, auth.ErrNoCredentials)
	})
}

func TestServiceProviderTransportSettings(t *testing.T) {
	cfg := &config.Config{APIBase: "https://proxy.example/api/v1", CLIPath: "/opt/kaggle"}

	sp := newTestProvider(cfg, &Globals{})
	assert.Equal(t, "https://proxy.example/api/v1", sp.ClientConfig().BaseURL)
	runner, ok := sp.runner().(*kaggle.ExecRunner)
	require.True(t, ok)
	assert.Equal(t, "/opt/kaggle", runner.Binary)

	sp = newTestProvider(cfg, &Globals{APIBase: "http://localhost:9999", CLIPath: "kaggle-dev"})
	assert.Equal(t, "http://localhost:9999", sp.ClientConfig().BaseURL)
	assert.Equal(t, "kaggle-dev", sp.runner().(*kaggle.ExecRunner).Binary)

	sp = newTestProvider(cfg, &Globals{NoCLI: true})
	assert.Nil(t, sp.runner())

	sp = newTestProvider(&config.Config{}, &Globals{})
	assert.Equal(t, kaggle.DefaultBaseURL, sp.ClientConfig().BaseURL)
}

func TestResolvedOutput(t *testing.T) {
	assert.Equal(t, "json", (&Globals{Output: "json"}).ResolvedOutput(&config.Config{DefaultOutput: "rich"}))
	assert.Equal(t, "rich", (&Globals{Output: "auto"}).ResolvedOutput(&config.Config{DefaultOutput: "rich"}))
}

func TestCommandTree(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	var root CLI
	parser, err := kong.New(&root, kong.Name("kgl"), kong.Exit(func(int) {}))
	require.NoError(t, err)

	tests := []struct {
		args    []string
		command string
	}{
		{[]string{"kernels", "list", "--page", "2"}, "kernels list"},
		{[]string{"kernels", "pull", "alice/eda", "-p", "/tmp/eda"}, "kernels pull <ref>"},
		{[]string{"kernels", "push"}, "kernels push"},
		{[]string{"kernels", "status", "alice/eda", "--wait", "--timeout", "10m"}, "kernels status <ref>"},
		{[]string{"datasets", "download", "heptapod/titanic", "--files"}, "datasets download <ref>"},
		{[]string{"competitions", "submit", "titanic", "cli_test.go", "-m", "first"}, "competitions submit <competition> <file>"},
		{[]string{"ls", "datasets", "-s", "titanic"}, "ls datasets"},
		{[]string{"--no-cli", "-o", "json", "auth", "status"}, "auth status"},
		{[]string{"config", "set", "page_size", "50"}, "config set <key> <value>"},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			kctx, err := parser.Parse(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.command, kctx.Command())
		})
	}

	t.Run("submit requires a message", func(t *testing.T) {
		_, err := parser.Parse([]string{"competitions", "submit", "titanic", "cli_test.go"})
		assert.Error(t, err)
	})
}
