package auth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semmy-space/kgl/internal/secrets"
)

type memStore struct {
	data   map[string]string
	getErr error
}

func newMemStore() *memStore {
	return &memStore{data: map[string]string{}}
}

func (m *memStore) Get(key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return "", secrets.ErrNotFound
	}
	return v, nil
}

func (m *memStore) Set(key, value string) error {
	m.data[key] = value
	return nil
}

func (m *memStore) Delete(key string) error {
	if _, ok := m.data[key]; !ok {
		return secrets.ErrNotFound
	}
	delete(m.data, key)
	return nil
}

func envMap(vars map[string]string) LookupEnv {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

type scriptedPrompter struct {
	answers []string
	asked   []string
}

func (p *scriptedPrompter) Prompt(label string, secret bool) (string, error) {
	p.asked = append(p.asked, label)
	if len(p.answers) == 0 {
		return "", nil
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a, nil
}

func TestResolveOrder(t *testing.T) {
	allEnv := map[string]string{
		EnvTokenJSON: `{"username":"envjson","key":"k2"}`,
		EnvUsername:  "envuser",
		EnvKey:       "k3",
	}

	tests := []struct {
		name     string
		stored   string
		env      map[string]string
		expected Credentials
	}{
		{
			name:     "secret store wins over environment",
			stored:   `{"username":"stored","key":"k1"}`,
			env:      allEnv,
			expected: Credentials{Username: "stored", Key: "k1"},
		},
		{
			name:     "token json used when store empty",
			env:      allEnv,
			expected: Credentials{Username: "envjson", Key: "k2"},
		},
		{
			name:     "malformed stored token falls through",
			stored:   `{not json`,
			env:      allEnv,
			expected: Credentials{Username: "envjson", Key: "k2"},
		},
		{
			name:   "stored token missing key falls through",
			stored: `{"username":"stored"}`,
			env: map[string]string{
				EnvUsername: "envuser",
				EnvKey:      "k3",
			},
			expected: Credentials{Username: "envuser", Key: "k3"},
		},
		{
			name: "invalid token json falls through to pair",
			env: map[string]string{
				EnvTokenJSON: `["nope"]`,
				EnvUsername:  "envuser",
				EnvKey:       "k3",
			},
			expected: Credentials{Username: "envuser", Key: "k3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			if tt.stored != "" {
				store.data[SecretKey] = tt.stored
			}

			creds, err := Resolve(context.Background(), DefaultSources(store, envMap(tt.env), nil)...)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, creds)
		})
	}
}

func TestResolveStoreDoesNotConsultEnvironment(t *testing.T) {
	store := newMemStore()
	store.data[SecretKey] = `{"username":"stored","key":"k1"}`

	consulted := false
	lookup := func(key string) (string, bool) {
		consulted = true
		return "", false
	}

	creds, err := Resolve(context.Background(), DefaultSources(store, lookup, nil)...)
	require.NoError(t, err)
	assert.Equal(t, Credentials{Username: "stored", Key: "k1"}, creds)
	assert.False(t, consulted)
}

func TestResolveNoCredentials(t *testing.T) {
	store := newMemStore()
	store.getErr = errors.New("keyring locked")

	_, err := Resolve(context.Background(), DefaultSources(store, envMap(map[string]string{
		EnvUsername: "only-user",
	}), nil)...)
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestResolvePrompt(t *testing.T) {
	t.Run("prompt used last", func(t *testing.T) {
		p := &scriptedPrompter{answers: []string{" alice ", "secret"}}
		creds, err := Resolve(context.Background(), DefaultSources(newMemStore(), envMap(nil), p)...)
		require.NoError(t, err)
		assert.Equal(t, Credentials{Username: "alice", Key: "secret"}, creds)
		assert.Equal(t, []string{"Kaggle Username", "Kaggle API Key"}, p.asked)
	})

	t.Run("empty username cancels", func(t *testing.T) {
		p := &scriptedPrompter{answers: []string{""}}
		_, err := Resolve(context.Background(), DefaultSources(newMemStore(), envMap(nil), p)...)
		assert.ErrorIs(t, err, ErrSignInCanceled)
		assert.Len(t, p.asked, 1)
	})

	t.Run("empty key cancels", func(t *testing.T) {
		p := &scriptedPrompter{answers: []string{"alice", ""}}
		_, err := Resolve(context.Background(), DefaultSources(newMemStore(), envMap(nil), p)...)
		assert.ErrorIs(t, err, ErrSignInCanceled)
	})

	t.Run("prompt skipped when environment resolves", func(t *testing.T) {
		p := &scriptedPrompter{}
		_, err := Resolve(context.Background(), DefaultSources(newMemStore(), envMap(map[string]string{
			EnvUsername: "u",
			EnvKey:      "k",
		}), p)...)
		require.NoError(t, err)
		assert.Empty(t, p.asked)
	})
}

func TestResolverResolvesPerCall(t *testing.T) {
	store := newMemStore()
	r := NewResolver(DefaultSources(store, envMap(nil), nil)...)

	_, err := r.Resolve(context.Background())
	assert.ErrorIs(t, err, ErrNoCredentials)

	store.data[SecretKey] = `{"username":"later","key":"k"}`
	creds, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "later", creds.Username)
}

func TestCredentialsEnv(t *testing.T) {
	creds := Credentials{Username: "u", Key: "k"}
	assert.Equal(t, []string{"KAGGLE_USERNAME=u", "KAGGLE_KEY=k"}, creds.Env())
	assert.JSONEq(t, `{"username":"u","key":"k"}`, creds.JSON())
}

func TestSignIn(t *testing.T) {
	t.Run("stores token from environment", func(t *testing.T) {
		store := newMemStore()
		p := &scriptedPrompter{}
		creds, source, err := SignIn(context.Background(), store, envMap(map[string]string{
			EnvTokenJSON: `{"username":"envjson","key":"k2"}`,
		}), p)
		require.NoError(t, err)
		assert.Equal(t, "envjson", creds.Username)
		assert.Equal(t, EnvTokenJSON, source)
		assert.Empty(t, p.asked)
		assert.JSONEq(t, `{"username":"envjson","key":"k2"}`, store.data[SecretKey])
	})

	t.Run("prompts and stores", func(t *testing.T) {
		store := newMemStore()
		p := &scriptedPrompter{answers: []string{"bob", "k"}}
		_, source, err := SignIn(context.Background(), store, envMap(nil), p)
		require.NoError(t, err)
		assert.Equal(t, "prompt", source)
		assert.JSONEq(t, `{"username":"bob","key":"k"}`, store.data[SecretKey])
	})

	t.Run("cancel stores nothing", func(t *testing.T) {
		store := newMemStore()
		_, _, err := SignIn(context.Background(), store, envMap(nil), &scriptedPrompter{})
		assert.ErrorIs(t, err, ErrSignInCanceled)
		assert.Empty(t, store.data)
	})

	t.Run("non-interactive without env", func(t *testing.T) {
		_, _, err := SignIn(context.Background(), newMemStore(), envMap(nil), nil)
		assert.ErrorIs(t, err, ErrNoCredentials)
	})
}

func TestImportTokenFile(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "kaggle.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"username":"file","key":"fk"}`), 0600))
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"username":"file"}`), 0600))

	store := newMemStore()
	creds, err := ImportTokenFile(store, good)
	require.NoError(t, err)
	assert.Equal(t, Credentials{Username: "file", Key: "fk"}, creds)
	assert.Contains(t, store.data, SecretKey)

	_, err = ImportTokenFile(newMemStore(), bad)
	assert.ErrorContains(t, err, "missing username/key")

	_, err = ImportTokenFile(newMemStore(), filepath.Join(dir, "absent.json"))
	assert.Error(t, err)
}

func TestClearStoredToken(t *testing.T) {
	store := newMemStore()
	store.data[SecretKey] = "x"
	require.NoError(t, ClearStoredToken(store))
	assert.Empty(t, store.data)

	// Already gone
	assert.NoError(t, ClearStoredToken(store))
}
