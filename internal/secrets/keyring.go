package secrets

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/99designs/keyring"
	"github.com/adrg/xdg"
)

// KeyringStore keeps Kaggle tokens in the OS keyring under service "kgl".
type KeyringStore struct {
	ring keyring.Keyring
}

func keyringConfig() keyring.Config {
	return keyring.Config{
		ServiceName: ServiceName,
		// macOS: don't prompt on every token read
		KeychainTrustApplication:       true,
		KeychainAccessibleWhenUnlocked: true,
		LibSecretCollectionName:        "login",
		WinCredPrefix:                  ServiceName,
		FileDir:                        filepath.Join(xdg.DataHome, ServiceName, "keyring"),
		FilePasswordFunc:               keyring.TerminalPrompt,
	}
}

// NewKeyringStore opens the platform keyring.
// Returns an error if no keyring backend is usable here.
func NewKeyringStore() (*KeyringStore, error) {
	ring, err := keyring.Open(keyringConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring: %w", err)
	}
	return newKeyringStore(ring), nil
}

func newKeyringStore(ring keyring.Keyring) *KeyringStore {
	return &KeyringStore{ring: ring}
}

func (s *KeyringStore) Get(key string) (string, error) {
	item, err := s.ring.Get(key)
	switch {
	case errors.Is(err, keyring.ErrKeyNotFound):
		return "", ErrNotFound
	case err != nil:
		return "", fmt.Errorf("keyring get %s: %w", key, err)
	}
	return string(item.Data), nil
}

func (s *KeyringStore) Set(key, value string) error {
	err := s.ring.Set(keyring.Item{
		Key:         key,
		Data:        []byte(value),
		Label:       "kgl: " + key,
		Description: "Kaggle API token",
	})
	if err != nil {
		return fmt.Errorf("keyring set %s: %w", key, err)
	}
	return nil
}

func (s *KeyringStore) Delete(key string) error {
	err := s.ring.Remove(key)
	switch {
	case errors.Is(err, keyring.ErrKeyNotFound):
		return ErrNotFound
	case err != nil:
		return fmt.Errorf("keyring delete %s: %w", key, err)
	}
	return nil
}

// List returns stored keys in sorted order, matching FileStore.
func (s *KeyringStore) List() ([]string, error) {
	keys, err := s.ring.Keys()
	if err != nil {
		return nil, fmt.Errorf("keyring list: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}
