package secrets

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/adrg/xdg"
	"github.com/gofrs/flock"
)

// lockTimeout bounds how long a write waits for another kgl process
const lockTimeout = 10 * time.Second

// FileStore implements the Store interface using an AES-256-GCM encrypted file.
// This is a fallback for environments where OS keyring is unavailable (WSL, headless, Docker).
// Writes hold an advisory lock on a sibling .lock file.
type FileStore struct {
	path     string
	lockPath string
	key      []byte
}

// DefaultFilePath is where the encrypted credentials live
func DefaultFilePath() string {
	return filepath.Join(xdg.DataHome, ServiceName, "credentials.enc")
}

// NewFileStore creates a file-backed credential store at path (DefaultFilePath if empty).
// If password is empty, uses a machine-specific default key.
func NewFileStore(path, password string) (*FileStore, error) {
	if path == "" {
		path = DefaultFilePath()
	}

	var key []byte
	if password == "" {
		hostname, _ := os.Hostname()
		username := os.Getenv("USER")
		if username == "" {
			username = os.Getenv("USERNAME") // Windows fallback
		}
		hash := sha256.Sum256([]byte(username + "@" + hostname))
		key = hash[:]
		warnOnce("WARNING: Using machine-specific encryption key. For better security, set a password via " + PasswordEnv + ".")
	} else {
		// TODO: derive with scrypt instead of a bare sha256
		hash := sha256.Sum256([]byte(password))
		key = hash[:]
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create credentials directory: %w", err)
	}

	return &FileStore{
		path:     path,
		lockPath: path + ".lock",
		key:      key,
	}, nil
}

func (s *FileStore) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// encrypt seals plaintext with a random nonce prepended to the ciphertext.
func (s *FileStore) encrypt(plaintext []byte) ([]byte, error) {
	gcm, err := s.aead()
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func (s *FileStore) decrypt(ciphertext []byte) ([]byte, error) {
	gcm, err := s.aead()
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}

	return plaintext, nil
}

// withLock runs fn while holding the store's file lock.
func (s *FileStore) withLock(fn func() error) error {
	lock := flock.New(s.lockPath)
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	locked, err := lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("failed to acquire lock: timeout")
	}
	defer lock.Unlock()

	return fn()
}

// readStore decrypts and parses the credential file.
// Returns an empty map if the file doesn't exist.
func (s *FileStore) readStore() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	if len(data) == 0 {
		return make(map[string]string), nil
	}

	plaintext, err := s.decrypt(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt credentials: %w", err)
	}

	var store map[string]string
	if err := json.Unmarshal(plaintext, &store); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}

	return store, nil
}

// writeStore encrypts the map and replaces the file atomically.
func (s *FileStore) writeStore(store map[string]string) error {
	plaintext, err := json.Marshal(store)
	if err != nil {
		return fmt.Errorf("failed to serialize credentials: %w", err)
	}

	ciphertext, err := s.encrypt(plaintext)
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, ciphertext, 0600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write credentials file: %w", err)
	}

	return nil
}

// Get retrieves a credential by key from the encrypted file.
func (s *FileStore) Get(key string) (string, error) {
	store, err := s.readStore()
	if err != nil {
		return "", err
	}

	value, ok := store[key]
	if !ok {
		return "", ErrNotFound
	}

	return value, nil
}

// Set stores a credential in the encrypted file.
func (s *FileStore) Set(key, value string) error {
	return s.withLock(func() error {
		store, err := s.readStore()
		if err != nil {
			return err
		}
		store[key] = value
		return s.writeStore(store)
	})
}

// Delete removes a credential from the encrypted file.
func (s *FileStore) Delete(key string) error {
	return s.withLock(func() error {
		store, err := s.readStore()
		if err != nil {
			return err
		}
		if _, ok := store[key]; !ok {
			return ErrNotFound
		}
		delete(store, key)
		return s.writeStore(store)
	})
}

// List returns all credential keys from the encrypted file, sorted.
func (s *FileStore) List() ([]string, error) {
	store, err := s.readStore()
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(store))
	for k := range store {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys, nil
}
