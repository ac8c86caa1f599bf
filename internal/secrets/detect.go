package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/adrg/xdg"
)

// BackendEnv forces a storage backend: "keyring" or "file".
const BackendEnv = "KGL_SECRET_BACKEND"

// Backend names a secret storage implementation
type Backend string

const (
	BackendKeyring Backend = "keyring"
	BackendFile    Backend = "file"
)

func warningMarkerPath() string {
	return filepath.Join(xdg.DataHome, ServiceName, ".file-store-warning-shown")
}

// quietMode returns true if the user has suppressed warnings via KGL_QUIET.
func quietMode() bool {
	v := os.Getenv("KGL_QUIET")
	return v == "1" || v == "true"
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// warnOnce prints a message to stderr, but only until the marker file exists.
// Set KGL_QUIET=1 to suppress entirely.
func warnOnce(msg string) {
	if quietMode() || fileExists(warningMarkerPath()) {
		return
	}
	fmt.Fprintln(os.Stderr, msg)
}

// markWarningsDone persists the marker so future commands stay quiet.
func markWarningsDone() {
	path := warningMarkerPath()
	if fileExists(path) {
		return
	}
	_ = os.MkdirAll(filepath.Dir(path), 0700)
	_ = os.WriteFile(path, []byte("1"), 0600)
}

// DetectBackend picks the backend for this environment. BackendEnv wins;
// WSL and headless Linux get the encrypted file.
func DetectBackend() Backend {
	switch Backend(strings.ToLower(os.Getenv(BackendEnv))) {
	case BackendFile:
		return BackendFile
	case BackendKeyring:
		return BackendKeyring
	}
	if IsWSL() || IsHeadless() {
		return BackendFile
	}
	return BackendKeyring
}

// NewStore creates a Store instance using platform-appropriate backend.
// Tries OS keyring first, falls back to encrypted file if unavailable.
func NewStore() (Store, error) {
	if DetectBackend() == BackendFile {
		if os.Getenv(BackendEnv) == "" {
			warnOnce("Detected WSL/headless environment, using encrypted file storage")
		}
		store, err := NewFileStore("", os.Getenv(PasswordEnv))
		if err != nil {
			return nil, err
		}
		markWarningsDone()
		return store, nil
	}

	store, err := NewKeyringStore()
	if err != nil {
		warnOnce(fmt.Sprintf("Keyring unavailable (%v), falling back to encrypted file", err))
		fstore, ferr := NewFileStore("", os.Getenv(PasswordEnv))
		if ferr != nil {
			return nil, ferr
		}
		markWarningsDone()
		return fstore, nil
	}

	return store, nil
}

// IsWSL returns true if running under Windows Subsystem for Linux.
func IsWSL() bool {
	if runtime.GOOS != "linux" {
		return false
	}

	data, err := os.ReadFile("/proc/version")
	if err != nil {
		return false
	}

	version := strings.ToLower(string(data))
	return strings.Contains(version, "microsoft") || strings.Contains(version, "wsl")
}

// IsHeadless returns true if running in a headless environment (no display server).
// Only applicable on Linux; macOS and Windows are assumed to have GUI.
func IsHeadless() bool {
	if runtime.GOOS != "linux" {
		return false
	}

	return os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == ""
}
