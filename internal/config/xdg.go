package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// ConfigDir returns the XDG-compliant config directory for kgl
// Typically ~/.config/kgl/ on Linux
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, "kgl")
}

// ConfigPath returns the full path to the config file
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json5")
}

// DataDir returns the XDG-compliant data directory for kgl
// Typically ~/.local/share/kgl/ on Linux; holds the encrypted credentials file
func DataDir() string {
	return filepath.Join(xdg.DataHome, "kgl")
}
