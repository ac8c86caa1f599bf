package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"

	"github.com/yosuke-furukawa/json5/encoding/json5"
)

// Config holds the CLI configuration
type Config struct {
	APIBase       string `json:"api_base,omitempty"`
	CLIPath       string `json:"cli_path,omitempty"`
	DefaultOutput string `json:"default_output,omitempty"`
	DownloadDir   string `json:"download_dir,omitempty"`
	PageSize      string `json:"page_size,omitempty"`

	path string
}

// Load reads config from XDG path, returns defaults if file doesn't exist
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads config from path. A missing file yields an empty config
// that saves back to path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{path: path}, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json5.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.path = path

	return &cfg, nil
}

// Path returns the file this config was loaded from
func (c *Config) Path() string {
	if c.path == "" {
		return ConfigPath()
	}
	return c.path
}

// Save writes the config back to the file it was loaded from
func (c *Config) Save() error {
	return c.SaveTo(c.Path())
}

// SaveTo writes the config to path
func (c *Config) SaveTo(path string) error {
	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Marshal to JSON (not JSON5 for writing - JSON is valid JSON5)
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// field finds the struct field tagged with key
func (c *Config) field(key string) (reflect.Value, error) {
	v := reflect.ValueOf(c).Elem()
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		if name, ok := jsonName(t.Field(i)); ok && name == key {
			return v.Field(i), nil
		}
	}

	return reflect.Value{}, fmt.Errorf("unknown config key: %s (valid: %v)", key, Keys())
}

// Get retrieves a config value by key name
func (c *Config) Get(key string) (string, error) {
	f, err := c.field(key)
	if err != nil {
		return "", err
	}
	return f.String(), nil
}

// Set validates and sets a config value by key name and saves
func (c *Config) Set(key, value string) error {
	f, err := c.field(key)
	if err != nil {
		return err
	}
	if err := Validate(key, value); err != nil {
		return err
	}
	f.SetString(value)
	return c.Save()
}

// Unset sets a config value to its zero value and saves
func (c *Config) Unset(key string) error {
	f, err := c.field(key)
	if err != nil {
		return err
	}
	f.SetString("")
	return c.Save()
}

// All returns every key with its current value, in declaration order
func (c *Config) All() [][2]string {
	v := reflect.ValueOf(c).Elem()
	t := v.Type()

	var pairs [][2]string
	for i := 0; i < v.NumField(); i++ {
		if name, ok := jsonName(t.Field(i)); ok {
			pairs = append(pairs, [2]string{name, v.Field(i).String()})
		}
	}
	return pairs
}

// PageSizeOr returns the configured page size, or def when unset or invalid
func (c *Config) PageSizeOr(def int) int {
	n, err := strconv.Atoi(c.PageSize)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func jsonName(f reflect.StructField) (string, bool) {
	if !f.IsExported() {
		return "", false
	}
	tag := f.Tag.Get("json")
	for i := 0; i < len(tag); i++ {
		if tag[i] == ',' {
			return tag[:i], true
		}
	}
	return tag, tag != ""
}
