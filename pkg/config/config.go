// Package config handles persisted tool settings.
//
// Settings live in a JSON file under the user config directory
// (violet/config.json). Unknown keys are preserved so the file can carry
// operator-specific values alongside the ones the tool reads.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"
)

const (
	KeyAtomicsPath    = "atomics_path"
	KeyPowerShellPath = "powershell_path"
	KeyTimeout        = "timeout"

	// DefaultTimeoutSeconds bounds a single external invocation.
	DefaultTimeoutSeconds = 300
)

// Defaults returns the settings used when no config file exists yet.
func Defaults() map[string]any {
	return map[string]any{
		KeyAtomicsPath:    "",
		KeyPowerShellPath: "powershell",
		KeyTimeout:        DefaultTimeoutSeconds,
	}
}

// Config is the persisted key/value settings store.
type Config struct {
	path   string
	values map[string]any
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving user config dir: %w", err)
	}
	return filepath.Join(dir, "violet", "config.json"), nil
}

// Load reads the config file at path, or the default location when path is
// empty. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	c := &Config{path: path, values: Defaults()}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	loaded := map[string]any{}
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	for k, v := range loaded {
		c.values[k] = v
	}
	return c, nil
}

// Save writes the config file atomically, creating the directory if needed.
func (c *Config) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := json.MarshalIndent(c.values, "", "  ")
	if err != nil {
		return err
	}
	if err := renameio.WriteFile(c.path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing config file %s: %w", c.path, err)
	}
	return nil
}

// Path returns the backing file location.
func (c *Config) Path() string {
	return c.path
}

// Get returns the raw value for key, or nil when unset.
func (c *Config) Get(key string) any {
	return c.values[key]
}

// Set stores a value for key. Save must be called to persist it.
func (c *Config) Set(key string, value any) {
	c.values[key] = value
}

// All returns a copy of every setting, for display.
func (c *Config) All() map[string]any {
	out := make(map[string]any, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// AtomicsPath returns the configured Atomic Red Team atomics directory.
func (c *Config) AtomicsPath() string {
	s, _ := c.values[KeyAtomicsPath].(string)
	return s
}

// PowerShellPath returns the configured PowerShell executable.
func (c *Config) PowerShellPath() string {
	s, _ := c.values[KeyPowerShellPath].(string)
	if s == "" {
		return "powershell"
	}
	return s
}

// Timeout returns the external invocation deadline.
func (c *Config) Timeout() time.Duration {
	switch v := c.values[KeyTimeout].(type) {
	case int:
		if v > 0 {
			return time.Duration(v) * time.Second
		}
	case float64: // JSON numbers decode as float64
		if v > 0 {
			return time.Duration(v) * time.Second
		}
	case string:
		if d, err := time.ParseDuration(v + "s"); err == nil && d > 0 {
			return d
		}
	}
	return DefaultTimeoutSeconds * time.Second
}
