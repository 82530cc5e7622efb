package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultModel is the backend model used for reviews.
const DefaultModel = "claude-sonnet-4-20250514"

// keyPrefix is the expected Anthropic API key prefix. The check is advisory;
// callers may save a key without it after explicit confirmation.
const keyPrefix = "sk-ant-"

// envAPIKey is the environment fallback for credential resolution.
const envAPIKey = "ANTHROPIC_API_KEY"

// Config is the resolved runtime configuration for one command invocation.
// It is constructed once at process start and passed into every component
// that needs it; there is no ambient global.
type Config struct {
	Dir   string // per-user state directory (~/.alfred)
	Model string
}

// fileConfig is the on-disk shape of config.json.
type fileConfig struct {
	APIKey string `json:"api_key"`
}

// New builds a Config rooted at ~/.alfred, creating the directory with
// owner-only permissions if needed.
func New() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("cannot determine home directory: %w", err)
	}
	return NewAt(filepath.Join(home, ".alfred"))
}

// NewAt builds a Config rooted at an explicit directory. Used by New and by
// tests that point components at a temp dir.
func NewAt(dir string) (Config, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return Config{}, fmt.Errorf("creating config directory: %w", err)
	}
	return Config{Dir: dir, Model: DefaultModel}, nil
}

// FilePath returns the full path to config.json.
func (c Config) FilePath() string {
	return filepath.Join(c.Dir, "config.json")
}

// ResolveAPIKey resolves the backend credential, first present wins:
// explicit caller value, config file, environment. A false return is not an
// error; callers decide whether to fail or fall into interactive setup.
func (c Config) ResolveAPIKey(explicit string) (string, bool) {
	if explicit != "" {
		return explicit, true
	}
	if key := c.load().APIKey; key != "" {
		return key, true
	}
	if key := os.Getenv(envAPIKey); key != "" {
		return key, true
	}
	return "", false
}

// HasAPIKey reports whether a credential is resolvable from any source.
func (c Config) HasAPIKey() bool {
	_, ok := c.ResolveAPIKey("")
	return ok
}

// SaveAPIKey writes the credential to config.json with owner-only
// permissions.
func (c Config) SaveAPIKey(key string) error {
	cfg := c.load()
	cfg.APIKey = key
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(c.FilePath(), data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// MaskedKey returns a display-safe form of the resolved credential, or ""
// when none is configured.
func (c Config) MaskedKey() string {
	key, ok := c.ResolveAPIKey("")
	if !ok {
		return ""
	}
	if len(key) > 15 {
		return key[:7] + "..." + key[len(key)-4:]
	}
	return "***"
}

// Clear removes config.json. Missing file is not an error.
func (c Config) Clear() error {
	if err := os.Remove(c.FilePath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing config file: %w", err)
	}
	return nil
}

// ValidKeyFormat reports whether key carries the expected prefix.
func ValidKeyFormat(key string) bool {
	return strings.HasPrefix(key, keyPrefix)
}

// load reads config.json. A missing file and a malformed file both yield an
// empty config: absence is the normal first-run state, and a corrupt file
// degrades to fresh state rather than blocking every command.
func (c Config) load() fileConfig {
	data, err := os.ReadFile(c.FilePath())
	if err != nil {
		return fileConfig{}
	}
	var cfg fileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fileConfig{}
	}
	return cfg
}
