// Package config handles the XDG configuration directory, the optional
// config.yaml file and the stored session token.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"gopkg.in/yaml.v3"

	"gallery/internal/fetch"
)

const (
	// AppName is the application directory name.
	AppName = "gallery"

	// ConfigFile is the optional settings filename.
	ConfigFile = "config.yaml"

	// SessionFile is the stored auth token filename.
	SessionFile = "session.json"

	// DefaultServer is the store used when nothing else is configured.
	DefaultServer = "http://127.0.0.1:8090"

	// ServerEnv overrides the server from config.yaml.
	ServerEnv = "GALLERY_SERVER"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Server is the base URL of the image store.
	Server string

	// Fetch holds the fetch controller timings.
	Fetch fetch.Options

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Logger is never nil after New.
	Logger *zap.Logger
}

// fileSettings mirrors config.yaml.
type fileSettings struct {
	Server       string   `yaml:"server"`
	Debounce     Duration `yaml:"debounce"`
	RetryDelay   Duration `yaml:"retry_delay"`
	RetryWindow  Duration `yaml:"retry_window"`
	LoadingGrace Duration `yaml:"loading_grace"`
}

// Duration decodes Go duration strings such as "250ms" from YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(v)
	return nil
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/gallery or $HOME/.config/gallery.
// A missing config.yaml is not an error.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{
		Dir:    dir,
		Server: DefaultServer,
		Fetch:  fetch.DefaultOptions(),
		Logger: zap.NewNop(),
	}
	if err := cfg.load(); err != nil {
		return nil, err
	}
	if env := strings.TrimSpace(os.Getenv(ServerEnv)); env != "" {
		cfg.Server = env
	}
	return cfg, nil
}

func (c *Config) load() error {
	data, err := os.ReadFile(c.FilePath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", ConfigFile, err)
	}

	var s fileSettings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid %s: %w", ConfigFile, err)
	}
	if s.Server != "" {
		c.Server = s.Server
	}
	if s.Debounce > 0 {
		c.Fetch.Debounce = time.Duration(s.Debounce)
	}
	if s.RetryDelay > 0 {
		c.Fetch.RetryDelay = time.Duration(s.RetryDelay)
	}
	if s.RetryWindow > 0 {
		c.Fetch.Window = time.Duration(s.RetryWindow)
	}
	if s.LoadingGrace > 0 {
		c.Fetch.LoadingGrace = time.Duration(s.LoadingGrace)
	}
	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// FilePath returns the path to config.yaml.
func (c *Config) FilePath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// SessionPath returns the path to the stored session token.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, SessionFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasSession checks if the session file exists.
func (c *Config) HasSession() bool {
	_, err := os.Stat(c.SessionPath())
	return err == nil
}

// LoadSession reads the stored token. It returns (nil, nil) when logged out.
func (c *Config) LoadSession() (*oauth2.Token, error) {
	data, err := os.ReadFile(c.SessionPath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", SessionFile, err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", SessionFile, err)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("invalid %s: empty token", SessionFile)
	}
	return &tok, nil
}

// SaveSession writes tok with mode 0600, creating the directory if needed.
func (c *Config) SaveSession(tok *oauth2.Token) error {
	if err := c.EnsureDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.SessionPath(), data, 0600)
}

// RemoveSession deletes the session file.
func (c *Config) RemoveSession() error {
	return os.Remove(c.SessionPath())
}
