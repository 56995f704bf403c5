package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"landing/internal/secret"
)

//go:embed config.toml.sample
var configTemplate string

const (
	DefaultModel          = "gemini-2.5-flash"
	DefaultTimeout        = 2 * time.Minute
	DefaultMaxScreenshots = 5
	DefaultDriver         = "sqlite"
	DefaultAPIKeySecret   = "gemini-api-key"
)

type Config struct {
	DataDir      string         `toml:"data_dir"`
	TemplatesDir string         `toml:"templates_dir,omitempty"`
	Storage      StorageConfig  `toml:"storage"`
	Analyzer     AnalyzerConfig `toml:"analyzer"`
	Watch        []WatchConfig  `toml:"watch,omitempty"`
}

type StorageConfig struct {
	Driver   string `toml:"driver"`
	DSN      string `toml:"dsn"`
	Database string `toml:"database,omitempty"`
}

// AnalyzerConfig is passed explicitly to the analyzer; nothing reads the
// environment behind its back.
type AnalyzerConfig struct {
	Provider       string   `toml:"provider"`
	Model          string   `toml:"model"`
	APIKey         string   `toml:"api_key,omitempty"`
	APIKeySecret   string   `toml:"api_key_secret,omitempty"`
	Timeout        Duration `toml:"timeout"`
	MaxScreenshots int      `toml:"max_screenshots"`
}

// WatchConfig re-synthesizes PageID from URL on a cron Schedule.
type WatchConfig struct {
	PageID   string `toml:"page_id"`
	URL      string `toml:"url"`
	Schedule string `toml:"schedule"`
	Hint     string `toml:"hint,omitempty"`
}

type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func GetDefaultConfig() (*Config, error) {
	dataDir, err := GetDefaultDataDir()
	if err != nil {
		return nil, fmt.Errorf("getting default data directory: %w", err)
	}
	c := &Config{DataDir: dataDir}
	c.applyDefaults()
	return c, nil
}

// LoadConfig reads configPath, returning defaults when the file is missing.
// Environment overrides are applied last.
func LoadConfig(configPath string) (*Config, error) {
	var c *Config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if c, err = GetDefaultConfig(); err != nil {
			return nil, err
		}
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		c = &Config{}
		if err := toml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("unmarshaling config: %w", err)
		}
		if c.DataDir == "" {
			if c.DataDir, err = GetDefaultDataDir(); err != nil {
				return nil, fmt.Errorf("getting default data directory: %w", err)
			}
		}
		c.applyDefaults()
	}

	c.applyEnv()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Storage.Driver == "" {
		c.Storage.Driver = DefaultDriver
	}
	if c.Analyzer.Provider == "" {
		c.Analyzer.Provider = "gemini"
	}
	if c.Analyzer.Model == "" {
		c.Analyzer.Model = DefaultModel
	}
	if c.Analyzer.Timeout.Duration == 0 {
		c.Analyzer.Timeout = Duration{DefaultTimeout}
	}
	if c.Analyzer.MaxScreenshots <= 0 {
		c.Analyzer.MaxScreenshots = DefaultMaxScreenshots
	}
	if c.Analyzer.APIKeySecret == "" {
		c.Analyzer.APIKeySecret = DefaultAPIKeySecret
	}
}

func (c *Config) applyEnv() {
	c.Storage.Driver = getenv("LANDING_DB_DRIVER", c.Storage.Driver)
	c.Storage.DSN = getenv("LANDING_DB_DSN", c.Storage.DSN)
	c.Analyzer.Model = getenv("LANDING_ANALYZER_MODEL", c.Analyzer.Model)
	c.TemplatesDir = getenv("LANDING_TEMPLATES_DIR", c.TemplatesDir)
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "sqlite", "postgres", "mysql", "mongodb":
	default:
		return fmt.Errorf("config: unsupported storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver != "sqlite" && c.Storage.DSN == "" {
		return fmt.Errorf("config: storage dsn required for driver %q", c.Storage.Driver)
	}
	if c.Analyzer.Provider != "gemini" {
		return fmt.Errorf("config: unsupported analyzer provider %q", c.Analyzer.Provider)
	}
	for i, w := range c.Watch {
		if w.PageID == "" || w.URL == "" || w.Schedule == "" {
			return fmt.Errorf("config: watch[%d] needs page_id, url and schedule", i)
		}
	}
	return nil
}

// DSN returns the storage DSN, defaulting sqlite to <data_dir>/landing.db.
func (c *Config) DSN() string {
	if c.Storage.DSN == "" && c.Storage.Driver == "sqlite" {
		return filepath.Join(c.DataDir, "landing.db")
	}
	return c.Storage.DSN
}

// ResolveAPIKey returns the analyzer key: config value, then the secret
// store entry named by api_key_secret, then GEMINI_API_KEY.
func (c *Config) ResolveAPIKey(store secret.SecretStore) (string, error) {
	if k := strings.TrimSpace(c.Analyzer.APIKey); k != "" {
		return k, nil
	}
	if store != nil && c.Analyzer.APIKeySecret != "" {
		v, err := store.Get(c.Analyzer.APIKeySecret)
		if err != nil {
			return "", fmt.Errorf("read secret %q: %w", c.Analyzer.APIKeySecret, err)
		}
		if k := strings.TrimSpace(string(v)); k != "" {
			return k, nil
		}
	}
	if k := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); k != "" {
		return k, nil
	}
	return "", fmt.Errorf("no analyzer api key: set analyzer.api_key, keychain entry %q or GEMINI_API_KEY", c.Analyzer.APIKeySecret)
}

func (c *Config) SaveTemplateConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	template := strings.Replace(configTemplate, "/home/user/.local/share/landing", c.DataDir, 1)
	return os.WriteFile(configPath, []byte(template), 0644)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetDefaultDataDir returns $XDG_DATA_HOME/landing or ~/.local/share/landing.
func GetDefaultDataDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataDir, "landing"), nil
}

// GetDefaultConfigPath returns $XDG_CONFIG_HOME/landing/config.toml or
// ~/.config/landing/config.toml.
func GetDefaultConfigPath() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "landing", "config.toml"), nil
}
