package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	BaseURL         string        `mapstructure:"base_url"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	APIReadyTimeout int           `mapstructure:"api_ready_timeout"`

	// Polling settings
	PollInterval time.Duration `mapstructure:"poll_interval"`
	RefreshDelay time.Duration `mapstructure:"refresh_delay"`
	PollTimeout  time.Duration `mapstructure:"poll_timeout"`
	MaxPolls     int           `mapstructure:"max_polls"`

	// Output settings
	DownloadDir string `mapstructure:"download_dir"`
	TUI         bool   `mapstructure:"tui"`
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		BaseURL:         "http://localhost:5000",
		RequestTimeout:  30 * time.Second,
		APIReadyTimeout: 10,
		PollInterval:    2 * time.Second,
		RefreshDelay:    time.Second,
		DownloadDir:     "downloads",
	}
}

// EnvPrefix namespaces the environment overrides. Every config key maps to
// EnvPrefix + "_" + upper-cased key, e.g. CRAWLCTL_POLL_INTERVAL=500ms or
// CRAWLCTL_MAX_POLLS=40. Durations use Go duration syntax.
const EnvPrefix = "CRAWLCTL"

// Load reads an optional config file on top of the defaults, then applies
// environment overrides. Environment wins over the file.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("base_url", cfg.BaseURL)
	v.SetDefault("request_timeout", cfg.RequestTimeout)
	v.SetDefault("api_ready_timeout", cfg.APIReadyTimeout)
	v.SetDefault("poll_interval", cfg.PollInterval)
	v.SetDefault("refresh_delay", cfg.RefreshDelay)
	v.SetDefault("poll_timeout", cfg.PollTimeout)
	v.SetDefault("max_polls", cfg.MaxPolls)
	v.SetDefault("download_dir", cfg.DownloadDir)
	v.SetDefault("tui", cfg.TUI)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base URL must be an absolute http(s) URL, got: %q", c.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported base URL scheme: %s", u.Scheme)
	}

	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got: %v", c.PollInterval)
	}

	if c.RefreshDelay < 0 {
		return fmt.Errorf("refresh delay must be non-negative, got: %v", c.RefreshDelay)
	}

	if c.PollTimeout < 0 {
		return fmt.Errorf("poll timeout must be non-negative, got: %v", c.PollTimeout)
	}

	if c.MaxPolls < 0 {
		return fmt.Errorf("max polls must be non-negative, got: %d", c.MaxPolls)
	}

	if c.APIReadyTimeout <= 0 {
		return fmt.Errorf("API ready timeout must be positive, got: %d", c.APIReadyTimeout)
	}

	return nil
}
