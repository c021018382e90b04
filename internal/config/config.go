// Package config reads agentwire settings from the environment, after
// loading an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/agentwire/agentwire/pkg/session"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every environment-driven setting.
type Config struct {
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	// TwitterUsername and TwitterPassword are the older names for the
	// credential pair.
	TwitterUsername string `env:"TWITTER_USERNAME"`
	TwitterPassword string `env:"TWITTER_PASSWORD"`

	ServiceURL   string        `env:"AGENTWIRE_SERVICE_URL" envDefault:"https://twitter.com"`
	CookieDomain string        `env:"AGENTWIRE_COOKIE_DOMAIN" envDefault:".twitter.com"`
	UserAgent    string        `env:"AGENTWIRE_USER_AGENT" envDefault:"agentwire/1.0"`
	Proxy        string        `env:"AGENTWIRE_PROXY"`
	Timeout      time.Duration `env:"AGENTWIRE_TIMEOUT" envDefault:"30s"`
	LoginDelay   time.Duration `env:"AGENTWIRE_LOGIN_DELAY" envDefault:"1s"`

	SessionDir string `env:"AGENTWIRE_SESSION_DIR" envDefault:"."`
	Seal       bool   `env:"AGENTWIRE_SEAL"`
	SessionKey string `env:"AGENTWIRE_SESSION_KEY"`
	ConfigDir  string `env:"AGENTWIRE_CONFIG_DIR"`

	ServerPort  int    `env:"SERVER_PORT" envDefault:"3000"`
	DownloadDir string `env:"AGENTWIRE_DOWNLOAD_DIR" envDefault:"./meme_images"`
	LogFile     string `env:"AGENTWIRE_LOG_FILE"`
}

var userConfigDir = os.UserConfigDir

// Load reads the given .env files (default ".env"; missing files are
// skipped) and then parses the process environment. Variables already set
// in the environment win over .env entries.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return finish(&cfg)
}

// FromMap parses settings from environ instead of the process environment.
func FromMap(environ map[string]string) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return nil, err
	}
	return finish(&cfg)
}

func finish(cfg *Config) (*Config, error) {
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("AGENTWIRE_TIMEOUT must be positive, got %s", cfg.Timeout)
	}
	if cfg.LoginDelay < 0 {
		return nil, fmt.Errorf("AGENTWIRE_LOGIN_DELAY must not be negative, got %s", cfg.LoginDelay)
	}
	if cfg.ServerPort <= 0 || cfg.ServerPort > 65535 {
		return nil, fmt.Errorf("SERVER_PORT out of range: %d", cfg.ServerPort)
	}
	if cfg.ConfigDir == "" {
		dir, err := userConfigDir()
		if err != nil {
			return nil, fmt.Errorf("locate config dir: %w", err)
		}
		cfg.ConfigDir = filepath.Join(dir, "agentwire")
	}
	return cfg, nil
}

// Credential returns the login pair. A complete TWITTER_USERNAME /
// TWITTER_PASSWORD pair wins; otherwise USERNAME / PASSWORD is used as is,
// which may be incomplete.
func (c *Config) Credential() session.Credential {
	if c.TwitterUsername != "" && c.TwitterPassword != "" {
		return session.Credential{Username: c.TwitterUsername, Password: c.TwitterPassword}
	}
	return session.Credential{Username: c.Username, Password: c.Password}
}

// SealingEnabled reports whether cookie values should be encrypted at rest.
// Supplying a key implies sealing.
func (c *Config) SealingEnabled() bool {
	return c.Seal || c.SessionKey != ""
}

// RelayEndpoint is the base URL of the local agent server.
func (c *Config) RelayEndpoint() string {
	return fmt.Sprintf("http://localhost:%d", c.ServerPort)
}
