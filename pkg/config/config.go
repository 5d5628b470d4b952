package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is prepended to every variable name, e.g. ATTENDO_API_URL.
const EnvPrefix = "ATTENDO"

const (
	DefaultAPIURL = "https://backend-production-9a44e.up.railway.app/api"
	DefaultWebURL = "https://attendo.app"
)

// Config holds everything the console and the CLI subcommands read from the
// environment.
type Config struct {
	APIURL      string        `envconfig:"API_URL" default:"https://backend-production-9a44e.up.railway.app/api"`
	WebURL      string        `split_words:"true" default:"https://attendo.app"`
	Home        string        // ATTENDO_HOME, defaults to ~/.attendo
	Token       string        // ATTENDO_TOKEN, memory-only override of the stored credential
	TokenTTL    time.Duration `split_words:"true" default:"168h"`
	HTTPTimeout time.Duration `split_words:"true" default:"30s"`
	LogLevel    string        `split_words:"true" default:"info"`
	LogFormat   string        `split_words:"true" default:"json"`
}

// Load reads an optional .env file from the working directory, then the
// process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("config.Load: read .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid %s_API_URL %q", EnvPrefix, c.APIURL)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("invalid %s_TOKEN_TTL %s: must be positive", EnvPrefix, c.TokenTTL)
	}
	if c.Home == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("get home dir: %w", err)
		}
		c.Home = filepath.Join(home, ".attendo")
	}
	return nil
}

// CredentialsPath is where the file-backed credential store lives.
func (c Config) CredentialsPath() string {
	return filepath.Join(c.Home, "credentials.json")
}

// LogPath is where the console writes its log, since it owns the terminal.
func (c Config) LogPath() string {
	return filepath.Join(c.Home, "attendo.log")
}
