// Package config loads the service configuration from a JSON or YAML file
// and the process environment.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/seamonger/procurement/internal/domain"
	"github.com/seamonger/procurement/internal/logging"
)

// MinPollIntervalSec is the shortest poll interval accepted.
const MinPollIntervalSec = 300

// Directory backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// ShopifyConfig configures the order source.
type ShopifyConfig struct {
	StoreDomain string `json:"store_domain" yaml:"store_domain"`
	AccessToken string `json:"access_token" yaml:"access_token"`
	APIVersion  string `json:"api_version" yaml:"api_version"`
	TimeoutSec  int    `json:"timeout_sec" yaml:"timeout_sec"`
}

// Timeout returns the request timeout as a duration.
func (s ShopifyConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSec) * time.Second
}

// WhatsAppConfig configures the message gateway.
type WhatsAppConfig struct {
	APIURL     string `json:"api_url" yaml:"api_url"`
	APIToken   string `json:"api_token" yaml:"api_token"`
	TimeoutSec int    `json:"timeout_sec" yaml:"timeout_sec"`
}

// Timeout returns the request timeout as a duration.
func (w WhatsAppConfig) Timeout() time.Duration {
	return time.Duration(w.TimeoutSec) * time.Second
}

// DirectoryConfig selects where suppliers are stored.
type DirectoryConfig struct {
	Backend   string `json:"backend" yaml:"backend"`
	RedisURL  string `json:"redis_url" yaml:"redis_url"`
	Namespace string `json:"namespace" yaml:"namespace"`
}

// LoggingConfig sets the zap level and encoder.
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// Config holds the service's runtime configuration.
type Config struct {
	DBPath          string          `json:"db_path" yaml:"db_path"`
	ListenAddr      string          `json:"listen_addr" yaml:"listen_addr"`
	FounderPhone    string          `json:"founder_phone" yaml:"founder_phone"`
	PollIntervalSec int             `json:"poll_interval_sec" yaml:"poll_interval_sec"`
	Shopify         ShopifyConfig   `json:"shopify" yaml:"shopify"`
	WhatsApp        WhatsAppConfig  `json:"whatsapp" yaml:"whatsapp"`
	Directory       DirectoryConfig `json:"directory" yaml:"directory"`
	Logging         LoggingConfig   `json:"logging" yaml:"logging"`
}

// PollInterval returns the poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSec) * time.Second
}

// Load reads a config file, applies environment overrides and defaults, and validates.
// The format follows the file extension: .yaml and .yml are YAML, anything else JSON.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config YAML: %w", err)
			}
		default:
			if err := json.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config JSON: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"SHOPIFY_STORE_DOMAIN": &c.Shopify.StoreDomain,
		"SHOPIFY_ACCESS_TOKEN": &c.Shopify.AccessToken,
		"SHOPIFY_API_VERSION":  &c.Shopify.APIVersion,
		"WHATSAPP_API_URL":     &c.WhatsApp.APIURL,
		"WHATSAPP_API_TOKEN":   &c.WhatsApp.APIToken,
		"FOUNDER_PHONE":        &c.FounderPhone,
		"SQLITE_PATH":          &c.DBPath,
		"DIRECTORY_BACKEND":    &c.Directory.Backend,
		"REDIS_URL":            &c.Directory.RedisURL,
		"LISTEN_ADDR":          &c.ListenAddr,
		"LOGGING_LEVEL":        &c.Logging.Level,
		"LOGGING_FORMAT":       &c.Logging.Format,
	}
	for name, dst := range strs {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("POLL_INTERVAL_SECONDS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return domain.Wrap(domain.ErrConfigInvalid, "POLL_INTERVAL_SECONDS", err)
		}
		c.PollIntervalSec = n
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.DBPath == "" {
		c.DBPath = "seamonger.db"
	}
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.PollIntervalSec < MinPollIntervalSec {
		c.PollIntervalSec = MinPollIntervalSec
	}
	if c.Shopify.APIVersion == "" {
		c.Shopify.APIVersion = "2025-10"
	}
	if c.Shopify.TimeoutSec == 0 {
		c.Shopify.TimeoutSec = 20
	}
	if c.WhatsApp.TimeoutSec == 0 {
		c.WhatsApp.TimeoutSec = 15
	}
	if c.Directory.Backend == "" {
		c.Directory.Backend = BackendSQLite
	}
	c.Directory.Backend = strings.ToLower(c.Directory.Backend)
	if c.Directory.Namespace == "" {
		c.Directory.Namespace = "seamonger"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "INFO"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = string(logging.FormatConsole)
	}
}

func (c *Config) validate() error {
	var problems []string

	switch c.Directory.Backend {
	case BackendSQLite:
	case BackendRedis:
		if c.Directory.RedisURL == "" {
			problems = append(problems, "directory.redis_url is required for the redis backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown directory backend %q", c.Directory.Backend))
	}
	if (c.Shopify.StoreDomain == "") != (c.Shopify.AccessToken == "") {
		problems = append(problems, "shopify.store_domain and shopify.access_token must be set together")
	}
	if c.Shopify.TimeoutSec < 0 || c.WhatsApp.TimeoutSec < 0 {
		problems = append(problems, "timeouts must not be negative")
	}
	if _, err := logging.ParseFormat(c.Logging.Format); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return &domain.Error{
			Code:    domain.ErrConfigInvalid.Code,
			Message: fmt.Sprintf("%s: %v", domain.ErrConfigInvalid.Message, problems),
		}
	}
	return nil
}
