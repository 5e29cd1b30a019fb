// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Search   SearchConfig   `mapstructure:"search"`
	HTML     HTMLConfig     `mapstructure:"html"`
	Headless HeadlessConfig `mapstructure:"headless"`
	Store    StoreConfig    `mapstructure:"store"`
	DB       DBConfig       `mapstructure:"db"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	PubSub   PubSubConfig   `mapstructure:"pubsub"`
	Timezone string         `mapstructure:"timezone"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// HTTPConfig configures the provider-facing HTTP client.
type HTTPConfig struct {
	UserAgent        string `mapstructure:"user_agent"`
	TimeoutSeconds   int    `mapstructure:"timeout_seconds"`
	MaxRetries       int    `mapstructure:"max_retries"`
	BackoffInitialMs int    `mapstructure:"backoff_initial_ms"`
}

// SearchConfig spans the candidate request-shape space and pagination limits.
type SearchConfig struct {
	Endpoints   []string `mapstructure:"endpoints"`
	DateKeys    []string `mapstructure:"date_keys"`
	DateFormats []string `mapstructure:"date_formats"`
	PageKeys    []string `mapstructure:"page_keys"`
	Methods     []string `mapstructure:"methods"`
	PageOrigins []int    `mapstructure:"page_origins"`
	PageSize    int      `mapstructure:"page_size"`
	MaxPages    int      `mapstructure:"max_pages"`
	DelayMs     int      `mapstructure:"delay_ms"`
}

// HTMLConfig lists the fallback result pages and their polling cadence.
type HTMLConfig struct {
	URLs             []string `mapstructure:"urls"`
	PollRetries      int      `mapstructure:"poll_retries"`
	PollDelaySeconds int      `mapstructure:"poll_delay_seconds"`
}

// HeadlessConfig configures the JS renderer used on empty static pages.
type HeadlessConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	NavTimeoutSec int  `mapstructure:"nav_timeout_seconds"`
}

// StoreConfig selects and parameterizes the persistence gateway.
type StoreConfig struct {
	Driver string `mapstructure:"driver"` // file or postgres
	Path   string `mapstructure:"path"`
}

// DBConfig controls access to the relational store.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	Table    string `mapstructure:"table"`
	MaxConns int    `mapstructure:"max_conns"`
	MinConns int    `mapstructure:"min_conns"`
}

// ArchiveConfig selects where raw winning payloads are kept.
type ArchiveConfig struct {
	Driver    string `mapstructure:"driver"` // none, local or gcs
	Dir       string `mapstructure:"dir"`
	GCSBucket string `mapstructure:"gcs_bucket"`
}

// PubSubConfig holds metadata for run-report notifications.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DRAWSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", true)
	v.SetDefault("http.user_agent", "drawsync/0.1")
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.backoff_initial_ms", 500)
	v.SetDefault("search.date_keys", []string{"date", "openDate", "drawDate", "dailyDate"})
	v.SetDefault("search.date_formats", []string{"iso", "slash", "roc"})
	v.SetDefault("search.page_keys", []string{"pageNum", "page", "pageNo"})
	v.SetDefault("search.methods", []string{"GET", "POST"})
	v.SetDefault("search.page_origins", []int{1, 0})
	v.SetDefault("search.page_size", 10)
	v.SetDefault("search.max_pages", 30)
	v.SetDefault("search.delay_ms", 500)
	v.SetDefault("html.poll_retries", 2)
	v.SetDefault("html.poll_delay_seconds", 30)
	v.SetDefault("headless.enabled", false)
	v.SetDefault("headless.nav_timeout_seconds", 25)
	v.SetDefault("store.driver", "file")
	v.SetDefault("store.path", "data/draws.json")
	v.SetDefault("db.table", "draws")
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("db.min_conns", 1)
	v.SetDefault("archive.driver", "none")
	v.SetDefault("timezone", "Asia/Taipei")
}

var validDateFormats = map[string]struct{}{"iso": {}, "slash": {}, "roc": {}}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if len(c.Search.Endpoints) == 0 {
		return fmt.Errorf("search.endpoints must list at least one candidate URL")
	}
	for _, f := range c.Search.DateFormats {
		if _, ok := validDateFormats[f]; !ok {
			return fmt.Errorf("search.date_formats contains unknown format %q", f)
		}
	}
	for _, m := range c.Search.Methods {
		if m != "GET" && m != "POST" {
			return fmt.Errorf("search.methods contains unsupported method %q", m)
		}
	}
	if c.Search.MaxPages <= 0 {
		return fmt.Errorf("search.max_pages must be > 0")
	}
	switch c.Store.Driver {
	case "file":
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the file driver")
		}
	case "postgres":
		if c.DB.DSN == "" {
			return fmt.Errorf("db.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("store.driver must be file or postgres")
	}
	switch c.Archive.Driver {
	case "", "none":
	case "local":
		if c.Archive.Dir == "" {
			return fmt.Errorf("archive.dir is required for the local archive")
		}
	case "gcs":
		if c.Archive.GCSBucket == "" {
			return fmt.Errorf("archive.gcs_bucket is required for the gcs archive")
		}
	default:
		return fmt.Errorf("archive.driver must be none, local or gcs")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone %q is not a valid IANA zone: %w", c.Timezone, err)
	}
	return nil
}

// HTTPTimeout converts the client timeout into a duration.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// PaceDelay converts the inter-request delay into a duration.
func (c Config) PaceDelay() time.Duration {
	return time.Duration(c.Search.DelayMs) * time.Millisecond
}

// Location resolves the configured provider timezone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}
	return loc, nil
}
