// Package config loads and validates the bucket-listing configuration.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete bucket-listing configuration.
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority)
//  2. Environment variables (BUCKET_LISTING_*)
//  3. Configuration file (YAML or TOML)
//  4. Default values (lowest priority)
//
// A loaded Config is treated as immutable and passed explicitly to the
// components that need it.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging"`

	// Server contains HTTP listener settings
	Server ServerConfig `mapstructure:"server"`

	// Bucket describes the bucket being listed and how links are rendered
	Bucket BucketConfig `mapstructure:"bucket"`

	// Fetch controls how listing pages are requested from the endpoint
	Fetch FetchConfig `mapstructure:"fetch"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`

	// Format selects the encoder: console or json
	Format string `mapstructure:"format" validate:"required,oneof=console json"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Addr              string        `mapstructure:"addr" validate:"required"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" validate:"gt=0"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// BucketConfig describes the listed bucket.
type BucketConfig struct {
	// URL is the base listing endpoint (e.g. https://s3.amazonaws.com)
	URL string `mapstructure:"url" validate:"omitempty,url"`

	// Name is appended to URL as a path segment when set
	Name string `mapstructure:"name"`

	// Region builds a regional AWS endpoint when URL is empty
	Region string `mapstructure:"region"`

	// WebsiteURL is the base for file links; defaults to the listing endpoint
	WebsiteURL string `mapstructure:"website_url" validate:"omitempty,url"`

	// IgnorePath navigates with ?prefix= query parameters instead of request paths
	IgnorePath bool `mapstructure:"ignore_path"`

	// RootDir is the prefix treated as the top of the listing
	RootDir string `mapstructure:"root_dir"`

	// Sort orders files within each page
	Sort string `mapstructure:"sort" validate:"required,oneof=DEFAULT OLD2NEW NEW2OLD A2Z Z2A BIG2SMALL SMALL2BIG"`

	// ExcludeFiles lists glob patterns of keys that are never shown
	ExcludeFiles []string `mapstructure:"exclude_files"`

	// Title is the page title; AutoTitle uses the request host instead
	Title     string `mapstructure:"title"`
	AutoTitle bool   `mapstructure:"auto_title"`
}

// FetchConfig controls requests to the listing endpoint.
type FetchConfig struct {
	// Timeout bounds a single page request
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`

	// MaxPages stops pagination after this many pages (0 = unlimited)
	MaxPages int `mapstructure:"max_pages" validate:"gte=0"`

	// RequestsPerSecond throttles page requests (0 = unlimited)
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gte=0"`
}

// ListingEndpoint returns the URL listing requests are sent to.
func (b BucketConfig) ListingEndpoint() string {
	base := strings.TrimRight(b.URL, "/")
	if base == "" && b.Region != "" {
		base = "https://s3." + b.Region + ".amazonaws.com"
	}
	if b.Name != "" && !b.virtualHosted(base) {
		base += "/" + b.Name
	}
	return base
}

// virtualHosted reports whether base already addresses the bucket by host
// name (https://<name>.s3.amazonaws.com), so Name must not be appended.
func (b BucketConfig) virtualHosted(base string) bool {
	u, err := url.Parse(base)
	if err != nil {
		return false
	}
	host := u.Hostname()
	return host == b.Name || strings.HasPrefix(host, b.Name+".")
}

// WebsiteBaseURL returns the base URL file links point at.
func (b BucketConfig) WebsiteBaseURL() string {
	if b.WebsiteURL != "" {
		return strings.TrimRight(b.WebsiteURL, "/")
	}
	return b.ListingEndpoint()
}

// Load loads configuration from file, environment variables, and defaults.
//
// A missing config file is not an error; an unreadable or invalid one is.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures env binding, defaults, and the config file search.
func setupViper(v *viper.Viper, configPath string) {
	// Example: BUCKET_LISTING_BUCKET_IGNORE_PATH=true
	v.SetEnvPrefix("BUCKET_LISTING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees env vars for keys viper already knows about.
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

func setDefaults(v *viper.Viper) {
	d := GetDefaultConfig()

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.read_header_timeout", d.Server.ReadHeaderTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	v.SetDefault("bucket.url", d.Bucket.URL)
	v.SetDefault("bucket.name", d.Bucket.Name)
	v.SetDefault("bucket.region", d.Bucket.Region)
	v.SetDefault("bucket.website_url", d.Bucket.WebsiteURL)
	v.SetDefault("bucket.ignore_path", d.Bucket.IgnorePath)
	v.SetDefault("bucket.root_dir", d.Bucket.RootDir)
	v.SetDefault("bucket.sort", d.Bucket.Sort)
	v.SetDefault("bucket.exclude_files", d.Bucket.ExcludeFiles)
	v.SetDefault("bucket.title", d.Bucket.Title)
	v.SetDefault("bucket.auto_title", d.Bucket.AutoTitle)

	v.SetDefault("fetch.timeout", d.Fetch.Timeout)
	v.SetDefault("fetch.max_pages", d.Fetch.MaxPages)
	v.SetDefault("fetch.requests_per_second", d.Fetch.RequestsPerSecond)
}

func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// getConfigDir returns $XDG_CONFIG_HOME/bucket-listing, falling back to
// ~/.config/bucket-listing and finally the working directory.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "bucket-listing")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "bucket-listing")
}
