package config

import (
	"strings"
	"time"
)

// Default values applied when a setting is left empty.
const (
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "console"
	DefaultAddr              = ":8080"
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultShutdownTimeout   = 10 * time.Second
	DefaultSort              = "DEFAULT"
	DefaultTitle             = "Bucket listing"
	DefaultFetchTimeout      = 30 * time.Second
	DefaultMaxPages          = 1000
)

// ApplyDefaults fills zero values and normalizes case-insensitive settings
// and the root directory.
func ApplyDefaults(cfg *Config) {
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	cfg.Logging.Format = strings.ToLower(cfg.Logging.Format)
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultAddr
	}
	if cfg.Server.ReadHeaderTimeout == 0 {
		cfg.Server.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// The root is compared against listing prefixes, which always end in "/".
	if cfg.Bucket.RootDir != "" {
		cfg.Bucket.RootDir = strings.TrimRight(cfg.Bucket.RootDir, "/") + "/"
	}

	cfg.Bucket.Sort = strings.ToUpper(cfg.Bucket.Sort)
	if cfg.Bucket.Sort == "" {
		cfg.Bucket.Sort = DefaultSort
	}
	if cfg.Bucket.Title == "" {
		cfg.Bucket.Title = DefaultTitle
	}

	if cfg.Fetch.Timeout == 0 {
		cfg.Fetch.Timeout = DefaultFetchTimeout
	}
}

// GetDefaultConfig returns a Config populated with default values.
// The bucket endpoint has no default and must be configured.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Fetch: FetchConfig{MaxPages: DefaultMaxPages},
	}
	ApplyDefaults(cfg)
	return cfg
}
