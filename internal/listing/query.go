// Package listing turns a bucket's XML listing endpoint into a rendered
// directory table: query construction, response parsing, row rendering
// and pagination.
package listing

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/damacus/bucket-listing/internal/config"
	"github.com/minio/minio-go/v7/pkg/s3utils"
)

// Delimiter groups keys into directories.
const Delimiter = "/"

// ResolvePrefix derives the listing prefix for a browser location.
//
// Without IgnorePath the request path (relative to RootDir) selects the
// prefix. A prefix query parameter rooted at RootDir overrides it. With
// IgnorePath and no such parameter the prefix is RootDir.
func ResolvePrefix(cfg config.BucketConfig, location *url.URL) string {
	rootDir := NormalizePrefix(cfg.RootDir)

	var prefix string
	if !cfg.IgnorePath {
		prefix = location.Path
		if rest, ok := strings.CutPrefix(prefix, "/"); ok {
			prefix = rootDir + rest
		}
	}

	if override, ok := prefixParam(rootDir, location); ok {
		prefix = override
	} else if cfg.IgnorePath {
		prefix = rootDir
	}

	return NormalizePrefix(prefix)
}

// prefixParam returns the last prefix query value that extends rootDir.
func prefixParam(rootDir string, location *url.URL) (string, bool) {
	values := location.Query()["prefix"]
	for i := len(values) - 1; i >= 0; i-- {
		v := values[i]
		if len(v) > len(rootDir) && strings.HasPrefix(v, rootDir) {
			return v, true
		}
	}
	return "", false
}

// NormalizePrefix makes a non-empty prefix end with exactly one delimiter.
func NormalizePrefix(prefix string) string {
	if prefix == "" {
		return ""
	}
	return strings.TrimRight(prefix, Delimiter) + Delimiter
}

// QueryURL builds the listing request for an already resolved prefix.
func QueryURL(endpoint, prefix, marker string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse listing endpoint: %w", err)
	}

	q := u.Query()
	q.Set("delimiter", Delimiter)
	if prefix != "" {
		q.Set("prefix", prefix)
	}
	if marker != "" {
		q.Set("marker", marker)
	}
	u.RawQuery = s3utils.QueryEncode(q)

	return u.String(), nil
}

// BuildQueryURL builds the listing request for a browser location and an
// optional continuation marker.
func BuildQueryURL(cfg config.BucketConfig, location *url.URL, marker string) (string, error) {
	return QueryURL(cfg.ListingEndpoint(), ResolvePrefix(cfg, location), marker)
}
