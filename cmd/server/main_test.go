package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/damacus/bucket-listing/internal/config"
	"github.com/damacus/bucket-listing/internal/listing"
	"github.com/damacus/bucket-listing/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const listingXML = `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Prefix>%s</Prefix>
  <IsTruncated>%t</IsTruncated>
  <NextMarker>%s</NextMarker>
  %s
</ListBucketResult>`

// requestLog records the query of every listing request.
type requestLog struct {
	mu      sync.Mutex
	queries []url.Values
}

func (l *requestLog) add(q url.Values) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.queries = append(l.queries, q)
}

func (l *requestLog) all() []url.Values {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]url.Values(nil), l.queries...)
}

func (l *requestLog) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.queries = nil
}

// newFakeBucket serves a two-page root listing, a single-page "docs/"
// listing, and an upstream failure for "broken/".
func newFakeBucket(t *testing.T) (*httptest.Server, *requestLog) {
	t.Helper()

	requests := &requestLog{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		requests.add(q)

		switch {
		case q.Get("prefix") == "" && q.Get("marker") == "":
			fmt.Fprintf(w, listingXML, "", true, "index.html", `
  <Contents><Key>index.html</Key><LastModified>2020-01-01T00:00:00.000Z</LastModified><Size>500</Size></Contents>
  <CommonPrefixes><Prefix>docs/</Prefix></CommonPrefixes>
  <CommonPrefixes><Prefix>photos/</Prefix></CommonPrefixes>`)
		case q.Get("prefix") == "" && q.Get("marker") == "index.html":
			fmt.Fprintf(w, listingXML, "", false, "", `
  <Contents><Key>readme.md</Key><LastModified>2020-02-01T00:00:00.000Z</LastModified><Size>1048576</Size></Contents>`)
		case q.Get("prefix") == "docs/":
			fmt.Fprintf(w, listingXML, "docs/", false, "", `
  <Contents><Key>docs/guide.pdf</Key><LastModified>2021-03-04T05:06:07.000Z</LastModified><Size>2048</Size></Contents>`)
		default:
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `<Error><Code>AccessDenied</Code><Message>Access Denied</Message></Error>`)
		}
	}))
	t.Cleanup(srv.Close)

	return srv, requests
}

func testConfig(endpoint string) *config.Config {
	cfg := config.GetDefaultConfig()
	cfg.Bucket.URL = endpoint
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config) *echo.Echo {
	t.Helper()
	client := services.NewListingClient(cfg.Fetch.Timeout)
	return newServer(cfg, listing.NewLister(cfg, client, zap.NewNop()), zap.NewNop())
}

func TestRoutes(t *testing.T) {
	srv, requests := newFakeBucket(t)
	e := newTestServer(t, testConfig(srv.URL))

	t.Run("Health", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "OK", rec.Body.String())
	})

	t.Run("Root listing follows markers", func(t *testing.T) {
		requests.reset()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()

		assert.Contains(t, body, `<a href="docs/">docs/</a>`)
		assert.Contains(t, body, `<a href="photos/">photos/</a>`)
		assert.Contains(t, body, `<a href="`+srv.URL+`/index.html">index.html</a>`)
		assert.Contains(t, body, `<a href="`+srv.URL+`/readme.md">readme.md</a>`)
		assert.Contains(t, body, "0.5 kB")
		assert.Contains(t, body, "1.0 MB")
		assert.Contains(t, body, "2 directories, 2 files, 2 pages")
		assert.NotContains(t, body, "../")

		queries := requests.all()
		require.Len(t, queries, 2)
		assert.Equal(t, "/", queries[0].Get("delimiter"))
		assert.Empty(t, queries[0].Get("marker"))
		assert.Equal(t, "index.html", queries[1].Get("marker"))
	})

	t.Run("Sub-directory listing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/docs/", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()

		assert.Contains(t, body, `<a href="../">../</a>`)
		assert.Contains(t, body, `<a href="`+srv.URL+`/docs/guide.pdf">guide.pdf</a>`)
		assert.Contains(t, body, "2.0 kB")
		assert.Contains(t, body, `<a href="?prefix=">`)
		assert.Contains(t, body, `<a href="?prefix=docs/">docs</a>`)
	})

	t.Run("Upstream failure renders inline", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/broken/", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, rec.Body.String(), `<strong class="error">Error: `)
		assert.Contains(t, rec.Body.String(), "AccessDenied")
		assert.NotContains(t, rec.Body.String(), "<pre>")
	})

	t.Run("Security headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
		assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	})
}

func TestRoutes_IgnorePath(t *testing.T) {
	srv, requests := newFakeBucket(t)
	cfg := testConfig(srv.URL)
	cfg.Bucket.IgnorePath = true
	e := newTestServer(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/index.html?prefix=docs/", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<a href="?prefix=">../</a>`)
	queries := requests.all()
	require.Len(t, queries, 1)
	assert.Equal(t, "docs/", queries[0].Get("prefix"))
}

func TestRender(t *testing.T) {
	srv, _ := newFakeBucket(t)
	cfg := testConfig(srv.URL)
	client := services.NewListingClient(cfg.Fetch.Timeout)

	t.Run("Full page", func(t *testing.T) {
		var buf bytes.Buffer
		err := render(context.Background(), &buf, cfg, client, &url.URL{Path: "/docs/"}, false, zap.NewNop())
		require.NoError(t, err)

		assert.Contains(t, buf.String(), "<!DOCTYPE html>")
		assert.Contains(t, buf.String(), "<title>Bucket listing</title>")
		assert.Contains(t, buf.String(), "guide.pdf</a>")
	})

	t.Run("Fragment", func(t *testing.T) {
		var buf bytes.Buffer
		err := render(context.Background(), &buf, cfg, client, &url.URL{Path: "/docs/"}, true, zap.NewNop())
		require.NoError(t, err)

		assert.NotContains(t, buf.String(), "<!DOCTYPE html>")
		assert.Contains(t, buf.String(), "<pre>")
		assert.Contains(t, buf.String(), "0 directories, 1 files, 1 pages")
	})

	t.Run("Upstream failure", func(t *testing.T) {
		var buf bytes.Buffer
		err := render(context.Background(), &buf, cfg, client, &url.URL{Path: "/broken/"}, false, zap.NewNop())
		require.ErrorIs(t, err, services.ErrUnexpectedStatus)
		assert.Empty(t, buf.String())
	})
}

func TestRenderCommand(t *testing.T) {
	srv, requests := newFakeBucket(t)

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := fmt.Sprintf(`
logging:
  level: error
bucket:
  url: %s
  title: Public mirror
`, srv.URL)
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"render", "--config", configPath, "--path", "/", "--query", "prefix=docs/"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "<title>Public mirror</title>")
	assert.Contains(t, out.String(), "guide.pdf</a>")
	queries := requests.all()
	require.Len(t, queries, 1)
	assert.Equal(t, "docs/", queries[0].Get("prefix"))
}

func TestRootCommand(t *testing.T) {
	cmd := newRootCmd()

	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "render"}, names)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))

	renderCmd, _, err := cmd.Find([]string{"render"})
	require.NoError(t, err)
	assert.Equal(t, "/", renderCmd.Flags().Lookup("path").DefValue)
	assert.NotNil(t, renderCmd.Flags().Lookup("fragment"))
}
