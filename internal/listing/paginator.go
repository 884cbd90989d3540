package listing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/damacus/bucket-listing/internal/config"
	"github.com/damacus/bucket-listing/internal/models"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	// ErrNoMorePages is returned by Next after the final page.
	ErrNoMorePages = errors.New("no more listing pages")

	// ErrMarkerNotAdvancing is returned when a truncated page repeats the
	// marker it was requested with.
	ErrMarkerNotAdvancing = errors.New("listing marker did not advance")

	// ErrTooManyPages is returned when FetchConfig.MaxPages is exceeded.
	ErrTooManyPages = errors.New("listing exceeded maximum page count")
)

// Fetcher retrieves a listing document. Callers close the returned body.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error)
}

// Paginator walks the listing of one prefix page by page. Each page is
// requested only after the previous one has been parsed.
type Paginator struct {
	endpoint string
	prefix   string
	marker   string
	pages    int
	done     bool

	maxPages int
	limiter  *rate.Limiter
	fetcher  Fetcher
	logger   *zap.Logger
}

// NewPaginator prepares pagination for the prefix addressed by location.
func NewPaginator(bucket config.BucketConfig, fetch config.FetchConfig, fetcher Fetcher, location *url.URL, logger *zap.Logger) *Paginator {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Paginator{
		endpoint: bucket.ListingEndpoint(),
		prefix:   ResolvePrefix(bucket, location),
		maxPages: fetch.MaxPages,
		fetcher:  fetcher,
		logger:   logger,
	}
	if fetch.RequestsPerSecond > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(fetch.RequestsPerSecond), 1)
	}
	return p
}

// Prefix returns the resolved prefix being listed.
func (p *Paginator) Prefix() string {
	return p.prefix
}

// Marker returns the marker the next request will carry.
func (p *Paginator) Marker() string {
	return p.marker
}

// HasNext reports whether another page should be requested.
func (p *Paginator) HasNext() bool {
	return !p.done
}

// Next fetches and parses the next page. Any error ends pagination.
func (p *Paginator) Next(ctx context.Context) (*models.ListingPage, error) {
	if p.done {
		return nil, ErrNoMorePages
	}

	page, err := p.next(ctx)
	if err != nil {
		p.done = true
		return nil, err
	}
	return page, nil
}

func (p *Paginator) next(ctx context.Context) (*models.ListingPage, error) {
	if p.maxPages > 0 && p.pages >= p.maxPages {
		return nil, fmt.Errorf("%w (%d)", ErrTooManyPages, p.maxPages)
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	queryURL, err := QueryURL(p.endpoint, p.prefix, p.marker)
	if err != nil {
		return nil, err
	}

	body, err := p.fetcher.Fetch(ctx, queryURL)
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}
	defer body.Close()

	page, err := ParseListing(body)
	if err != nil {
		return nil, err
	}
	p.pages++

	p.logger.Debug("Fetched listing page",
		zap.String("prefix", p.prefix),
		zap.String("marker", p.marker),
		zap.Int("page", p.pages),
		zap.Int("files", len(page.Files)),
		zap.Int("directories", len(page.Directories)),
		zap.Bool("truncated", page.IsTruncated),
	)

	if !page.IsTruncated {
		p.done = true
		return page, nil
	}
	if page.NextMarker == p.marker {
		return nil, fmt.Errorf("%w: %q", ErrMarkerNotAdvancing, p.marker)
	}
	p.marker = page.NextMarker
	return page, nil
}
