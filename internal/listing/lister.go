package listing

import (
	"context"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/damacus/bucket-listing/internal/config"
	"github.com/damacus/bucket-listing/internal/models"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// Lister renders complete listings by driving a Paginator to the end.
type Lister struct {
	bucket  config.BucketConfig
	fetch   config.FetchConfig
	fetcher Fetcher
	logger  *zap.Logger
}

// NewLister creates a Lister for the configured bucket.
func NewLister(cfg *config.Config, fetcher Fetcher, logger *zap.Logger) *Lister {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Lister{
		bucket:  cfg.Bucket,
		fetch:   cfg.Fetch,
		fetcher: fetcher,
		logger:  logger,
	}
}

// List fetches every page for location and accumulates the rendered table.
// The first failure aborts the run; no partial listing is returned.
func (l *Lister) List(ctx context.Context, location *url.URL) (*models.Listing, error) {
	p := NewPaginator(l.bucket, l.fetch, l.fetcher, location, l.logger)

	result := &models.Listing{
		Prefix:     p.Prefix(),
		Navigation: BuildBreadcrumbs(l.bucket, p.Prefix()),
	}

	var table strings.Builder
	for p.HasNext() {
		page, err := p.Next(ctx)
		if err != nil {
			return nil, err
		}

		block, err := RenderTable(l.bucket, page, location)
		if err != nil {
			return nil, err
		}
		table.WriteString(string(block))

		result.Pages++
		result.Files += len(page.Files)
		result.Directories += len(page.Directories)
		result.Prefix = page.Prefix
		result.Navigation = BuildBreadcrumbs(l.bucket, page.Prefix)
	}

	result.Table = template.HTML(table.String())
	result.Summary = fmt.Sprintf("%s directories, %s files, %s pages",
		humanize.Comma(int64(result.Directories)),
		humanize.Comma(int64(result.Files)),
		humanize.Comma(int64(result.Pages)),
	)

	l.logger.Info("Rendered listing",
		zap.String("prefix", result.Prefix),
		zap.Int("pages", result.Pages),
		zap.Int("files", result.Files),
		zap.Int("directories", result.Directories),
	)

	return result, nil
}
