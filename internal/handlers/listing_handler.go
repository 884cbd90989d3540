package handlers

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"

	"github.com/damacus/bucket-listing/internal/config"
	"github.com/damacus/bucket-listing/internal/listing"
	"github.com/damacus/bucket-listing/internal/models"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ListingService produces a complete listing for a browser location
type ListingService interface {
	List(ctx context.Context, location *url.URL) (*models.Listing, error)
}

type ListingHandler struct {
	service ListingService
	bucket  config.BucketConfig
}

func NewListingHandler(service ListingService, bucket config.BucketConfig) *ListingHandler {
	return &ListingHandler{service: service, bucket: bucket}
}

// ShowListing renders the directory listing for the requested path or prefix.
// Failures replace the listing with an inline error message.
func (h *ListingHandler) ShowListing(c echo.Context) error {
	req := c.Request()

	result, err := h.service.List(req.Context(), req.URL)
	data := PageData(h.bucket, req.URL, req.Host, result, err)
	if err != nil {
		RequestLogger(c).Warn("Listing failed", zap.String("uri", req.URL.RequestURI()), zap.Error(err))
		return c.Render(ErrorStatus(err), "listing", data)
	}

	return c.Render(http.StatusOK, "listing", data)
}

// PageData builds the template data for a listing page
func PageData(bucket config.BucketConfig, location *url.URL, host string, result *models.Listing, err error) map[string]interface{} {
	data := map[string]interface{}{
		"Title": PageTitle(bucket, host),
	}

	if err != nil {
		data["Navigation"] = listing.BuildBreadcrumbs(bucket, listing.ResolvePrefix(bucket, location))
		data["Error"] = err.Error()
		return data
	}

	data["Navigation"] = result.Navigation
	data["Listing"] = result
	return data
}

// PageTitle returns the configured title, or the request's host name when
// AutoTitle is set
func PageTitle(bucket config.BucketConfig, host string) string {
	if !bucket.AutoTitle || host == "" {
		return bucket.Title
	}
	if name, _, err := net.SplitHostPort(host); err == nil {
		return name
	}
	return host
}

// ErrorStatus maps a listing failure to the response status
func ErrorStatus(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}
