package services

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrUnexpectedStatus is returned when the listing endpoint answers with a non-2xx status.
var ErrUnexpectedStatus = errors.New("unexpected listing response status")

// maxErrorBody bounds how much of an error response is read
const maxErrorBody = 64 << 10

// errorResponse is the provider's XML error document
type errorResponse struct {
	XMLName xml.Name `xml:"Error"`
	Code    string   `xml:"Code"`
	Message string   `xml:"Message"`
}

// ListingClient fetches listing documents from the bucket endpoint over
// plain, unauthenticated HTTP.
type ListingClient struct {
	client *http.Client
}

// NewListingClient creates a client whose requests time out after timeout.
func NewListingClient(timeout time.Duration) *ListingClient {
	return &ListingClient{client: &http.Client{Timeout: timeout}}
}

// NewListingClientWithHTTPClient wraps an existing http.Client
func NewListingClientWithHTTPClient(client *http.Client) *ListingClient {
	return &ListingClient{client: client}
}

// Fetch issues a GET for rawURL and returns the response body on success.
func (c *ListingClient) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build listing request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, statusError(resp)
	}

	return resp.Body, nil
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var e errorResponse
	if err := xml.Unmarshal(body, &e); err == nil && e.Code != "" {
		return fmt.Errorf("%w: %s: %s: %s", ErrUnexpectedStatus, resp.Status, e.Code, e.Message)
	}
	return fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
}
