package listing

import (
	"context"
	"io"
	"strings"

	"github.com/stretchr/testify/mock"
)

// MockFetcher implements Fetcher for testing
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	args := m.Called(ctx, rawURL)
	if body, ok := args.Get(0).(io.ReadCloser); ok {
		return body, args.Error(1)
	}
	return nil, args.Error(1)
}

func xmlBody(s string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(s))
}
