package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"pdf-viewer/internal/domain"
)

// HTTPFetcher downloads http(s) sources into temporary files
type HTTPFetcher struct {
	client  *http.Client
	dir     string
	maxSize int64
	timeout time.Duration
	logger  domain.Logger
}

// NewHTTPFetcher creates a fetcher writing into dir. A zero maxSize or
// timeout disables the respective limit.
func NewHTTPFetcher(client *http.Client, dir string, maxSize int64, timeout time.Duration, logger domain.Logger) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{
		client:  client,
		dir:     dir,
		maxSize: maxSize,
		timeout: timeout,
		logger:  logger,
	}
}

// Fetch implements domain.Fetcher
func (f *HTTPFetcher) Fetch(ctx context.Context, source string) (*domain.LocalFile, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnsupportedSource, err)
	}
	req.Header.Set("Accept", "application/pdf, */*")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &domain.FetchError{Source: source, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.FetchError{Source: source, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}
	if f.maxSize > 0 && resp.ContentLength > f.maxSize {
		return nil, fmt.Errorf("%w: %d bytes announced, limit %d", domain.ErrDownloadTooLarge, resp.ContentLength, f.maxSize)
	}

	file, err := writeTemp(f.dir, resp.Body, f.maxSize)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &domain.FetchError{Source: source, Err: ctxErr}
		}
		return nil, err
	}

	f.logger.Debug("Document downloaded", "source", source, "bytes", file.Size, "path", file.Path, "elapsed", time.Since(start))
	return file, nil
}
