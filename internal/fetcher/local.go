package fetcher

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"pdf-viewer/internal/domain"
)

// LocalFetcher resolves plain paths and file:// URLs
type LocalFetcher struct{}

// NewLocalFetcher creates a local file fetcher
func NewLocalFetcher() *LocalFetcher {
	return &LocalFetcher{}
}

// Fetch implements domain.Fetcher. The returned file is never temporary.
func (f *LocalFetcher) Fetch(ctx context.Context, source string) (*domain.LocalFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := source
	if strings.HasPrefix(source, "file://") {
		u, err := url.Parse(source)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedSource, source)
		}
		path = u.Path
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrUnsupportedSource, path)
	}

	return &domain.LocalFile{Path: path, Size: info.Size()}, nil
}
