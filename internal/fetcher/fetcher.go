// Package fetcher brings document sources (URLs, storage objects, local
// paths) to a readable file on local storage.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"pdf-viewer/internal/domain"
)

const tempPattern = "tmp_*.pdf"

// MultiFetcher dispatches a source to the fetcher registered for its scheme.
// Sources without a scheme are local paths.
type MultiFetcher struct {
	local   domain.Fetcher
	remote  domain.Fetcher
	storage domain.Fetcher
}

// NewMultiFetcher creates a dispatching fetcher. storage may be nil, in which
// case storage:// sources fail with domain.ErrStorageDisabled.
func NewMultiFetcher(local, remote, storage domain.Fetcher) *MultiFetcher {
	return &MultiFetcher{
		local:   local,
		remote:  remote,
		storage: storage,
	}
}

// Fetch implements domain.Fetcher
func (m *MultiFetcher) Fetch(ctx context.Context, source string) (*domain.LocalFile, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("%w: empty source", domain.ErrUnsupportedSource)
	}

	switch schemeOf(source) {
	case "", "file":
		return m.local.Fetch(ctx, source)
	case "http", "https":
		return m.remote.Fetch(ctx, source)
	case "storage":
		if m.storage == nil {
			return nil, domain.ErrStorageDisabled
		}
		return m.storage.Fetch(ctx, source)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedSource, source)
	}
}

func schemeOf(source string) string {
	if !strings.Contains(source, "://") {
		return ""
	}
	u, err := url.Parse(source)
	if err != nil {
		return "invalid"
	}
	return strings.ToLower(u.Scheme)
}

// writeTemp copies r into a new temporary file under dir. The copy is capped
// at maxSize bytes when maxSize > 0; an oversized body removes the file.
func writeTemp(dir string, r io.Reader, maxSize int64) (*domain.LocalFile, error) {
	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file: %w", err)
	}

	src := r
	if maxSize > 0 {
		src = io.LimitReader(r, maxSize+1)
	}
	n, copyErr := io.Copy(tmp, src)
	closeErr := tmp.Close()

	switch {
	case copyErr != nil:
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to write temporary file: %w", copyErr)
	case closeErr != nil:
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to close temporary file: %w", closeErr)
	case maxSize > 0 && n > maxSize:
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("%w: limit %d bytes", domain.ErrDownloadTooLarge, maxSize)
	}

	return &domain.LocalFile{Path: tmp.Name(), Temporary: true, Size: n}, nil
}

// Release removes f from disk if it is a temporary file
func Release(f *domain.LocalFile) error {
	if f == nil || !f.Temporary {
		return nil
	}
	if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
