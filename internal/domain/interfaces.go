package domain

import (
	"context"
	"image"
	"time"
)

// Renderer opens documents for rasterization
type Renderer interface {
	Open(path string) (Document, error)
}

// Document is an opened, page-addressable PDF. Page indexes are 0-based.
type Document interface {
	PageCount() int
	RenderPage(index int, dst *image.RGBA, mode RenderMode) error
	Close() error
}

// Fetcher resolves a document source to a readable local file
type Fetcher interface {
	Fetch(ctx context.Context, source string) (*LocalFile, error)
}

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetLogLevel() string
	GetDownloadDir() string
	GetMaxDownloadSize() int64
	GetDownloadTimeout() time.Duration
	GetViewportSize() (width, height int)
	GetRenderDPI() float64
	GetRenderMode() RenderMode
	GetAllowedOrigins() []string
	GetSupabaseURL() string
	GetSupabaseKey() string
	GetStartDocument() string
	GetStartZoom() int
	GetStartPosition() image.Point
}
