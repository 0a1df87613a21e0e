package domain

import (
	"fmt"
	"image"
	"strings"
	"time"
)

// Zoom bounds, inclusive
const (
	MinZoom = 1
	MaxZoom = 5
)

// MaxBitmapSide bounds either side of a zoomed page bitmap
const MaxBitmapSide = 16384

// MaxViewportSide is the largest viewport side whose bitmap stays within
// MaxBitmapSide at MaxZoom.
const MaxViewportSide = MaxBitmapSide / MaxZoom

// CheckViewport rejects viewports with a negative side or one whose zoomed
// bitmap would exceed MaxBitmapSide.
func CheckViewport(size image.Point) error {
	if size.X < 0 || size.Y < 0 {
		return fmt.Errorf("%w: viewport %dx%d", ErrInvalidViewport, size.X, size.Y)
	}
	if size.X > MaxViewportSide || size.Y > MaxViewportSide {
		return fmt.Errorf("%w: viewport %dx%d exceeds %d pixels at maximum zoom", ErrInvalidViewport, size.X, size.Y, MaxBitmapSide)
	}
	return nil
}

// RenderMode selects the quality used to rasterize a page
type RenderMode string

const (
	RenderModeDisplay RenderMode = "display"
	RenderModePreview RenderMode = "preview"
)

// ParseRenderMode accepts "display" or "preview", case-insensitively
func ParseRenderMode(s string) (RenderMode, error) {
	switch mode := RenderMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case RenderModeDisplay, RenderModePreview:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown render mode %q", s)
	}
}

// LoadStatus is the lifecycle of the most recent load request
type LoadStatus string

const (
	LoadStatusIdle    LoadStatus = "idle"
	LoadStatusLoading LoadStatus = "loading"
	LoadStatusReady   LoadStatus = "ready"
	LoadStatusFailed  LoadStatus = "failed"
)

// LocalFile is a fetched document on local storage. Temporary files are
// owned by whoever fetched them and must be removed once released.
type LocalFile struct {
	Path      string
	Temporary bool
	Size      int64
}

// LoadResult is delivered once per load request
type LoadResult struct {
	Source    string
	PageCount int
	Err       error
}

// ViewState is a point-in-time snapshot of a viewer
type ViewState struct {
	Source    string      `json:"source,omitempty"`
	Page      int         `json:"page"`
	PageCount int         `json:"page_count"`
	Zoom      int         `json:"zoom"`
	Position  image.Point `json:"position"`
	Status    LoadStatus  `json:"status"`
	LastError string      `json:"last_error,omitempty"`
	Revision  uint64      `json:"revision"`
	LoadedAt  *time.Time  `json:"loaded_at,omitempty"`
}
