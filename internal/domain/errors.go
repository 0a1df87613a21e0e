package domain

import "errors"

// Domain errors
var (
	ErrPageOutOfRange    = errors.New("page out of range")
	ErrInvalidZoom       = errors.New("invalid zoom")
	ErrEmptyDocument     = errors.New("file not loaded: document has no pages")
	ErrLoadSuperseded    = errors.New("load superseded by a newer load")
	ErrViewerClosed      = errors.New("viewer closed")
	ErrViewerNotFound    = errors.New("viewer not found")
	ErrUnsupportedSource = errors.New("unsupported document source")
	ErrDownloadTooLarge  = errors.New("download exceeds maximum size")
	ErrStorageDisabled   = errors.New("storage source not configured")
	ErrInvalidViewport   = errors.New("invalid viewport")
)

// FetchError wraps a failure to bring a remote source to local storage.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return "fetch " + e.Source + ": " + e.Err.Error()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
