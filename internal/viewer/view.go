// Package viewer holds the state of a single PDF view: the open document,
// the current page, zoom and pan, and draws the current page onto a surface.
package viewer

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"sync"
	"time"

	"pdf-viewer/internal/domain"
	"pdf-viewer/internal/fetcher"

	xdraw "golang.org/x/image/draw"
)

// Option configures a View
type Option func(*View)

// WithInvalidate registers fn to be called whenever the view needs a redraw.
// fn is called without the view lock held and may call back into the view.
func WithInvalidate(fn func()) Option {
	return func(v *View) {
		v.invalidate = fn
	}
}

// WithRenderMode sets the quality used when drawing
func WithRenderMode(mode domain.RenderMode) Option {
	return func(v *View) {
		v.mode = mode
	}
}

// View is a pannable, zoomable view of one page of a PDF document.
// All state is guarded by mu; a background load only touches it when
// committing its result.
type View struct {
	renderer   domain.Renderer
	fetcher    domain.Fetcher
	logger     domain.Logger
	invalidate func()
	mode       domain.RenderMode

	mu         sync.Mutex
	doc        domain.Document
	file       *domain.LocalFile
	source     string
	page       int
	pageCount  int
	zoom       int
	position   image.Point
	status     domain.LoadStatus
	lastErr    string
	loadedAt   time.Time
	revision   uint64
	generation uint64
	cancelLoad context.CancelCauseFunc
	closed     bool

	loads sync.WaitGroup
}

// New creates an empty view
func New(renderer domain.Renderer, docFetcher domain.Fetcher, logger domain.Logger, opts ...Option) *View {
	v := &View{
		renderer:   renderer,
		fetcher:    docFetcher,
		logger:     logger,
		invalidate: func() {},
		mode:       domain.RenderModeDisplay,
		zoom:       domain.MinZoom,
		status:     domain.LoadStatusIdle,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Load fetches source in the background and opens it. The result is sent
// on the returned channel exactly once, then the channel is closed.
// A later Load, LoadFile or Close cancels this one; it then reports
// domain.ErrLoadSuperseded or domain.ErrViewerClosed.
func (v *View) Load(ctx context.Context, source string) <-chan domain.LoadResult {
	results := make(chan domain.LoadResult, 1)

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		results <- domain.LoadResult{Source: source, Err: domain.ErrViewerClosed}
		close(results)
		return results
	}
	loadCtx, cancel := context.WithCancelCause(ctx)
	gen := v.beginLoadLocked(source, cancel)
	v.loads.Add(1)
	v.mu.Unlock()

	go func() {
		defer v.loads.Done()
		defer cancel(nil)

		count, err := v.fetchAndOpen(loadCtx, gen, source)
		if err != nil {
			v.logger.Error("Failed to load document", err, "source", source)
		} else {
			v.logger.Info("Document loaded", "source", source, "pages", count)
		}
		results <- domain.LoadResult{Source: source, PageCount: count, Err: err}
		close(results)
	}()

	return results
}

// LoadFile opens a local file synchronously, superseding any in-flight load.
// A document with no pages is rejected and the current one is kept.
func (v *View) LoadFile(path string) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return domain.ErrViewerClosed
	}
	gen := v.beginLoadLocked(path, nil)
	v.mu.Unlock()

	doc, err := v.open(path)
	if err != nil {
		v.failLoad(gen, err)
		return err
	}
	count, err := v.commit(gen, path, &domain.LocalFile{Path: path}, doc)
	if err != nil {
		return err
	}
	v.logger.Info("Document loaded", "source", path, "pages", count)
	return nil
}

// beginLoadLocked cancels any in-flight load and starts a new generation
func (v *View) beginLoadLocked(source string, cancel context.CancelCauseFunc) uint64 {
	if v.cancelLoad != nil {
		v.cancelLoad(domain.ErrLoadSuperseded)
	}
	v.cancelLoad = cancel
	v.generation++
	v.status = domain.LoadStatusLoading
	v.lastErr = ""
	v.logger.Debug("Load started", "source", source, "generation", v.generation)
	return v.generation
}

func (v *View) fetchAndOpen(ctx context.Context, gen uint64, source string) (int, error) {
	file, err := v.fetcher.Fetch(ctx, source)
	if err != nil {
		err = causeOf(ctx, err)
		v.failLoad(gen, err)
		return 0, err
	}

	doc, err := v.open(file.Path)
	if err == nil && ctx.Err() != nil {
		doc.Close()
		err = causeOf(ctx, ctx.Err())
	}
	if err != nil {
		v.releaseFile(file)
		v.failLoad(gen, err)
		return 0, err
	}

	return v.commit(gen, source, file, doc)
}

// causeOf prefers the cancellation cause of ctx over err once ctx is done
func causeOf(ctx context.Context, err error) error {
	if ctx.Err() == nil {
		return err
	}
	if cause := context.Cause(ctx); cause != nil {
		return cause
	}
	return err
}

func (v *View) open(path string) (domain.Document, error) {
	doc, err := v.renderer.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	if doc.PageCount() <= 0 {
		doc.Close()
		return nil, fmt.Errorf("%s: %w", path, domain.ErrEmptyDocument)
	}
	return doc, nil
}

// commit installs doc as the current document if gen is still the latest
// load, releasing the previous document first.
func (v *View) commit(gen uint64, source string, file *domain.LocalFile, doc domain.Document) (int, error) {
	v.mu.Lock()
	if v.closed || gen != v.generation {
		err := domain.ErrLoadSuperseded
		if v.closed {
			err = domain.ErrViewerClosed
		}
		v.mu.Unlock()
		doc.Close()
		v.releaseFile(file)
		return 0, err
	}

	v.releaseLocked()
	v.doc = doc
	v.file = file
	v.source = source
	v.pageCount = doc.PageCount()
	v.page = 1
	v.status = domain.LoadStatusReady
	v.lastErr = ""
	v.loadedAt = time.Now()
	v.cancelLoad = nil
	v.revision++
	count := v.pageCount
	v.mu.Unlock()

	v.invalidate()
	return count, nil
}

func (v *View) failLoad(gen uint64, err error) {
	v.mu.Lock()
	if gen != v.generation || v.closed {
		v.mu.Unlock()
		return
	}
	v.status = domain.LoadStatusFailed
	v.lastErr = err.Error()
	v.cancelLoad = nil
	v.revision++
	v.mu.Unlock()

	v.invalidate()
}

// releaseLocked closes the current document and removes its file if the
// view owns it.
func (v *View) releaseLocked() {
	if v.doc != nil {
		if err := v.doc.Close(); err != nil {
			v.logger.Warn("Failed to close document", "source", v.source, "error", err)
		}
		v.doc = nil
	}
	v.releaseFile(v.file)
	v.file = nil
}

func (v *View) releaseFile(file *domain.LocalFile) {
	if err := fetcher.Release(file); err != nil {
		v.logger.Warn("Failed to remove temporary file", "path", file.Path, "error", err)
	}
}

// SetPage moves to page n, which must be within [1, PageCount()]
func (v *View) SetPage(n int) error {
	v.mu.Lock()
	if n < 1 || n > v.pageCount {
		count := v.pageCount
		v.mu.Unlock()
		return fmt.Errorf("%w: page %d not in [1, %d]", domain.ErrPageOutOfRange, n, count)
	}
	v.page = n
	v.revision++
	v.mu.Unlock()

	v.invalidate()
	return nil
}

// Next advances one page, stopping at the last page
func (v *View) Next() {
	v.step(1)
}

// Previous goes back one page, stopping at the first page
func (v *View) Previous() {
	v.step(-1)
}

func (v *View) step(delta int) {
	v.mu.Lock()
	next := v.page + delta
	if v.pageCount == 0 || next < 1 || next > v.pageCount {
		v.mu.Unlock()
		return
	}
	v.page = next
	v.revision++
	v.mu.Unlock()

	v.invalidate()
}

// Page returns the current 1-based page, or 0 if nothing is loaded
func (v *View) Page() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.page
}

// PageCount returns the number of pages of the loaded document
func (v *View) PageCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pageCount
}

// SetZoom sets the zoom factor, which must be within [MinZoom, MaxZoom]
func (v *View) SetZoom(zoom int) error {
	if zoom < domain.MinZoom || zoom > domain.MaxZoom {
		return fmt.Errorf("%w: %d not in [%d, %d]", domain.ErrInvalidZoom, zoom, domain.MinZoom, domain.MaxZoom)
	}

	v.mu.Lock()
	v.zoom = zoom
	v.revision++
	v.mu.Unlock()

	v.invalidate()
	return nil
}

// Zoom returns the zoom factor
func (v *View) Zoom() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.zoom
}

// SetPosition sets the pan offset
func (v *View) SetPosition(p image.Point) {
	v.mu.Lock()
	v.position = p
	v.revision++
	v.mu.Unlock()

	v.invalidate()
}

// Position returns the pan offset
func (v *View) Position() image.Point {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.position
}

// Draw rasterizes the current page into a bitmap zoom times the size of
// dst and composites it onto dst shifted by the negative pan position.
// It reports whether anything was drawn; with no document it is a no-op.
func (v *View) Draw(dst draw.Image) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.doc == nil || v.page < 1 || v.page > v.pageCount {
		return false, nil
	}
	viewport := dst.Bounds()
	if viewport.Empty() {
		return false, nil
	}

	bitmap := image.NewRGBA(image.Rect(0, 0, viewport.Dx()*v.zoom, viewport.Dy()*v.zoom))
	if err := v.doc.RenderPage(v.page-1, bitmap, v.mode); err != nil {
		return false, fmt.Errorf("failed to render page %d: %w", v.page, err)
	}

	xdraw.Copy(dst, viewport.Min.Sub(v.position), bitmap, bitmap.Bounds(), xdraw.Over, nil)
	return true, nil
}

// State returns a snapshot of the view
func (v *View) State() domain.ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()

	s := domain.ViewState{
		Source:    v.source,
		Page:      v.page,
		PageCount: v.pageCount,
		Zoom:      v.zoom,
		Position:  v.position,
		Status:    v.status,
		LastError: v.lastErr,
		Revision:  v.revision,
	}
	if !v.loadedAt.IsZero() {
		loadedAt := v.loadedAt
		s.LoadedAt = &loadedAt
	}
	return s
}

// Close cancels any in-flight load, releases the document and waits for
// background work to finish. It is safe to call more than once.
func (v *View) Close() error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil
	}
	v.closed = true
	if v.cancelLoad != nil {
		v.cancelLoad(domain.ErrViewerClosed)
		v.cancelLoad = nil
	}
	v.releaseLocked()
	v.page = 0
	v.pageCount = 0
	v.status = domain.LoadStatusIdle
	v.revision++
	v.mu.Unlock()

	v.loads.Wait()
	return nil
}
