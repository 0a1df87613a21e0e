package viewer

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"sync"

	"pdf-viewer/internal/domain"
)

type mockLogger struct{}

func (mockLogger) Info(msg string, fields ...interface{})             {}
func (mockLogger) Error(msg string, err error, fields ...interface{}) {}
func (mockLogger) Debug(msg string, fields ...interface{})            {}
func (mockLogger) Warn(msg string, fields ...interface{})             {}

// fakeDocument fills every rendered bitmap with a gradient so that the
// composited offset can be checked pixel by pixel.
type fakeDocument struct {
	pages int

	mu      sync.Mutex
	renders []renderCall
	closed  bool
}

type renderCall struct {
	index int
	size  image.Point
	mode  domain.RenderMode
}

func (d *fakeDocument) PageCount() int {
	return d.pages
}

func (d *fakeDocument) RenderPage(index int, dst *image.RGBA, mode domain.RenderMode) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return errors.New("render on closed document")
	}
	d.renders = append(d.renders, renderCall{index: index, size: dst.Bounds().Size(), mode: mode})
	b := dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.SetRGBA(x, y, pixelAt(x, y))
		}
	}
	return nil
}

func (d *fakeDocument) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *fakeDocument) renderCalls() []renderCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]renderCall(nil), d.renders...)
}

func (d *fakeDocument) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func pixelAt(x, y int) color.RGBA {
	return color.RGBA{R: uint8(x), G: uint8(y), B: 0x80, A: 0xff}
}

// fakeRenderer hands out documents keyed by path
type fakeRenderer struct {
	mu     sync.Mutex
	pages  map[string]int
	opened map[string][]*fakeDocument
}

func newFakeRenderer(pages map[string]int) *fakeRenderer {
	return &fakeRenderer{pages: pages, opened: make(map[string][]*fakeDocument)}
}

func (r *fakeRenderer) Open(path string) (domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.pages[filepath.Base(path)]
	if !ok {
		return nil, os.ErrNotExist
	}
	doc := &fakeDocument{pages: n}
	r.opened[filepath.Base(path)] = append(r.opened[filepath.Base(path)], doc)
	return doc, nil
}

func (r *fakeRenderer) last(name string) *fakeDocument {
	r.mu.Lock()
	defer r.mu.Unlock()
	docs := r.opened[name]
	if len(docs) == 0 {
		return nil
	}
	return docs[len(docs)-1]
}

// fakeFetcher maps sources to local files. Sources listed in block wait for
// the channel to close or the context to end.
type fakeFetcher struct {
	dir   string
	block map[string]chan struct{}
	err   map[string]error
}

func (f *fakeFetcher) Fetch(ctx context.Context, source string) (*domain.LocalFile, error) {
	if ch, ok := f.block[source]; ok {
		select {
		case <-ch:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := f.err[source]; err != nil {
		return nil, err
	}
	path := filepath.Join(f.dir, filepath.Base(source))
	if err := os.WriteFile(path, []byte("%PDF"), 0o600); err != nil {
		return nil, err
	}
	return &domain.LocalFile{Path: path, Temporary: true}, nil
}

func newSurface(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.Black, image.Point{}, draw.Src)
	return img
}
