package service

import (
	"context"
	"fmt"
	"image"
	"sync"

	"pdf-viewer/internal/domain"
	"pdf-viewer/internal/viewer"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
)

// frameCacheBytes bounds the pixel memory held by cached frames
const frameCacheBytes = 256 << 20

// frameCacheSize bounds the number of cached frames
const frameCacheSize = 64

type frameKey struct {
	id       string
	revision uint64
}

type cachedFrame struct {
	image *image.RGBA
	drawn bool
}

// Session is a viewer together with the viewport it draws into
type Session struct {
	ID       string
	Viewport image.Point
	View     *viewer.View
}

// ViewerService owns the viewers created by clients
type ViewerService struct {
	renderer domain.Renderer
	fetcher  domain.Fetcher
	logger   domain.Logger
	viewport image.Point
	mode     domain.RenderMode

	mu       sync.RWMutex
	sessions map[string]*Session

	// framesMu serializes cache updates with the byte accounting
	framesMu    sync.Mutex
	frames      *lru.Cache[frameKey, cachedFrame]
	frameBytes  int
	maxFrameMem int
}

// Option configures a ViewerService
type Option func(*ViewerService)

// WithRenderMode sets the quality every new viewer draws with
func WithRenderMode(mode domain.RenderMode) Option {
	return func(s *ViewerService) {
		s.mode = mode
	}
}

// WithFrameCacheBytes bounds the memory held by cached frames
func WithFrameCacheBytes(n int) Option {
	return func(s *ViewerService) {
		s.maxFrameMem = n
	}
}

// NewViewerService creates a service whose viewers default to viewport
func NewViewerService(renderer domain.Renderer, fetcher domain.Fetcher, viewport image.Point, logger domain.Logger, opts ...Option) *ViewerService {
	s := &ViewerService{
		renderer:    renderer,
		fetcher:     fetcher,
		logger:      logger,
		viewport:    viewport,
		mode:        domain.RenderModeDisplay,
		sessions:    make(map[string]*Session),
		maxFrameMem: frameCacheBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.frames, _ = lru.NewWithEvict[frameKey, cachedFrame](frameCacheSize, func(_ frameKey, f cachedFrame) {
		s.frameBytes -= len(f.image.Pix)
	})
	return s
}

// Create opens a new, empty viewer. Zero dimensions fall back to the
// default viewport.
func (s *ViewerService) Create(width, height int) (*Session, error) {
	viewport := image.Pt(width, height)
	if width == 0 {
		viewport.X = s.viewport.X
	}
	if height == 0 {
		viewport.Y = s.viewport.Y
	}
	if err := domain.CheckViewport(viewport); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	session := &Session{
		ID:       id,
		Viewport: viewport,
	}
	session.View = viewer.New(s.renderer, s.fetcher, s.logger,
		viewer.WithRenderMode(s.mode),
		viewer.WithInvalidate(func() {
			s.logger.Debug("Viewer invalidated", "viewer_id", id)
		}),
	)

	s.mu.Lock()
	s.sessions[id] = session
	s.mu.Unlock()

	s.logger.Info("Viewer created", "viewer_id", id, "width", viewport.X, "height", viewport.Y)
	return session, nil
}

// Get returns the session with the given id
func (s *ViewerService) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrViewerNotFound, id)
	}
	return session, nil
}

// Delete closes and forgets a viewer
func (s *ViewerService) Delete(id string) error {
	s.mu.Lock()
	session, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrViewerNotFound, id)
	}
	s.forgetFrames(id)
	s.logger.Info("Viewer closed", "viewer_id", id)
	return session.View.Close()
}

// Count returns the number of open viewers
func (s *ViewerService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Load starts loading source into a viewer. With wait set it blocks until
// the load finishes or ctx ends.
func (s *ViewerService) Load(ctx context.Context, id, source string, wait bool) (domain.LoadResult, error) {
	session, err := s.Get(id)
	if err != nil {
		return domain.LoadResult{}, err
	}

	// Background loads outlive the request that started them.
	loadCtx := context.WithoutCancel(ctx)
	results := session.View.Load(loadCtx, source)
	if !wait {
		return domain.LoadResult{Source: source}, nil
	}

	select {
	case res := <-results:
		return res, res.Err
	case <-ctx.Done():
		return domain.LoadResult{Source: source}, ctx.Err()
	}
}

// Frame draws the viewer's current page into an image of its viewport.
// The second result reports whether a page was drawn. Frames are cached
// per viewer revision; callers must not modify the returned image.
func (s *ViewerService) Frame(id string) (*image.RGBA, bool, error) {
	session, err := s.Get(id)
	if err != nil {
		return nil, false, err
	}

	key := frameKey{id: id, revision: session.View.State().Revision}
	s.framesMu.Lock()
	cached, ok := s.frames.Get(key)
	s.framesMu.Unlock()
	if ok {
		return cached.image, cached.drawn, nil
	}

	frame := image.NewRGBA(image.Rectangle{Max: session.Viewport})
	drawn, err := session.View.Draw(frame)
	if err != nil {
		return nil, false, err
	}
	// A change during the draw leaves the frame uncached.
	if session.View.State().Revision == key.revision {
		s.cacheFrame(key, cachedFrame{image: frame, drawn: drawn})
	}
	return frame, drawn, nil
}

// cacheFrame adds f, evicting the oldest frames until the cache fits in
// maxFrameMem. Frames larger than the budget are not cached.
func (s *ViewerService) cacheFrame(key frameKey, f cachedFrame) {
	size := len(f.image.Pix)
	if size > s.maxFrameMem {
		return
	}

	s.framesMu.Lock()
	defer s.framesMu.Unlock()
	if s.frames.Contains(key) {
		return
	}
	for s.frameBytes+size > s.maxFrameMem {
		if _, _, ok := s.frames.RemoveOldest(); !ok {
			break
		}
	}
	s.frameBytes += size
	s.frames.Add(key, f)
}

func (s *ViewerService) forgetFrames(id string) {
	s.framesMu.Lock()
	defer s.framesMu.Unlock()
	for _, key := range s.frames.Keys() {
		if key.id == id {
			s.frames.Remove(key)
		}
	}
}

// CloseAll closes every viewer concurrently
func (s *ViewerService) CloseAll() error {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	s.framesMu.Lock()
	s.frames.Purge()
	s.framesMu.Unlock()

	var g errgroup.Group
	for _, session := range sessions {
		g.Go(session.View.Close)
	}
	return g.Wait()
}
