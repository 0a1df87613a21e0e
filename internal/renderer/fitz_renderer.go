// Package renderer rasterizes PDF pages with MuPDF through go-fitz.
package renderer

import (
	"fmt"
	"image"
	"math"

	"pdf-viewer/internal/domain"

	"github.com/gen2brain/go-fitz"
)

// pointsPerInch is the PDF user-space unit density
const pointsPerInch = 72.0

// FitzRenderer implements domain.Renderer using go-fitz (requires CGo and MuPDF)
type FitzRenderer struct {
	previewDPI float64
	logger     domain.Logger
}

// NewFitzRenderer creates a renderer. previewDPI caps the resolution used
// for domain.RenderModePreview.
func NewFitzRenderer(previewDPI float64, logger domain.Logger) *FitzRenderer {
	if previewDPI <= 0 {
		previewDPI = pointsPerInch
	}
	return &FitzRenderer{
		previewDPI: previewDPI,
		logger:     logger,
	}
}

// Open implements domain.Renderer
func (r *FitzRenderer) Open(path string) (domain.Document, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open PDF document: %w", err)
	}

	d := &fitzDocument{
		doc:        doc,
		pages:      doc.NumPage(),
		previewDPI: r.previewDPI,
		logger:     r.logger,
	}
	r.logger.Debug("PDF document opened", "path", path, "pages", d.pages)
	return d, nil
}

type fitzDocument struct {
	doc        *fitz.Document
	pages      int
	previewDPI float64
	logger     domain.Logger
}

func (d *fitzDocument) PageCount() int {
	return d.pages
}

// RenderPage rasterizes page index at a resolution covering dst, then
// scales the page over all of dst.
func (d *fitzDocument) RenderPage(index int, dst *image.RGBA, mode domain.RenderMode) error {
	if index < 0 || index >= d.pages {
		return fmt.Errorf("%w: index %d of %d", domain.ErrPageOutOfRange, index, d.pages)
	}

	bounds, err := d.doc.Bound(index)
	if err != nil {
		return fmt.Errorf("unable to read bounds of page %d: %w", index, err)
	}

	dpi := coverDPI(bounds.Size(), dst.Bounds().Size())
	if mode == domain.RenderModePreview {
		dpi = math.Min(dpi, d.previewDPI)
	}

	img, err := d.doc.ImageDPI(index, dpi)
	if err != nil {
		return fmt.Errorf("unable to render page %d: %w", index, err)
	}

	fillInto(dst, img, interpolatorFor(mode))
	return nil
}

func (d *fitzDocument) Close() error {
	return d.doc.Close()
}

// coverDPI returns the lowest DPI at which a page of the given point size
// is at least as large as target on both axes.
func coverDPI(page, target image.Point) float64 {
	if page.X <= 0 || page.Y <= 0 || target.X <= 0 || target.Y <= 0 {
		return pointsPerInch
	}
	scale := math.Max(float64(target.X)/float64(page.X), float64(target.Y)/float64(page.Y))
	return pointsPerInch * scale
}
