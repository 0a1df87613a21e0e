package renderer

import (
	"image"
	"image/draw"

	"pdf-viewer/internal/domain"

	xdraw "golang.org/x/image/draw"
)

func interpolatorFor(mode domain.RenderMode) xdraw.Interpolator {
	if mode == domain.RenderModePreview {
		return xdraw.ApproxBiLinear
	}
	return xdraw.CatmullRom
}

// fillInto maps the bounds of src onto the whole of dst. The page is
// stretched to the bitmap, so its aspect ratio follows dst.
func fillInto(dst *image.RGBA, src image.Image, interp xdraw.Interpolator) {
	db := dst.Bounds()
	draw.Draw(dst, db, image.White, image.Point{}, draw.Src)

	sb := src.Bounds()
	if sb.Empty() || db.Empty() {
		return
	}
	if db.Size() == sb.Size() {
		draw.Draw(dst, db, src, sb.Min, draw.Over)
		return
	}
	interp.Scale(dst, db, src, sb, xdraw.Over, nil)
}
