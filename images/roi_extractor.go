package images

import (
	"errors"
	"image"

	"golang.org/x/image/draw"
)

// ExtractROI crops a square of side size centred at (cx, cy), clamped to the
// frame and at least 1x1. The rectangle is returned in frame coordinates.
func ExtractROI(frame image.Image, cx, cy, size int) (*image.RGBA, image.Rectangle, error) {
	if frame == nil {
		return nil, image.Rectangle{}, errors.New("nil frame")
	}
	size = max(size, 1)
	b := frame.Bounds()
	x0 := max(cx-size/2, b.Min.X)
	y0 := max(cy-size/2, b.Min.Y)
	w := max(min(size, b.Max.X-x0), 1)
	h := max(min(size, b.Max.Y-y0), 1)
	return ExtractRect(frame, image.Rect(x0, y0, x0+w, y0+h))
}

// ExtractRect copies the part of src inside r (clamped to src bounds) into a
// new RGBA image with its origin at (0, 0).
func ExtractRect(src image.Image, r image.Rectangle) (*image.RGBA, image.Rectangle, error) {
	if src == nil {
		return nil, image.Rectangle{}, errors.New("nil frame")
	}
	r = r.Intersect(src.Bounds())
	if r.Empty() {
		return nil, r, errors.New("empty region")
	}
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), src, r.Min, draw.Src)
	return out, r, nil
}
