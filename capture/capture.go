package capture

import (
	"fmt"
	"image"

	"github.com/vova616/screenshot"
)

// Grab returns a capture of the primary screen copied into a pooled frame.
// Call RecycleFrame when done with it.
func Grab() (*image.RGBA, error) {
	img, err := screenshot.CaptureScreen()
	if err != nil {
		return nil, fmt.Errorf("capture screen: %w", err)
	}
	return pooledCopy(img), nil
}

// GrabSelection captures only the given screen rectangle. An empty rectangle
// falls back to the full screen.
func GrabSelection(area image.Rectangle) (*image.RGBA, error) {
	if area.Empty() {
		return Grab()
	}
	img, err := screenshot.CaptureRect(area)
	if err != nil {
		return nil, fmt.Errorf("capture %v: %w", area, err)
	}
	return pooledCopy(img), nil
}

// ScreenBounds reports the rectangle of the primary screen.
func ScreenBounds() (image.Rectangle, error) {
	return screenshot.ScreenRect()
}

// pooledCopy moves src into a reusable buffer with its origin at (0, 0).
func pooledCopy(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	dst := acquireFrame(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		so := src.PixOffset(b.Min.X, b.Min.Y+y)
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+b.Dx()*4], src.Pix[so:so+b.Dx()*4])
	}
	return dst
}
