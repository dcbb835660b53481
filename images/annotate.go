package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"

	"golang.org/x/image/draw"

	"github.com/soocke/pixel-match-go/domain/match"
)

var boxColor = color.RGBA{R: 255, A: 255}

// Annotate returns a copy of img with a one-pixel red outline around every
// tw x th match.
func Annotate(img image.Image, results []match.Result, tw, th int) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	for _, r := range results {
		outline(out, image.Rect(r.X, r.Y, r.X+tw, r.Y+th))
	}
	return out
}

func outline(dst *image.RGBA, r image.Rectangle) {
	r = r.Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		dst.SetRGBA(x, r.Min.Y, boxColor)
		dst.SetRGBA(x, r.Max.Y-1, boxColor)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		dst.SetRGBA(r.Min.X, y, boxColor)
		dst.SetRGBA(r.Max.X-1, y, boxColor)
	}
}

// EncodePNG encodes img as PNG. Encoding errors yield an empty slice.
func EncodePNG(img image.Image) []byte {
	if img == nil {
		return nil
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}
