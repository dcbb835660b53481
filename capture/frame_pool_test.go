package capture

import (
	"image"
	"testing"
)

func TestAcquireFrame_SizesBuffer(t *testing.T) {
	f := acquireFrame(image.Rect(0, 0, 7, 3))
	if len(f.Pix) != 7*3*4 || f.Stride != 28 {
		t.Fatalf("unexpected frame layout len=%d stride=%d", len(f.Pix), f.Stride)
	}
	RecycleFrame(f)
	g := acquireFrame(image.Rect(0, 0, 2, 2))
	if len(g.Pix) != 16 || g.Stride != 8 || g.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Fatalf("reused frame not resized: len=%d stride=%d", len(g.Pix), g.Stride)
	}
}

func TestAcquireFrame_EmptyRect(t *testing.T) {
	f := acquireFrame(image.Rect(0, 0, 0, 5))
	if f.Pix != nil {
		t.Fatalf("expected no backing slice for empty frame")
	}
	RecycleFrame(f) // must not panic or pool an empty frame
	RecycleFrame(nil)
}

func TestPooledCopy_RebasesOrigin(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 20, 13, 22))
	src.Pix[src.PixOffset(12, 21)] = 99
	dst := pooledCopy(src)
	if dst.Bounds() != image.Rect(0, 0, 3, 2) {
		t.Fatalf("unexpected bounds %v", dst.Bounds())
	}
	if dst.Pix[dst.PixOffset(2, 1)] != 99 {
		t.Fatalf("pixel not copied")
	}
}
