package match

import (
	"image"
	"image/color"
	"testing"
)

func TestNewOperand_AlphaFromOpacity(t *testing.T) {
	if NewOperand(noiseGray(3, 3, 1)).HasAlpha() {
		t.Fatalf("gray images carry no alpha")
	}
	rgba := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			rgba.SetNRGBA(x, y, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
		}
	}
	if NewOperand(rgba).HasAlpha() {
		t.Fatalf("fully opaque NRGBA should be treated as alpha-less")
	}
	rgba.SetNRGBA(1, 1, color.NRGBA{A: 0})
	if !NewOperand(rgba).HasAlpha() {
		t.Fatalf("transparent pixel should enable alpha")
	}
	if NewOperand(nil) != nil {
		t.Fatalf("nil image should give nil operand")
	}
}

func TestCursor_MoveNextXStopsAtRowEnd(t *testing.T) {
	op := NewOperand(synthGray(3, 2, func(x, y int) uint8 { return uint8(10*y + x) }))
	c := op.Cursor()
	c.Move(0, 1)
	var seen []uint8
	for {
		seen = append(seen, c.R())
		if !c.MoveNextX() {
			break
		}
	}
	if len(seen) != 3 || seen[0] != 10 || seen[2] != 12 {
		t.Fatalf("unexpected row %v", seen)
	}
	clone := c.Clone()
	c.Move(0, 0)
	if clone.R() != 12 || c.R() != 0 {
		t.Fatalf("clone should keep its own position")
	}
}

func TestCrop_SharesPixels(t *testing.T) {
	src := synthGray(6, 5, func(x, y int) uint8 { return uint8(10*y + x) })
	view := Crop(NewOperand(src), image.Rect(2, 1, 9, 4))
	if view.Width() != 4 || view.Height() != 3 {
		t.Fatalf("expected clamped 4x3 view, got %dx%d", view.Width(), view.Height())
	}
	c := view.Cursor()
	c.Move(1, 2)
	if c.G() != 33 {
		t.Fatalf("expected pixel (3,3)=33, got %d", c.G())
	}
}

func TestAccessor_Channels(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	op := NewOperand(img)
	for ch, want := range map[Channel]uint8{ChannelR: 200, ChannelG: 100, ChannelB: 50, ChannelAll: 124} {
		a := newAccessor(op, ch)
		if got := a.value(a.cursor()); got != want {
			t.Fatalf("%v: got %d want %d", ch, got, want)
		}
	}
	gray := newAccessor(NewOperand(synthGray(1, 1, func(int, int) uint8 { return 90 })), ChannelAll)
	c := gray.cursor()
	if gray.value(c) != 90 || c.A() != 255 {
		t.Fatalf("gray view should read luma and be opaque")
	}
	if luma(255, 255, 255) != 255 || luma(7, 7, 7) != 7 {
		t.Fatalf("luma must preserve gray levels")
	}
}
