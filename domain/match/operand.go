package match

import (
	"image"

	"golang.org/x/image/draw"
)

// Operand is a 2-D pixel grid that can hand out independent cursors.
// Images and templates are both operands.
type Operand interface {
	Width() int
	Height() int
	// HasAlpha reports whether the pixel format carries meaningful alpha.
	HasAlpha() bool
	// Cursor returns a new cursor positioned at (0, 0).
	Cursor() Cursor
}

// Cursor walks an Operand. Move is random access; MoveNextX steps one column
// to the right and reports false (without moving) at the end of the row.
type Cursor interface {
	Move(x, y int)
	MoveNextX() bool
	Clone() Cursor
	R() uint8
	G() uint8
	B() uint8
	A() uint8
}

// pixels is a non-premultiplied RGBA grid, possibly a view into a larger one.
type pixels struct {
	pix    []uint8
	stride int // bytes per row of the backing buffer
	offset int // byte offset of (0, 0)
	w, h   int
	alpha  bool
}

// NewOperand flattens img into an 8-bit non-premultiplied RGBA operand.
// Images that report themselves opaque are treated as alpha-less.
func NewOperand(img image.Image) Operand {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Copy(dst, image.Point{}, img, b, draw.Src, nil)
	alpha := true
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		alpha = false
	}
	return &pixels{pix: dst.Pix, stride: dst.Stride, w: b.Dx(), h: b.Dy(), alpha: alpha}
}

// Crop returns a view of op restricted to r (clamped to op's bounds). Pixels
// are shared when op was built by NewOperand; other operands are copied.
func Crop(op Operand, r image.Rectangle) Operand {
	r = r.Intersect(image.Rect(0, 0, op.Width(), op.Height()))
	if p, ok := op.(*pixels); ok {
		return &pixels{
			pix:    p.pix,
			stride: p.stride,
			offset: p.offset + r.Min.Y*p.stride + r.Min.X*4,
			w:      r.Dx(),
			h:      r.Dy(),
			alpha:  p.alpha,
		}
	}
	out := &pixels{pix: make([]uint8, r.Dx()*r.Dy()*4), stride: r.Dx() * 4, w: r.Dx(), h: r.Dy(), alpha: op.HasAlpha()}
	c := op.Cursor()
	for y := 0; y < r.Dy(); y++ {
		c.Move(r.Min.X, r.Min.Y+y)
		for x := 0; x < r.Dx(); x++ {
			if x > 0 {
				c.MoveNextX()
			}
			i := y*out.stride + x*4
			out.pix[i], out.pix[i+1], out.pix[i+2], out.pix[i+3] = c.R(), c.G(), c.B(), c.A()
		}
	}
	return out
}

func (p *pixels) Width() int     { return p.w }
func (p *pixels) Height() int    { return p.h }
func (p *pixels) HasAlpha() bool { return p.alpha }
func (p *pixels) Cursor() Cursor { return &pixelCursor{p: p, off: p.offset} }

type pixelCursor struct {
	p    *pixels
	x, y int
	off  int
}

func (c *pixelCursor) Move(x, y int) {
	c.x, c.y = x, y
	c.off = c.p.offset + y*c.p.stride + x*4
}

func (c *pixelCursor) MoveNextX() bool {
	if c.x+1 >= c.p.w {
		return false
	}
	c.x++
	c.off += 4
	return true
}

func (c *pixelCursor) Clone() Cursor {
	cp := *c
	return &cp
}

func (c *pixelCursor) R() uint8 { return c.p.pix[c.off] }
func (c *pixelCursor) G() uint8 { return c.p.pix[c.off+1] }
func (c *pixelCursor) B() uint8 { return c.p.pix[c.off+2] }
func (c *pixelCursor) A() uint8 {
	if !c.p.alpha {
		return 0xff
	}
	return c.p.pix[c.off+3]
}
