package match

import (
	"fmt"
	"strings"
)

// Channel selects which 8-bit value of a pixel is correlated.
type Channel int

const (
	ChannelR Channel = iota
	ChannelG
	ChannelB
	// ChannelAll correlates the luma of R, G and B.
	ChannelAll
)

func (c Channel) String() string {
	switch c {
	case ChannelR:
		return "r"
	case ChannelG:
		return "g"
	case ChannelB:
		return "b"
	case ChannelAll:
		return "all"
	default:
		return "unknown"
	}
}

// ParseChannel maps a config/flag value to a Channel.
func ParseChannel(s string) (Channel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "r", "red":
		return ChannelR, nil
	case "g", "green":
		return ChannelG, nil
	case "b", "blue":
		return ChannelB, nil
	case "", "all", "gray", "grey", "luma":
		return ChannelAll, nil
	}
	return ChannelAll, fmt.Errorf("match: unknown channel %q", s)
}

// luma uses the same fixed-point weights as image/color.
func luma(r, g, b uint8) uint8 {
	y := (19595*uint32(r) + 38470*uint32(g) + 7471*uint32(b) + 1<<15) >> 16
	return uint8(y)
}

// accessor hands out cursors over one operand and reads the selected channel
// from them.
type accessor struct {
	op     Operand
	value  func(Cursor) uint8
	cursor func() Cursor
	// alpha is true when cursors expose a meaningful A().
	alpha bool
}

func newAccessor(op Operand, ch Channel) accessor {
	a := accessor{op: op, alpha: op.HasAlpha(), cursor: op.Cursor}
	switch ch {
	case ChannelR:
		a.value = func(c Cursor) uint8 { return c.R() }
	case ChannelG:
		a.value = func(c Cursor) uint8 { return c.G() }
	case ChannelB:
		a.value = func(c Cursor) uint8 { return c.B() }
	default:
		if a.alpha {
			a.cursor = func() Cursor { return alphaGrayCursor{op.Cursor()} }
		} else {
			a.cursor = func() Cursor { return grayCursor{op.Cursor()} }
		}
		a.value = func(c Cursor) uint8 { return c.(interface{ Gray() uint8 }).Gray() }
	}
	return a
}

// grayCursor is a single-channel view: A is always opaque.
type grayCursor struct{ Cursor }

func (g grayCursor) Gray() uint8   { return luma(g.R(), g.G(), g.B()) }
func (g grayCursor) A() uint8      { return 0xff }
func (g grayCursor) Clone() Cursor { return grayCursor{g.Cursor.Clone()} }

// alphaGrayCursor keeps the underlying alpha queryable next to the luma.
type alphaGrayCursor struct{ Cursor }

func (g alphaGrayCursor) Gray() uint8   { return luma(g.R(), g.G(), g.B()) }
func (g alphaGrayCursor) Clone() Cursor { return alphaGrayCursor{g.Cursor.Clone()} }
