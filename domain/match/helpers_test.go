package match

import (
	"image"
	"image/color"
	"io"
	"log/slog"
	"math/rand/v2"
	"testing"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// synthGray builds a w x h gray image filled by fn.
func synthGray(w, h int, fn func(x, y int) uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: fn(x, y)})
		}
	}
	return img
}

func noiseGray(w, h int, seed uint64) *image.Gray {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return synthGray(w, h, func(int, int) uint8 { return uint8(r.IntN(256)) })
}

// cutGray copies the w x h block at (x, y) of src into a new image at origin.
func cutGray(src *image.Gray, x, y, w, h int) *image.Gray {
	return synthGray(w, h, func(i, j int) uint8 { return src.GrayAt(x+i, y+j).Y })
}

// paste writes tmpl into dst with its top-left corner at (x, y).
func paste(dst *image.Gray, tmpl *image.Gray, x, y int) {
	b := tmpl.Bounds()
	for j := 0; j < b.Dy(); j++ {
		for i := 0; i < b.Dx(); i++ {
			dst.SetGray(x+i, y+j, tmpl.GrayAt(b.Min.X+i, b.Min.Y+j))
		}
	}
}

// eagerHeuristics lets the pre-filter run on searches of any size and mode.
func eagerHeuristics() Heuristics {
	h := DefaultHeuristics()
	h.PreFilterMinCandidates = 0
	return h
}

func exhaustive(mode Mode, threshold float64) Options {
	return Options{Mode: mode, Threshold: threshold}
}

func collect(t testing.TB, m *Matcher, img, tmpl image.Image, opts Options) []Result {
	t.Helper()
	seq, err := m.Find(NewOperand(img), NewOperand(tmpl), ChannelAll, opts)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	var out []Result
	for r := range seq {
		out = append(out, r)
	}
	return out
}

func byPosition(rs []Result) map[[2]int]float64 {
	out := make(map[[2]int]float64, len(rs))
	for _, r := range rs {
		out[[2]int{r.X, r.Y}] = r.Score
	}
	return out
}
