package match

import (
	"fmt"
	"iter"
	"math"
	"slices"
)

const (
	// Windows at or below this variance are flat and score 0.
	minWindowVariance = 1e-12
	minDenominator    = 1e-8
)

// ncc turns a centred cross-correlation and the two unnormalised variances
// into a score in [-1, 1]. Both matchers score through here.
func ncc(numerator, windowVar, templateVar float64) float64 {
	if windowVar <= minWindowVariance || templateVar <= minWindowVariance {
		return 0
	}
	d := math.Sqrt(windowVar * templateVar)
	if d <= minDenominator {
		return 0
	}
	return max(-1, min(1, numerator/d))
}

// scorer evaluates the NCC of the template at one window position.
type scorer interface {
	score(x, y int) float64
}

func newScorer(s Strategy, img, tmpl *Cache, workers int) (scorer, error) {
	switch s {
	case StrategySlidingWindow:
		return newSpatial(img, tmpl, false, workers), nil
	case StrategySlidingWindowMasked:
		return newSpatial(img, tmpl, true, workers), nil
	case StrategyFourier:
		return newFourier(img, tmpl, false, workers)
	case StrategyFourierMasked:
		return newFourier(img, tmpl, true, workers)
	}
	return nil, fmt.Errorf("%w: strategy %v", ErrUnsupportedMode, s)
}

// span is the number of window positions along each axis.
func span(img, tmpl *Cache) (nx, ny int) {
	return img.w - tmpl.w + 1, img.h - tmpl.h + 1
}

// scoreSeq lazily yields every position scoring above threshold in row-major
// order. The scorer is only built on the first pull; a build failure is
// reported through fail and ends the sequence.
func scoreSeq(s Strategy, img, tmpl *Cache, threshold float64, fail func(error)) iter.Seq[Result] {
	return func(yield func(Result) bool) {
		sc, err := newScorer(s, img, tmpl, 1)
		if err != nil {
			fail(err)
			return
		}
		nx, ny := span(img, tmpl)
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				if v := sc.score(x, y); v > threshold {
					if !yield(Result{X: x, Y: y, Score: v}) {
						return
					}
				}
			}
		}
	}
}

// scoreAll is the parallel counterpart of scoreSeq. Rows are split into
// ordered bands so the concatenated output stays sorted by (y, x).
func scoreAll(s Strategy, img, tmpl *Cache, threshold float64, workers int) ([]Result, error) {
	sc, err := newScorer(s, img, tmpl, workers)
	if err != nil {
		return nil, err
	}
	nx, ny := span(img, tmpl)
	parts := parallelMap(ny, workers, func(lo, hi int) []Result {
		var out []Result
		for y := lo; y < hi; y++ {
			for x := 0; x < nx; x++ {
				if v := sc.score(x, y); v > threshold {
					out = append(out, Result{X: x, Y: y, Score: v})
				}
			}
		}
		return out
	})
	return slices.Concat(parts...), nil
}

// best returns the highest-scoring result of seq; ties keep the first.
func best(seq iter.Seq[Result]) (Result, bool) {
	var (
		top   Result
		found bool
	)
	for r := range seq {
		if !found || r.Score > top.Score {
			top, found = r, true
		}
	}
	return top, found
}
