package match

import (
	"iter"
	"math"
	"slices"
)

// windowTest rejects windows whose first and second moments or edge content
// are far from the template's. A window that fails any test cannot score well.
type windowTest struct {
	img          *Cache
	tw, th       int
	count        int
	tmean, tvar  float64
	tedge        float64
	opts         PreFilterOptions
	ratioLo      float64
	ratioHi      float64
	skipVariance bool
}

func newWindowTest(img, tmpl *Cache, opts PreFilterOptions, workers int) *windowTest {
	img.ensure(workers)
	tmpl.ensure(workers)
	agg := tmpl.agg.v
	t := &windowTest{
		img:   img,
		tw:    tmpl.w,
		th:    tmpl.h,
		count: agg.count,
		tmean: mean(agg.sum, agg.count),
		tvar:  variance(agg.sum, agg.sumSq, agg.count),
		tedge: tmpl.edgeEnergy(workers),
		opts:  opts,
	}
	v := opts.VarianceThreshold
	switch {
	case v <= 0:
		t.ratioLo, t.ratioHi = 0, math.Inf(1)
	case v > 1:
		t.ratioLo, t.ratioHi = 1/v, v
	default:
		t.ratioLo, t.ratioHi = v, 1/v
	}
	t.skipVariance = t.tvar <= minWindowVariance
	return t
}

func (t *windowTest) accept(x, y int) bool {
	stride := t.img.w + 1
	sum := regionSum(t.img.integral.v, stride, x, y, t.tw, t.th)
	sumSq := regionSum(t.img.integralSq.v, stride, x, y, t.tw, t.th)
	wmean := mean(sum, t.count)
	if math.Abs(wmean-t.tmean) > t.opts.MeanThreshold {
		return false
	}
	if !t.skipVariance {
		wvar := max(0, sumSq-wmean*wmean*float64(t.count))
		r := wvar / t.tvar
		if r < t.ratioLo || r > t.ratioHi {
			return false
		}
	}
	e := edgeEnergy(t.img.grid.v, t.img.w, x, y, t.tw, t.th)
	return e >= t.opts.EdgeThreshold*t.tedge
}

// preFilter lazily yields surviving window positions in row-major order.
func preFilter(img, tmpl *Cache, opts PreFilterOptions) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		t := newWindowTest(img, tmpl, opts, 1)
		nx, ny := span(img, tmpl)
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				if t.accept(x, y) && !yield(Candidate{X: x, Y: y}) {
					return
				}
			}
		}
	}
}

// preFilterParallel splits candidate rows across workers. The result is in
// the same order as preFilter.
func preFilterParallel(img, tmpl *Cache, opts PreFilterOptions, workers int) []Candidate {
	t := newWindowTest(img, tmpl, opts, workers)
	nx, ny := span(img, tmpl)
	parts := parallelMap(ny, workers, func(lo, hi int) []Candidate {
		var out []Candidate
		for y := lo; y < hi; y++ {
			for x := 0; x < nx; x++ {
				if t.accept(x, y) {
					out = append(out, Candidate{X: x, Y: y})
				}
			}
		}
		return out
	})
	return slices.Concat(parts...)
}
