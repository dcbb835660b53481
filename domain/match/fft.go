package match

import (
	"fmt"
	"math"
)

func isPow2(n int) bool { return n > 0 && n&(n-1) == 0 }

// FFT transforms re/im in place with an iterative radix-2 Cooley-Tukey
// butterfly. The forward kernel is exp(-2*pi*i*jk/n); the inverse uses the
// conjugate kernel and divides by n.
func FFT(re, im []float64, inverse bool) error {
	n := len(re)
	if n != len(im) || !isPow2(n) {
		return fmt.Errorf("%w: %d", ErrInvalidFFTLength, n)
	}
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j ^= bit
		if i < j {
			re[i], re[j] = re[j], re[i]
			im[i], im[j] = im[j], im[i]
		}
	}
	sign := -1.0
	if inverse {
		sign = 1
	}
	for size := 2; size <= n; size <<= 1 {
		half := size >> 1
		theta := sign * 2 * math.Pi / float64(size)
		wr, wi := math.Cos(theta), math.Sin(theta)
		for start := 0; start < n; start += size {
			cr, ci := 1.0, 0.0
			for k := 0; k < half; k++ {
				a, b := start+k, start+k+half
				tr := cr*re[b] - ci*im[b]
				ti := cr*im[b] + ci*re[b]
				re[b], im[b] = re[a]-tr, im[a]-ti
				re[a] += tr
				im[a] += ti
				cr, ci = cr*wr-ci*wi, cr*wi+ci*wr
			}
		}
	}
	if inverse {
		s := 1 / float64(n)
		for i := range re {
			re[i] *= s
			im[i] *= s
		}
	}
	return nil
}

// FFT2D transforms a row-major w x h plane: every row, then every column.
func FFT2D(re, im []float64, w, h int, inverse bool) error {
	return fft2D(re, im, w, h, inverse, 1)
}

// FFT2DParallel is FFT2D with the row pass and the column pass each split
// across workers. Results are identical to FFT2D.
func FFT2DParallel(re, im []float64, w, h int, inverse bool, par Parallelism) error {
	return fft2D(re, im, w, h, inverse, par.workers())
}

func fft2D(re, im []float64, w, h int, inverse bool, workers int) error {
	if !isPow2(w) {
		return fmt.Errorf("%w: width %d", ErrInvalidFFTLength, w)
	}
	if !isPow2(h) {
		return fmt.Errorf("%w: height %d", ErrInvalidFFTLength, h)
	}
	if len(re) != w*h || len(im) != w*h {
		return fmt.Errorf("match: plane is %d values, want %dx%d", len(re), w, h)
	}
	// Lengths are checked above, so the 1-D transforms cannot fail.
	rows := func(lo, hi int) {
		for y := lo; y < hi; y++ {
			_ = FFT(re[y*w:(y+1)*w], im[y*w:(y+1)*w], inverse)
		}
	}
	cols := func(lo, hi int) {
		cr := make([]float64, h)
		ci := make([]float64, h)
		for x := lo; x < hi; x++ {
			for y := 0; y < h; y++ {
				cr[y], ci[y] = re[y*w+x], im[y*w+x]
			}
			_ = FFT(cr, ci, inverse)
			for y := 0; y < h; y++ {
				re[y*w+x], im[y*w+x] = cr[y], ci[y]
			}
		}
	}
	if workers <= 1 {
		rows(0, h)
		cols(0, w)
		return nil
	}
	parallelFor(h, workers, rows)
	parallelFor(w, workers, cols)
	return nil
}

// plane is a padded complex grid.
type plane struct {
	re, im []float64
	w, h   int
}

func newPlane(w, h int) *plane {
	return &plane{re: make([]float64, w*h), im: make([]float64, w*h), w: w, h: h}
}

// mulInto stores the pointwise complex product a*b in dst.
func mulInto(dst, a, b *plane) {
	for i := range a.re {
		ar, ai, br, bi := a.re[i], a.im[i], b.re[i], b.im[i]
		dst.re[i] = ar*br - ai*bi
		dst.im[i] = ar*bi + ai*br
	}
}
