package match

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	dft "gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

func randomSignal(n int, seed uint64) (re, im []float64) {
	r := rand.New(rand.NewPCG(seed, 1))
	re, im = make([]float64, n), make([]float64, n)
	for i := range re {
		re[i] = r.Float64()*200 - 100
		im[i] = r.Float64()*200 - 100
	}
	return re, im
}

func TestFFT_MatchesGonum(t *testing.T) {
	for _, n := range []int{2, 8, 64, 512} {
		re, im := randomSignal(n, uint64(n))
		seq := make([]complex128, n)
		for i := range seq {
			seq[i] = complex(re[i], im[i])
		}
		want := dft.NewCmplxFFT(n).Coefficients(nil, seq)
		if err := FFT(re, im, false); err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		for i, c := range want {
			if math.Abs(real(c)-re[i]) > 1e-8 || math.Abs(imag(c)-im[i]) > 1e-8 {
				t.Fatalf("n=%d bin %d: got %v%+vi want %v", n, i, re[i], im[i], c)
			}
		}
	}
}

func TestFFT_InverseRoundTrip(t *testing.T) {
	re, im := randomSignal(256, 3)
	origRe := append([]float64(nil), re...)
	origIm := append([]float64(nil), im...)
	if err := FFT(re, im, false); err != nil {
		t.Fatalf("forward: %v", err)
	}
	if err := FFT(re, im, true); err != nil {
		t.Fatalf("inverse: %v", err)
	}
	if !floats.EqualApprox(re, origRe, 1e-9) || !floats.EqualApprox(im, origIm, 1e-9) {
		t.Fatalf("round trip did not restore the signal")
	}
}

func TestFFT_RejectsNonPowerOfTwo(t *testing.T) {
	for _, n := range []int{0, 3, 6, 100} {
		re, im := make([]float64, n), make([]float64, n)
		if err := FFT(re, im, false); !errors.Is(err, ErrInvalidFFTLength) {
			t.Fatalf("n=%d: expected ErrInvalidFFTLength, got %v", n, err)
		}
	}
	if err := FFT2D(make([]float64, 12), make([]float64, 12), 4, 3, false); !errors.Is(err, ErrInvalidFFTLength) {
		t.Fatalf("expected ErrInvalidFFTLength for 4x3 plane, got %v", err)
	}
}

func TestFFT2D_SeparableAgainstGonum(t *testing.T) {
	const w, h = 8, 4
	re, im := randomSignal(w*h, 9)
	grid := make([]complex128, w*h)
	for i := range grid {
		grid[i] = complex(re[i], im[i])
	}
	// Reference: rows then columns through gonum.
	rowFFT, colFFT := dft.NewCmplxFFT(w), dft.NewCmplxFFT(h)
	for y := 0; y < h; y++ {
		copy(grid[y*w:(y+1)*w], rowFFT.Coefficients(nil, grid[y*w:(y+1)*w]))
	}
	col := make([]complex128, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = grid[y*w+x]
		}
		for y, c := range colFFT.Coefficients(nil, col) {
			grid[y*w+x] = c
		}
	}
	if err := FFT2D(re, im, w, h, false); err != nil {
		t.Fatalf("FFT2D: %v", err)
	}
	for i, c := range grid {
		if math.Abs(real(c)-re[i]) > 1e-8 || math.Abs(imag(c)-im[i]) > 1e-8 {
			t.Fatalf("cell %d: got %v%+vi want %v", i, re[i], im[i], c)
		}
	}
}

func TestFFT2DParallel_MatchesSequential(t *testing.T) {
	const w, h = 32, 16
	re1, im1 := randomSignal(w*h, 11)
	re2 := append([]float64(nil), re1...)
	im2 := append([]float64(nil), im1...)
	if err := FFT2D(re1, im1, w, h, false); err != nil {
		t.Fatalf("FFT2D: %v", err)
	}
	if err := FFT2DParallel(re2, im2, w, h, false, Parallelism{Workers: 3}); err != nil {
		t.Fatalf("FFT2DParallel: %v", err)
	}
	if !floats.Equal(re1, re2) || !floats.Equal(im1, im2) {
		t.Fatalf("parallel transform differs from sequential")
	}
}
