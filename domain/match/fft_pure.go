//go:build !gocv

package match

// transform runs the built-in 2-D transform on p.
func transform(p *plane, inverse bool, workers int) error {
	return fft2D(p.re, p.im, p.w, p.h, inverse, workers)
}

// Backend names the 2-D transform implementation compiled in.
const Backend = "pure-go"
