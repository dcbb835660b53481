//go:build gocv

package match

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Backend names the 2-D transform implementation compiled in.
const Backend = "opencv"

// transform delegates the 2-D transform to cv::dft. The workers hint is
// ignored; OpenCV threads internally.
func transform(p *plane, inverse bool, _ int) error {
	if !isPow2(p.w) || !isPow2(p.h) {
		return fmt.Errorf("%w: %dx%d", ErrInvalidFFTLength, p.w, p.h)
	}
	src := gocv.NewMatWithSize(p.h, p.w, gocv.MatTypeCV64FC2)
	defer src.Close()
	in, err := src.DataPtrFloat64()
	if err != nil {
		return fmt.Errorf("match: gocv input: %w", err)
	}
	for i := range p.re {
		in[2*i] = p.re[i]
		in[2*i+1] = p.im[i]
	}

	dst := gocv.NewMat()
	defer dst.Close()
	flags := gocv.DftComplexOutput
	if inverse {
		flags = gocv.DftInverse | gocv.DftScale | gocv.DftComplexOutput
	}
	gocv.DFT(src, &dst, flags)

	out, err := dst.DataPtrFloat64()
	if err != nil {
		return fmt.Errorf("match: gocv output: %w", err)
	}
	for i := range p.re {
		p.re[i] = out[2*i]
		p.im[i] = out[2*i+1]
	}
	return nil
}
