package match

import "errors"

var (
	// ErrUnsupportedMode is returned before any work when Options.Mode is unknown.
	ErrUnsupportedMode = errors.New("match: unsupported mode")
	// ErrInvalidFFTLength signals a transform length that is not a power of two.
	// Padding makes this unreachable from Find; it guards direct FFT callers.
	ErrInvalidFFTLength = errors.New("match: fft length is not a power of two")
	// ErrNilOperand is returned when the image or template is missing.
	ErrNilOperand = errors.New("match: nil operand")
)
