package match

import "math"

// Heuristics holds the tunable limits of the mode selector, the pre-filter
// switch and candidate clustering.
type Heuristics struct {
	// Sliding window wins outright at or below either limit.
	SlidingMaxCandidates int
	SlidingMaxTemplate   int
	// Fourier wins outright when both minimums are reached.
	FourierMinTemplate   int
	FourierMinCandidates int
	// Cost ratio cand*tsize / (fft*log2 fft) bounds.
	RatioSliding float64
	RatioFourier float64
	// Inside the ratio band, Fourier is used above this candidate count.
	TieBreakCandidates int

	// The pre-filter is always worthwhile at or above this candidate count.
	PreFilterMinCandidates int
	// Below that, it is skipped for tiny searches (<= candidates), small
	// templates (< template size) or small images (< image size).
	PreFilterMaxTrivial int
	PreFilterMinTemplate int
	PreFilterMinImage    int

	// ClusterRadius is the Chebyshev distance joining two candidates.
	ClusterRadius int
}

func DefaultHeuristics() Heuristics {
	return Heuristics{
		SlidingMaxCandidates:   100_000,
		SlidingMaxTemplate:     1024,
		FourierMinTemplate:     16384,
		FourierMinCandidates:   1_000_000,
		RatioSliding:           0.8,
		RatioFourier:           2.0,
		TieBreakCandidates:     500_000,
		PreFilterMinCandidates: 1_000_000,
		PreFilterMaxTrivial:    4,
		PreFilterMinTemplate:   1024,
		PreFilterMinImage:      16384,
		ClusterRadius:          2,
	}
}

// Plan is the outcome of mode selection for a pair of operand sizes.
type Plan struct {
	Mode     Mode
	Strategy Strategy
	// PreFilter reports whether pruning runs before matching.
	PreFilter bool
	// Fits is false when the template is larger than the image.
	Fits bool

	Candidates   int
	TemplateSize int
	// FFTWidth and FFTHeight are the padded transform sizes.
	FFTWidth  int
	FFTHeight int
}

// NextPow2 returns the smallest power of two >= x (1 for x <= 1).
func NextPow2(x int) int {
	p := 1
	for p < x {
		p <<= 1
	}
	return p
}

// SelectMode picks the cheaper matcher for an iw x ih image and a tw x th
// template and decides whether the pre-filter pays off.
func SelectMode(iw, ih, tw, th int, h Heuristics) Plan {
	p := Plan{
		Fits:         tw <= iw && th <= ih && tw > 0 && th > 0,
		TemplateSize: tw * th,
		FFTWidth:     NextPow2(iw + tw),
		FFTHeight:    NextPow2(ih + th),
	}
	if !p.Fits {
		p.Mode = ModeSlidingWindow
		return p
	}
	p.Candidates = (iw - tw + 1) * (ih - th + 1)
	p.Mode = chooseMode(p.Candidates, p.TemplateSize, p.FFTWidth*p.FFTHeight, h)
	p.PreFilter = preFilterWorthwhile(p.Mode, p.Candidates, p.TemplateSize, iw*ih, h)
	return p
}

// preFilterWorthwhile reports whether pruning pays off for a search of cand
// windows run in mode.
func preFilterWorthwhile(mode Mode, cand, tsize, area int, h Heuristics) bool {
	switch {
	case cand >= h.PreFilterMinCandidates:
		return true
	case cand <= h.PreFilterMaxTrivial,
		mode == ModeFourier,
		tsize < h.PreFilterMinTemplate,
		area < h.PreFilterMinImage:
		return false
	default:
		return true
	}
}

func chooseMode(cand, tsize, fftSize int, h Heuristics) Mode {
	if cand <= h.SlidingMaxCandidates || tsize <= h.SlidingMaxTemplate {
		return ModeSlidingWindow
	}
	if tsize >= h.FourierMinTemplate && cand >= h.FourierMinCandidates {
		return ModeFourier
	}
	n := float64(fftSize)
	ratio := float64(cand) * float64(tsize) / (n * math.Log2(n))
	switch {
	case ratio < h.RatioSliding:
		return ModeSlidingWindow
	case ratio > h.RatioFourier:
		return ModeFourier
	case cand > h.TieBreakCandidates:
		return ModeFourier
	default:
		return ModeSlidingWindow
	}
}
