package match

import (
	"fmt"
	"strings"
)

// Mode selects the correlation algorithm.
type Mode int

const (
	ModeAuto Mode = iota
	ModeSlidingWindow
	ModeFourier
)

func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeSlidingWindow:
		return "sliding-window"
	case ModeFourier:
		return "fourier"
	default:
		return "unknown"
	}
}

// ParseMode maps a config/flag value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ModeAuto, nil
	case "sliding-window", "slidingwindow", "sliding", "spatial":
		return ModeSlidingWindow, nil
	case "fourier", "fft":
		return ModeFourier, nil
	}
	return ModeAuto, fmt.Errorf("%w: %q", ErrUnsupportedMode, s)
}

// Strategy is the concrete matcher arm chosen once mode and masking are known.
type Strategy int

const (
	StrategySlidingWindow Strategy = iota
	StrategySlidingWindowMasked
	StrategyFourier
	StrategyFourierMasked
)

func (s Strategy) String() string {
	switch s {
	case StrategySlidingWindow:
		return "sliding-window"
	case StrategySlidingWindowMasked:
		return "sliding-window-masked"
	case StrategyFourier:
		return "fourier"
	case StrategyFourierMasked:
		return "fourier-masked"
	default:
		return "unknown"
	}
}

func strategyFor(m Mode, masked bool) (Strategy, error) {
	switch m {
	case ModeSlidingWindow:
		if masked {
			return StrategySlidingWindowMasked, nil
		}
		return StrategySlidingWindow, nil
	case ModeFourier:
		if masked {
			return StrategyFourierMasked, nil
		}
		return StrategyFourier, nil
	}
	return 0, fmt.Errorf("%w: %v", ErrUnsupportedMode, m)
}

// PreFilterOptions configures the statistical pruning pass.
type PreFilterOptions struct {
	Enabled bool
	// MeanThreshold is the largest allowed |windowMean - templateMean|.
	MeanThreshold float64
	// VarianceThreshold v accepts variance ratios inside [v, 1/v].
	VarianceThreshold float64
	// EdgeThreshold rejects windows whose edge energy is below this
	// fraction of the template's.
	EdgeThreshold float64
}

// Options configures a single match invocation.
type Options struct {
	Mode      Mode
	Threshold float64 // scores must be strictly greater, in [-1, 1]
	PreFilter PreFilterOptions
}

// DefaultOptions returns automatic mode with a 0.8 threshold and moderate pre-filter limits.
func DefaultOptions() Options {
	return Options{
		Mode:      ModeAuto,
		Threshold: 0.8,
		PreFilter: PreFilterOptions{
			Enabled:           true,
			MeanThreshold:     40,
			VarianceThreshold: 0.25,
			EdgeThreshold:     0.2,
		},
	}
}

// Parallelism bounds the worker count of the parallel variants. Workers <= 0
// means runtime.GOMAXPROCS(0).
type Parallelism struct {
	Workers int
}

// Result is the top-left corner of a matching window and its NCC score.
type Result struct {
	X, Y  int
	Score float64
}

// Candidate is a window position that survived the pre-filter.
type Candidate struct {
	X, Y int
}

// Region is the inclusive envelope of one cluster of candidates.
type Region struct {
	Left, Top, Right, Bottom int
}
