package match

import (
	"cmp"
	"errors"
	"fmt"
	"image"
	"iter"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
)

// Matcher finds every placement of a template inside an image whose
// normalised cross-correlation exceeds a threshold.
type Matcher struct {
	logger     *slog.Logger
	heuristics Heuristics
}

// NewMatcher returns a matcher using h for mode selection and clustering.
// A nil logger discards output.
func NewMatcher(logger *slog.Logger, h Heuristics) *Matcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Matcher{logger: logger, heuristics: h}
}

// Plan validates the request and decides mode, strategy and pre-filtering
// without touching pixel data.
func (m *Matcher) Plan(img, tmpl Operand, opts Options) (Plan, error) {
	if img == nil || tmpl == nil {
		return Plan{}, ErrNilOperand
	}
	switch opts.Mode {
	case ModeAuto, ModeSlidingWindow, ModeFourier:
	default:
		return Plan{}, fmt.Errorf("%w: %v", ErrUnsupportedMode, opts.Mode)
	}
	p := SelectMode(img.Width(), img.Height(), tmpl.Width(), tmpl.Height(), m.heuristics)
	if opts.Mode != ModeAuto {
		// A forced mode goes through the same pre-filter gate as a chosen one.
		p.Mode = opts.Mode
		p.PreFilter = preFilterWorthwhile(p.Mode, p.Candidates, p.TemplateSize, img.Width()*img.Height(), m.heuristics)
	}
	masked := tmpl.HasAlpha()
	// Window moments over the full rectangle say nothing about a masked
	// template, so masked searches are never pre-filtered.
	p.PreFilter = p.Fits && opts.PreFilter.Enabled && p.PreFilter && !masked
	s, err := strategyFor(p.Mode, masked)
	if err != nil {
		return Plan{}, err
	}
	p.Strategy = s
	return p, nil
}

// Find returns a single-pass sequence of matches. Work starts on the first
// pull; ranging over the sequence a second time yields nothing. Without the
// pre-filter results arrive in row-major order, with it one per cluster.
//
// Errors raised while the sequence runs cannot reach the caller; they are
// logged and end the sequence. Only the FFT length check can fail there, and
// the padding chosen by Plan keeps it from firing. Use FindParallel when the
// error must be returned.
func (m *Matcher) Find(img, tmpl Operand, ch Channel, opts Options) (iter.Seq[Result], error) {
	plan, err := m.Plan(img, tmpl, opts)
	if err != nil {
		return nil, err
	}
	var consumed atomic.Bool
	return func(yield func(Result) bool) {
		if consumed.Swap(true) {
			m.logger.Warn("match results already consumed")
			return
		}
		m.newRun(img, tmpl, ch, opts, plan).sequential(yield)
	}, nil
}

// FindParallel runs every stage across par workers and returns all matches
// sorted by (y, x).
func (m *Matcher) FindParallel(img, tmpl Operand, ch Channel, opts Options, par Parallelism) ([]Result, error) {
	plan, err := m.Plan(img, tmpl, opts)
	if err != nil {
		return nil, err
	}
	return m.newRun(img, tmpl, ch, opts, plan).parallel(par.workers())
}

type run struct {
	m        *Matcher
	img      Operand
	ch       Channel
	opts     Options
	plan     Plan
	tmpl     *Cache
	progress progress
	results  int

	mu  sync.Mutex
	err error
}

func (m *Matcher) newRun(img, tmpl Operand, ch Channel, opts Options, plan Plan) *run {
	return &run{
		m:        m,
		img:      img,
		ch:       ch,
		opts:     opts,
		plan:     plan,
		tmpl:     newCache(tmpl, ch, roleTemplate),
		progress: progress{logger: m.logger},
	}
}

func (r *run) fail(err error) {
	r.mu.Lock()
	r.err = errors.Join(r.err, err)
	r.mu.Unlock()
}

func (r *run) decided() {
	r.progress.transition(StageModeDecided,
		"mode", r.plan.Mode.String(),
		"strategy", r.plan.Strategy.String(),
		"prefilter", r.plan.PreFilter,
		"candidates", r.plan.Candidates,
	)
}

func (r *run) finish() {
	r.progress.transition(StageMatched, "results", r.results)
	r.progress.transition(StageDone)
	if r.err != nil {
		r.m.logger.Error("match failed", "error", r.err)
	}
}

func (r *run) sequential(yield func(Result) bool) {
	defer r.finish()
	r.decided()
	if !r.plan.Fits {
		return
	}
	img := newCache(r.img, r.ch, roleImage)
	if !r.plan.PreFilter {
		for res := range scoreSeq(r.plan.Strategy, img, r.tmpl, r.opts.Threshold, r.fail) {
			r.results++
			if !yield(res) {
				return
			}
		}
		return
	}
	cands := slices.Collect(preFilter(img, r.tmpl, r.opts.PreFilter))
	regions := r.cluster(cands)
	for _, reg := range regions {
		res, ok := r.refine(reg)
		if !ok {
			continue
		}
		r.results++
		if !yield(res) {
			return
		}
	}
}

func (r *run) parallel(workers int) ([]Result, error) {
	defer r.finish()
	r.decided()
	if !r.plan.Fits {
		return nil, nil
	}
	img := newCache(r.img, r.ch, roleImage)
	if !r.plan.PreFilter {
		out, err := scoreAll(r.plan.Strategy, img, r.tmpl, r.opts.Threshold, workers)
		if err != nil {
			r.fail(err)
			return nil, err
		}
		r.results = len(out)
		return out, nil
	}
	cands := preFilterParallel(img, r.tmpl, r.opts.PreFilter, workers)
	regions := r.cluster(cands)

	found := make([]Result, len(regions))
	ok := make([]bool, len(regions))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, reg := range regions {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			found[i], ok[i] = r.refine(reg)
		}()
	}
	wg.Wait()
	if r.err != nil {
		return nil, r.err
	}

	var out []Result
	for i, res := range found {
		if ok[i] {
			out = append(out, res)
		}
	}
	slices.SortFunc(out, func(a, b Result) int {
		if c := cmp.Compare(a.Y, b.Y); c != 0 {
			return c
		}
		return cmp.Compare(a.X, b.X)
	})
	r.results = len(out)
	return out, nil
}

func (r *run) cluster(cands []Candidate) []Region {
	r.progress.transition(StagePrefiltered, "candidates", len(cands))
	regions := Cluster(cands, r.m.heuristics.ClusterRadius)
	r.progress.transition(StageClustered, "clusters", len(regions))
	return regions
}

// refine rescans one cluster on a crop padded by one position on every side
// and keeps its best match. The template cache is shared and already filled.
func (r *run) refine(reg Region) (Result, bool) {
	rect := cropRect(reg, r.tmpl.w, r.tmpl.h, r.img.Width(), r.img.Height())
	sub := newCache(Crop(r.img, rect), r.ch, roleImage)
	res, ok := best(scoreSeq(r.plan.Strategy, sub, r.tmpl, r.opts.Threshold, r.fail))
	if !ok {
		return Result{}, false
	}
	res.X += rect.Min.X
	res.Y += rect.Min.Y
	return res, true
}

// cropRect covers every window whose origin lies within one cell of reg.
func cropRect(reg Region, tw, th, iw, ih int) image.Rectangle {
	return image.Rect(reg.Left-1, reg.Top-1, reg.Right+tw+1, reg.Bottom+th+1).
		Intersect(image.Rect(0, 0, iw, ih))
}
