package app

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"slices"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/soocke/pixel-match-go/debug"
	"github.com/soocke/pixel-match-go/domain/match"
	"github.com/soocke/pixel-match-go/images"
	"github.com/soocke/pixel-match-go/store"
)

// ErrNoTemplate is returned when no template path is configured.
var ErrNoTemplate = errors.New("app: template path required")

// Report summarises one run.
type Report struct {
	Plan     match.Plan
	Results  []match.Result
	Duration time.Duration
	RunID    string
}

// Run loads the operands, matches, prints one "x y score" line per result to
// out, and optionally annotates and records the run.
func (c *Container) Run(ctx context.Context, out io.Writer) (Report, error) {
	cfg := c.Config
	if c.TemplatePath == "" {
		return Report{}, ErrNoTemplate
	}
	if cfg.Debug {
		debug.StartGoroutineLogger(ctx, time.Second, c.Logger)
		defer debug.LogMemStats(c.Logger, "memstats")
	}

	opts, err := cfg.MatchOptions()
	if err != nil {
		return Report{}, err
	}
	ch, err := cfg.MatchChannel()
	if err != nil {
		return Report{}, err
	}

	tmplImg, err := images.Load(c.TemplatePath)
	if err != nil {
		return Report{}, err
	}
	img, release, err := c.Source()
	if err != nil {
		return Report{}, err
	}
	defer release()

	imgOp, tmplOp := match.NewOperand(img), match.NewOperand(tmplImg)
	plan, err := c.Matcher.Plan(imgOp, tmplOp, opts)
	if err != nil {
		return Report{}, err
	}
	c.Logger.Info("match plan",
		"image", c.SourceName,
		"template", c.TemplatePath,
		"mode", plan.Mode.String(),
		"strategy", plan.Strategy.String(),
		"prefilter", plan.PreFilter,
		"candidates", humanize.Comma(int64(plan.Candidates)),
		"fft_backend", match.Backend,
	)

	started := time.Now()
	var results []match.Result
	if cfg.Parallel {
		results, err = c.Matcher.FindParallel(imgOp, tmplOp, ch, opts, cfg.Parallelism())
		if err != nil {
			return Report{}, err
		}
	} else {
		seq, err := c.Matcher.Find(imgOp, tmplOp, ch, opts)
		if err != nil {
			return Report{}, err
		}
		for r := range seq {
			if ctx.Err() != nil {
				break
			}
			results = append(results, r)
		}
	}
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	rep := Report{Plan: plan, Results: results, Duration: time.Since(started)}

	for _, r := range results {
		fmt.Fprintf(out, "%d %d %.6f\n", r.X, r.Y, r.Score)
	}
	c.Logger.Info("match complete",
		"results", len(results),
		"duration", rep.Duration.String(),
		"started", humanize.Time(started),
	)

	tb := tmplImg.Bounds()
	if cfg.AnnotatePath != "" {
		if err := images.Save(cfg.AnnotatePath, images.Annotate(img, results, tb.Dx(), tb.Dy())); err != nil {
			return rep, err
		}
	}
	if c.Store != nil {
		id, err := c.Store.RecordRun(ctx, store.Run{
			StartedAt: started,
			Image:     c.SourceName,
			Template:  c.TemplatePath,
			Mode:      plan.Mode.String(),
			Strategy:  plan.Strategy.String(),
			Channel:   ch.String(),
			Threshold: opts.Threshold,
			PreFilter: plan.PreFilter,
			Parallel:  cfg.Parallel,
			Duration:  rep.Duration,
			Results:   results,
			Preview:   preview(img, results, tb.Dx(), tb.Dy()),
		})
		if err != nil {
			return rep, fmt.Errorf("record run: %w", err)
		}
		rep.RunID = id.String()
		c.Logger.Info("run recorded", "id", rep.RunID, "db", c.Store.Path())
	}
	return rep, nil
}

// preview encodes a crop twice the template size around the best result.
func preview(img image.Image, results []match.Result, tw, th int) []byte {
	if len(results) == 0 {
		return nil
	}
	top := slices.MaxFunc(results, func(a, b match.Result) int { return cmp.Compare(a.Score, b.Score) })
	origin := img.Bounds().Min
	roi, _, err := images.ExtractROI(img, origin.X+top.X+tw/2, origin.Y+top.Y+th/2, 2*max(tw, th))
	if err != nil {
		return nil
	}
	return images.EncodePNG(roi)
}
