package app

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/soocke/pixel-match-go/capture"
	"github.com/soocke/pixel-match-go/config"
	"github.com/soocke/pixel-match-go/domain/match"
	"github.com/soocke/pixel-match-go/images"
	"github.com/soocke/pixel-match-go/store"
)

// Source produces the image to search. release is called once the run no
// longer needs the pixels.
type Source func() (img image.Image, release func(), err error)

// FileSource loads the image from disk and crops it to sel unless sel is
// empty.
func FileSource(path string, sel image.Rectangle) Source {
	return func() (image.Image, func(), error) {
		img, err := images.Load(path)
		if err != nil || sel.Empty() {
			return img, func() {}, err
		}
		crop, _, err := images.ExtractRect(img, sel.Add(img.Bounds().Min))
		if err != nil {
			return nil, func() {}, fmt.Errorf("selection %v of %s: %w", sel, path, err)
		}
		return crop, func() {}, nil
	}
}

// ScreenSource captures the configured selection, clamped to the screen, or
// the whole screen when no selection is set.
func ScreenSource(cfg *config.Config) Source {
	return func() (image.Image, func(), error) {
		rect := cfg.Selection()
		if !rect.Empty() {
			screen, err := capture.ScreenBounds()
			if err != nil {
				return nil, func() {}, fmt.Errorf("screen bounds: %w", err)
			}
			if rect, err = clampSelection(rect, screen); err != nil {
				return nil, func() {}, err
			}
		}
		frame, err := capture.GrabSelection(rect)
		if err != nil {
			return nil, func() {}, err
		}
		return frame, func() { capture.RecycleFrame(frame) }, nil
	}
}

// clampSelection limits sel to the screen. A selection entirely off screen is
// an error rather than a silent full-screen capture.
func clampSelection(sel, screen image.Rectangle) (image.Rectangle, error) {
	r := sel.Intersect(screen)
	if r.Empty() {
		return r, fmt.Errorf("selection %v outside screen %v", sel, screen)
	}
	return r, nil
}

// Container assembles the services one run needs.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Matcher *match.Matcher
	Source  Source
	// SourceName is recorded with the run ("screen" or the file path).
	SourceName   string
	TemplatePath string
	// Store is nil when no database path is configured.
	Store *store.DB
}

// BuildContainer constructs all components. Side effects are limited to
// opening the run database.
func BuildContainer(cfg *config.Config, logger *slog.Logger, imagePath, templatePath string, screen bool) (*Container, error) {
	c := &Container{
		Config:       cfg,
		Logger:       logger,
		Matcher:      match.NewMatcher(logger, cfg.MatchHeuristics()),
		TemplatePath: templatePath,
	}
	if screen {
		c.Source, c.SourceName = ScreenSource(cfg), "screen"
	} else {
		c.Source, c.SourceName = FileSource(imagePath, cfg.Selection()), imagePath
	}
	if cfg.DBPath != "" {
		db, err := store.Open(cfg.DBPath, logger)
		if err != nil {
			return nil, err
		}
		c.Store = db
	}
	return c, nil
}

// Close releases the run database, if any.
func (c *Container) Close() error {
	if c.Store != nil {
		return c.Store.Close()
	}
	return nil
}
