package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/soocke/pixel-match-go/app"
	"github.com/soocke/pixel-match-go/config"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("pixel-match", flag.ContinueOnError)
	var (
		cfgPath   = fs.String("config", "", "config file (.json, .yaml or .ini)")
		imagePath = fs.String("image", "", "image to search")
		tmplPath  = fs.String("template", "", "template to find")
		screen    = fs.Bool("screen", false, "capture the screen instead of reading -image")
		mode      = fs.String("mode", "", "auto, sliding-window or fourier")
		channel   = fs.String("channel", "", "r, g, b or all")
		threshold = fs.Float64("threshold", 0, "minimum score, exclusive")
		prefilter = fs.Bool("prefilter", true, "enable statistical pre-filtering")
		parallel  = fs.Bool("parallel", false, "run every stage across workers")
		workers   = fs.Int("workers", 0, "worker count, 0 for GOMAXPROCS")
		annotate  = fs.String("annotate", "", "write an annotated copy of the image here")
		dbPath    = fs.String("db", "", "record the run in this SQLite database")
		debugFlag = fs.Bool("debug", false, "debug logging and runtime stats")
		logFormat = fs.String("log-format", "", "json or text")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			return err
		}
	}
	// Flags override the file only when given explicitly.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mode":
			cfg.Mode = *mode
		case "channel":
			cfg.Channel = *channel
		case "threshold":
			cfg.Threshold = *threshold
		case "prefilter":
			cfg.PreFilter.Enabled = *prefilter
		case "parallel":
			cfg.Parallel = *parallel
		case "workers":
			cfg.Workers = *workers
		case "annotate":
			cfg.AnnotatePath = *annotate
		case "db":
			cfg.DBPath = *dbPath
		case "debug":
			cfg.Debug = *debugFlag
		case "log-format":
			cfg.LogFormat = *logFormat
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !*screen && *imagePath == "" {
		return fmt.Errorf("usage: pixel-match -template <file> (-image <file> | -screen)")
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(level, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c, err := app.BuildContainer(cfg, logger, *imagePath, *tmplPath, *screen)
	if err != nil {
		return err
	}
	defer c.Close()
	_, err = c.Run(ctx, stdout)
	return err
}
