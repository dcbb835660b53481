package config

import (
	"encoding/json"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"github.com/soocke/pixel-match-go/domain/match"
)

// PreFilter mirrors match.PreFilterOptions for file storage.
type PreFilter struct {
	Enabled           bool    `json:"enabled" yaml:"enabled"`
	MeanThreshold     float64 `json:"mean_threshold" yaml:"mean_threshold"`
	VarianceThreshold float64 `json:"variance_threshold" yaml:"variance_threshold"`
	EdgeThreshold     float64 `json:"edge_threshold" yaml:"edge_threshold"`
}

// Heuristics mirrors match.Heuristics for file storage.
type Heuristics struct {
	SlidingMaxCandidates   int     `json:"sliding_max_candidates" yaml:"sliding_max_candidates"`
	SlidingMaxTemplate     int     `json:"sliding_max_template" yaml:"sliding_max_template"`
	FourierMinTemplate     int     `json:"fourier_min_template" yaml:"fourier_min_template"`
	FourierMinCandidates   int     `json:"fourier_min_candidates" yaml:"fourier_min_candidates"`
	RatioSliding           float64 `json:"ratio_sliding" yaml:"ratio_sliding"`
	RatioFourier           float64 `json:"ratio_fourier" yaml:"ratio_fourier"`
	TieBreakCandidates     int     `json:"tie_break_candidates" yaml:"tie_break_candidates"`
	PreFilterMinCandidates int     `json:"prefilter_min_candidates" yaml:"prefilter_min_candidates"`
	PreFilterMaxTrivial    int     `json:"prefilter_max_trivial" yaml:"prefilter_max_trivial"`
	PreFilterMinTemplate   int     `json:"prefilter_min_template" yaml:"prefilter_min_template"`
	PreFilterMinImage      int     `json:"prefilter_min_image" yaml:"prefilter_min_image"`
	ClusterRadius          int     `json:"cluster_radius" yaml:"cluster_radius"`
}

// Config holds runtime configuration for matching and app behavior.
// Fields may be loaded from a JSON, YAML or INI file and overridden by
// command-line flags.
type Config struct {
	Debug     bool   `json:"debug" yaml:"debug"`
	LogFormat string `json:"log_format" yaml:"log_format"` // "json" or "text"

	// Matching parameters
	Mode      string    `json:"mode" yaml:"mode"`
	Channel   string    `json:"channel" yaml:"channel"`
	Threshold float64   `json:"threshold" yaml:"threshold"`
	PreFilter PreFilter `json:"prefilter" yaml:"prefilter"`
	Parallel  bool      `json:"parallel" yaml:"parallel"`
	Workers   int       `json:"workers" yaml:"workers"`

	Heuristics Heuristics `json:"heuristics" yaml:"heuristics"`

	// Outputs
	DBPath       string `json:"db_path" yaml:"db_path"`
	AnnotatePath string `json:"annotate_path" yaml:"annotate_path"`

	// Selection limits the search to part of the image: a screen region when
	// capturing, a crop when reading a file. Zero size means everything.
	SelectionX int `json:"selection_x" yaml:"selection_x"`
	SelectionY int `json:"selection_y" yaml:"selection_y"`
	SelectionW int `json:"selection_w" yaml:"selection_w"`
	SelectionH int `json:"selection_h" yaml:"selection_h"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	opts := match.DefaultOptions()
	h := match.DefaultHeuristics()
	return &Config{
		LogFormat: "json",
		Mode:      opts.Mode.String(),
		Channel:   match.ChannelAll.String(),
		Threshold: opts.Threshold,
		PreFilter: PreFilter{
			Enabled:           opts.PreFilter.Enabled,
			MeanThreshold:     opts.PreFilter.MeanThreshold,
			VarianceThreshold: opts.PreFilter.VarianceThreshold,
			EdgeThreshold:     opts.PreFilter.EdgeThreshold,
		},
		Heuristics: Heuristics{
			SlidingMaxCandidates:   h.SlidingMaxCandidates,
			SlidingMaxTemplate:     h.SlidingMaxTemplate,
			FourierMinTemplate:     h.FourierMinTemplate,
			FourierMinCandidates:   h.FourierMinCandidates,
			RatioSliding:           h.RatioSliding,
			RatioFourier:           h.RatioFourier,
			TieBreakCandidates:     h.TieBreakCandidates,
			PreFilterMinCandidates: h.PreFilterMinCandidates,
			PreFilterMaxTrivial:    h.PreFilterMaxTrivial,
			PreFilterMinTemplate:   h.PreFilterMinTemplate,
			PreFilterMinImage:      h.PreFilterMinImage,
			ClusterRadius:          h.ClusterRadius,
		},
	}
}

// Validate clamps/normalizes values to safe ranges. Unknown mode or channel
// names are reported as errors.
func (c *Config) Validate() error {
	d := DefaultConfig()
	if c.Threshold < -1 || c.Threshold > 1 || math.IsNaN(c.Threshold) {
		c.Threshold = d.Threshold
	}
	if c.PreFilter.MeanThreshold < 0 {
		c.PreFilter.MeanThreshold = d.PreFilter.MeanThreshold
	}
	if c.PreFilter.VarianceThreshold < 0 || c.PreFilter.VarianceThreshold > 1 {
		c.PreFilter.VarianceThreshold = d.PreFilter.VarianceThreshold
	}
	if c.PreFilter.EdgeThreshold < 0 {
		c.PreFilter.EdgeThreshold = d.PreFilter.EdgeThreshold
	}
	if c.Workers < 0 {
		c.Workers = 0
	}
	if c.Heuristics.ClusterRadius < 0 {
		c.Heuristics.ClusterRadius = d.Heuristics.ClusterRadius
	}
	if c.Heuristics.RatioSliding <= 0 || c.Heuristics.RatioFourier < c.Heuristics.RatioSliding {
		c.Heuristics.RatioSliding = d.Heuristics.RatioSliding
		c.Heuristics.RatioFourier = d.Heuristics.RatioFourier
	}
	if c.SelectionW < 0 || c.SelectionH < 0 {
		c.SelectionW, c.SelectionH = 0, 0
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
		c.LogFormat = strings.ToLower(c.LogFormat)
	default:
		c.LogFormat = d.LogFormat
	}
	if _, err := match.ParseMode(c.Mode); err != nil {
		return err
	}
	if _, err := match.ParseChannel(c.Channel); err != nil {
		return err
	}
	return nil
}

// Load reads configuration from path, picking the format from the file
// extension (.json, .yaml/.yml, .ini). If the file does not exist it returns
// DefaultConfig(). On decode error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".ini":
		err = loadINI(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return DefaultConfig(), fmt.Errorf("failed to load config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// loadINI overlays the [match], [prefilter], [heuristics] and [output]
// sections onto cfg. Missing keys keep the current value.
func loadINI(data []byte, cfg *Config) error {
	f, err := ini.Load(data)
	if err != nil {
		return err
	}
	m := f.Section("match")
	cfg.Debug = m.Key("debug").MustBool(cfg.Debug)
	cfg.LogFormat = m.Key("log_format").MustString(cfg.LogFormat)
	cfg.Mode = m.Key("mode").MustString(cfg.Mode)
	cfg.Channel = m.Key("channel").MustString(cfg.Channel)
	cfg.Threshold = m.Key("threshold").MustFloat64(cfg.Threshold)
	cfg.Parallel = m.Key("parallel").MustBool(cfg.Parallel)
	cfg.Workers = m.Key("workers").MustInt(cfg.Workers)

	p := f.Section("prefilter")
	cfg.PreFilter.Enabled = p.Key("enabled").MustBool(cfg.PreFilter.Enabled)
	cfg.PreFilter.MeanThreshold = p.Key("mean_threshold").MustFloat64(cfg.PreFilter.MeanThreshold)
	cfg.PreFilter.VarianceThreshold = p.Key("variance_threshold").MustFloat64(cfg.PreFilter.VarianceThreshold)
	cfg.PreFilter.EdgeThreshold = p.Key("edge_threshold").MustFloat64(cfg.PreFilter.EdgeThreshold)

	h := f.Section("heuristics")
	hc := &cfg.Heuristics
	hc.SlidingMaxCandidates = h.Key("sliding_max_candidates").MustInt(hc.SlidingMaxCandidates)
	hc.SlidingMaxTemplate = h.Key("sliding_max_template").MustInt(hc.SlidingMaxTemplate)
	hc.FourierMinTemplate = h.Key("fourier_min_template").MustInt(hc.FourierMinTemplate)
	hc.FourierMinCandidates = h.Key("fourier_min_candidates").MustInt(hc.FourierMinCandidates)
	hc.RatioSliding = h.Key("ratio_sliding").MustFloat64(hc.RatioSliding)
	hc.RatioFourier = h.Key("ratio_fourier").MustFloat64(hc.RatioFourier)
	hc.TieBreakCandidates = h.Key("tie_break_candidates").MustInt(hc.TieBreakCandidates)
	hc.PreFilterMinCandidates = h.Key("prefilter_min_candidates").MustInt(hc.PreFilterMinCandidates)
	hc.PreFilterMaxTrivial = h.Key("prefilter_max_trivial").MustInt(hc.PreFilterMaxTrivial)
	hc.PreFilterMinTemplate = h.Key("prefilter_min_template").MustInt(hc.PreFilterMinTemplate)
	hc.PreFilterMinImage = h.Key("prefilter_min_image").MustInt(hc.PreFilterMinImage)
	hc.ClusterRadius = h.Key("cluster_radius").MustInt(hc.ClusterRadius)

	o := f.Section("output")
	cfg.DBPath = o.Key("db_path").MustString(cfg.DBPath)
	cfg.AnnotatePath = o.Key("annotate_path").MustString(cfg.AnnotatePath)
	cfg.SelectionX = o.Key("selection_x").MustInt(cfg.SelectionX)
	cfg.SelectionY = o.Key("selection_y").MustInt(cfg.SelectionY)
	cfg.SelectionW = o.Key("selection_w").MustInt(cfg.SelectionW)
	cfg.SelectionH = o.Key("selection_h").MustInt(cfg.SelectionH)
	return nil
}

// Save writes the configuration to path, as YAML for .yaml/.yml and JSON
// otherwise.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		enc := yaml.NewEncoder(f)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	}
}

// MatchOptions converts the matching section to core options.
func (c *Config) MatchOptions() (match.Options, error) {
	mode, err := match.ParseMode(c.Mode)
	if err != nil {
		return match.Options{}, err
	}
	return match.Options{
		Mode:      mode,
		Threshold: c.Threshold,
		PreFilter: match.PreFilterOptions{
			Enabled:           c.PreFilter.Enabled,
			MeanThreshold:     c.PreFilter.MeanThreshold,
			VarianceThreshold: c.PreFilter.VarianceThreshold,
			EdgeThreshold:     c.PreFilter.EdgeThreshold,
		},
	}, nil
}

func (c *Config) MatchHeuristics() match.Heuristics {
	h := c.Heuristics
	return match.Heuristics{
		SlidingMaxCandidates:   h.SlidingMaxCandidates,
		SlidingMaxTemplate:     h.SlidingMaxTemplate,
		FourierMinTemplate:     h.FourierMinTemplate,
		FourierMinCandidates:   h.FourierMinCandidates,
		RatioSliding:           h.RatioSliding,
		RatioFourier:           h.RatioFourier,
		TieBreakCandidates:     h.TieBreakCandidates,
		PreFilterMinCandidates: h.PreFilterMinCandidates,
		PreFilterMaxTrivial:    h.PreFilterMaxTrivial,
		PreFilterMinTemplate:   h.PreFilterMinTemplate,
		PreFilterMinImage:      h.PreFilterMinImage,
		ClusterRadius:          h.ClusterRadius,
	}
}

func (c *Config) MatchChannel() (match.Channel, error) {
	return match.ParseChannel(c.Channel)
}

// Selection returns the configured region, empty when none is set.
func (c *Config) Selection() image.Rectangle {
	return image.Rect(c.SelectionX, c.SelectionY, c.SelectionX+c.SelectionW, c.SelectionY+c.SelectionH)
}

func (c *Config) Parallelism() match.Parallelism {
	return match.Parallelism{Workers: c.Workers}
}
