// Package nvconfig loads navani.yaml. Every field is optional; a missing
// file yields DefaultConfig.
package nvconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
	"oss.terrastruct.com/xdefer"
	"oss.terrastruct.com/xos"

	"oss.terrastruct.com/navani/nvformat"
	"oss.terrastruct.com/navani/nvgeom"
	"oss.terrastruct.com/navani/nvlayout"
	"oss.terrastruct.com/navani/nvrenderers/nvthemes"
	"oss.terrastruct.com/navani/nvrouter"
)

// FileName is looked up in the working directory when no path is given.
const FileName = "navani.yaml"

type Config struct {
	Style    StyleConfig    `yaml:"style"`
	Layout   LayoutConfig   `yaml:"layout"`
	Geometry GeometryConfig `yaml:"geometry"`
	Render   RenderConfig   `yaml:"render"`
	Library  LibraryConfig  `yaml:"library"`
	Share    ShareConfig    `yaml:"share"`
	Watch    WatchConfig    `yaml:"watch"`
}

type StyleConfig struct {
	Theme string `yaml:"theme"`
	// IncludeStyle writes icon and color attributes when formatting.
	IncludeStyle bool `yaml:"include_style"`
}

type LayoutConfig struct {
	ColumnSpacing float64 `yaml:"column_spacing"`
	RowSpacing    float64 `yaml:"row_spacing"`
	Padding       float64 `yaml:"padding"`
	MaxPasses     int     `yaml:"max_passes"`
}

type GeometryConfig struct {
	GapThreshold     float64 `yaml:"gap_threshold"`
	OverlapTolerance float64 `yaml:"overlap_tolerance"`
	DominanceRatio   float64 `yaml:"dominance_ratio"`
	Clearance        float64 `yaml:"clearance"`
	SelfLoop         float64 `yaml:"self_loop"`
	LaneStep         float64 `yaml:"lane_step"`
}

type RenderConfig struct {
	Pad   int64   `yaml:"pad"`
	Scale float64 `yaml:"scale"`
	// Measure sizes tables to their text instead of the default width.
	Measure bool `yaml:"measure"`
}

type LibraryConfig struct {
	Path string `yaml:"path"`
}

type ShareConfig struct {
	BaseURL string `yaml:"base_url"`
}

type WatchConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	Browser bool   `yaml:"browser"`
}

func DefaultConfig() *Config {
	g := nvgeom.DefaultOptions
	l := nvlayout.DefaultOptions
	return &Config{
		Style: StyleConfig{
			Theme:        nvthemes.Light.Name,
			IncludeStyle: nvformat.DefaultOptions.IncludeStyle,
		},
		Layout: LayoutConfig{
			ColumnSpacing: l.ColumnSpacing,
			RowSpacing:    l.RowSpacing,
			Padding:       l.Padding,
			MaxPasses:     l.MaxPasses,
		},
		Geometry: GeometryConfig{
			GapThreshold:     g.GapThreshold,
			OverlapTolerance: g.OverlapTolerance,
			DominanceRatio:   g.DominanceRatio,
			Clearance:        g.Clearance,
			SelfLoop:         g.SelfLoop,
			LaneStep:         nvrouter.DefaultOptions.LaneStep,
		},
		Render: RenderConfig{
			Pad:     60,
			Scale:   1,
			Measure: true,
		},
		Share: ShareConfig{
			BaseURL: "https://navani.terrastruct.com/",
		},
		Watch: WatchConfig{
			Host:    "localhost",
			Port:    0,
			Browser: true,
		},
	}
}

// DefaultLibraryPath is library.json in the user config directory.
func DefaultLibraryPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config dir: %w", err)
	}
	return filepath.Join(base, "navani", "library.json"), nil
}

// Load reads path from fs on top of DefaultConfig. A missing file is not an
// error unless required is set.
func Load(fs afero.Fs, path string, required bool) (_ *Config, err error) {
	defer xdefer.Errorf(&err, "failed to load config %s", path)

	cfg := DefaultConfig()
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := nvthemes.Find(c.Style.Theme); err != nil {
		return err
	}
	if c.Layout.MaxPasses < 0 {
		return fmt.Errorf("layout.max_passes must not be negative: %d", c.Layout.MaxPasses)
	}
	if c.Render.Scale <= 0 {
		return fmt.Errorf("render.scale must be positive: %v", c.Render.Scale)
	}
	if c.Watch.Port < 0 || c.Watch.Port > 65535 {
		return fmt.Errorf("watch.port out of range: %d", c.Watch.Port)
	}
	return nil
}

// ApplyEnv overrides fields from NAVANI_THEME, NAVANI_LIBRARY,
// NAVANI_SHARE_URL, NAVANI_HOST and NAVANI_PORT.
func (c *Config) ApplyEnv(env *xos.Env) error {
	if v := env.Getenv("NAVANI_THEME"); v != "" {
		c.Style.Theme = v
	}
	if v := env.Getenv("NAVANI_LIBRARY"); v != "" {
		c.Library.Path = v
	}
	if v := env.Getenv("NAVANI_SHARE_URL"); v != "" {
		c.Share.BaseURL = v
	}
	if v := env.Getenv("NAVANI_HOST"); v != "" {
		c.Watch.Host = v
	}
	if v := env.Getenv("NAVANI_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf(`invalid environment variable NAVANI_PORT. Expected int. Found "%s".`, v)
		}
		c.Watch.Port = port
	}
	return c.Validate()
}

func (c *Config) Theme() *nvthemes.Theme {
	t, err := nvthemes.Find(c.Style.Theme)
	if err != nil {
		return &nvthemes.Light
	}
	return t
}

func (c *Config) FormatOptions() *nvformat.Options {
	return &nvformat.Options{IncludeStyle: c.Style.IncludeStyle}
}

func (c *Config) LayoutOptions() *nvlayout.Options {
	return &nvlayout.Options{
		ColumnSpacing: c.Layout.ColumnSpacing,
		RowSpacing:    c.Layout.RowSpacing,
		Padding:       c.Layout.Padding,
		MaxPasses:     c.Layout.MaxPasses,
	}
}

func (c *Config) GeometryOptions() *nvgeom.Options {
	return &nvgeom.Options{
		GapThreshold:     c.Geometry.GapThreshold,
		OverlapTolerance: c.Geometry.OverlapTolerance,
		DominanceRatio:   c.Geometry.DominanceRatio,
		Clearance:        c.Geometry.Clearance,
		SelfLoop:         c.Geometry.SelfLoop,
	}
}

func (c *Config) RouterOptions() *nvrouter.Options {
	o := nvrouter.DefaultOptions
	o.LaneStep = c.Geometry.LaneStep
	o.Geometry = c.GeometryOptions()
	return &o
}

// LibraryPath is library.path or DefaultLibraryPath when unset.
func (c *Config) LibraryPath() (string, error) {
	if c.Library.Path != "" {
		return c.Library.Path, nil
	}
	return DefaultLibraryPath()
}
