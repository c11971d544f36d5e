// Package config holds the settings of a verification run. The defaults
// reproduce the fixed behaviour of a bare invocation; a YAML file can
// override any of them.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported engines.
const (
	EnginePlaywright = "playwright"
	EngineChromedp   = "chromedp"
)

// Config holds all run configuration.
type Config struct {
	TargetURL string          `yaml:"target_url"`
	Engine    string          `yaml:"engine"`
	Headless  bool            `yaml:"headless"`
	Viewport  ViewportConfig  `yaml:"viewport"`
	Timeouts  TimeoutConfig   `yaml:"timeouts"`
	Cell      CellConfig      `yaml:"cell"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Log       LogConfig       `yaml:"log"`

	// ChromePath overrides the Chrome binary used by the chromedp engine.
	ChromePath string `yaml:"chrome_path"`
}

type ViewportConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type TimeoutConfig struct {
	Trigger time.Duration `yaml:"trigger"`
	Popover time.Duration `yaml:"popover"`
}

// CellConfig selects the grid cell that is hovered.
type CellConfig struct {
	Row int `yaml:"row"`
	Col int `yaml:"col"`
}

type ArtifactsConfig struct {
	Dir      string `yaml:"dir"`
	Initial  string `yaml:"initial"`
	Open     string `yaml:"open"`
	Error    string `yaml:"error"`
	Manifest string `yaml:"manifest"`
}

type LogConfig struct {
	File  string `yaml:"file"`
	Debug bool   `yaml:"debug"`
}

// Default returns the configuration of a bare invocation.
func Default() *Config {
	return &Config{
		TargetURL: "http://localhost:5173",
		Engine:    EnginePlaywright,
		Headless:  true,
		Viewport:  ViewportConfig{Width: 1280, Height: 720},
		Timeouts: TimeoutConfig{
			Trigger: 10 * time.Second,
			Popover: 2 * time.Second,
		},
		Cell: CellConfig{Row: 2, Col: 2},
		Artifacts: ArtifactsConfig{
			Dir:     ".",
			Initial: "verification_initial.png",
			Open:    "verification_open.png",
			Error:   "verification_error.png",
		},
	}
}

// Load overlays the YAML file at path on Default.
func Load(path string) (*Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every problem with c at once.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.TargetURL) == "" {
		errs = append(errs, errors.New("target_url is required"))
	}
	switch c.Engine {
	case EnginePlaywright, EngineChromedp:
	default:
		errs = append(errs, fmt.Errorf("unknown engine %q", c.Engine))
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		errs = append(errs, errors.New("viewport must be positive"))
	}
	if c.Timeouts.Trigger <= 0 || c.Timeouts.Popover <= 0 {
		errs = append(errs, errors.New("timeouts must be positive"))
	}
	if c.Cell.Row < 0 || c.Cell.Col < 0 {
		errs = append(errs, errors.New("cell row and col must not be negative"))
	}
	if c.Artifacts.Initial == "" || c.Artifacts.Open == "" || c.Artifacts.Error == "" {
		errs = append(errs, errors.New("artifact file names are required"))
	}
	return errors.Join(errs...)
}
