package restlog

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the recorder settings. It can be loaded from a YAML file.
type Config struct {
	// OutputDir is where request logs are written.
	OutputDir string `yaml:"output_dir"`
	// TestRoot is the path segment where test paths in run commands start.
	TestRoot string `yaml:"test_root"`
	// Command is the program and leading arguments of the run command in the log header.
	Command           string `yaml:"run_command"`
	CollapseThreshold int    `yaml:"collapse_threshold"`
	// Timezone is the IANA name of the zone that timestamps are shown in.
	Timezone        string `yaml:"timezone"`
	AttachmentLabel string `yaml:"attachment_label"`
	// SkipEmpty disables writing a log for a failed test that made no requests. By
	// default such a test still gets a log with the run command and failure message.
	SkipEmpty bool `yaml:"skip_empty"`
}

func DefaultConfig() Config {
	return Config{
		OutputDir:         "_output",
		TestRoot:          "tests",
		Command:           "request-log-runner",
		CollapseThreshold: DefaultCollapseThreshold,
		Timezone:          "UTC",
		AttachmentLabel:   "Request Log",
	}
}

// LoadConfig reads settings from a YAML file on top of DefaultConfig. An empty path
// returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output_dir is required")
	}
	if c.CollapseThreshold < 0 {
		return fmt.Errorf("collapse_threshold must not be negative, got %d", c.CollapseThreshold)
	}
	if _, err := c.location(); err != nil {
		return err
	}
	return nil
}

func (c Config) location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Renderer returns a Renderer with the display settings of c.
func (c Config) Renderer() (Renderer, error) {
	loc, err := c.location()
	if err != nil {
		return Renderer{}, err
	}
	return Renderer{CollapseThreshold: c.CollapseThreshold, Location: loc}, nil
}
