// Package config loads the YAML configuration of the flame chart viewers.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"honnef.co/go/flamechart"
	"honnef.co/go/flamechart/cluster"
	"honnef.co/go/flamechart/render"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Styles  flamechart.Styles  `yaml:"styles"`
	Options render.Options     `yaml:"options"`
	Headers flamechart.Headers `yaml:"headers"`
	// Colors maps node types to colors.
	Colors     map[string]string `yaml:"colors"`
	Clusterize Clusterize        `yaml:"clusterize"`
	Logging    Logging           `yaml:"logging"`
	Metrics    Metrics           `yaml:"metrics"`
}

type Clusterize struct {
	// Condition is an expr-lang expression over prev and node that decides whether two neighboring nodes may be
	// merged. Empty means nodes of the same color and type merge.
	Condition string `yaml:"condition"`
}

type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Metrics struct {
	// Listen is the address to serve Prometheus metrics on. Empty disables the endpoint.
	Listen string `yaml:"listen"`
}

func Default() Config {
	settings := flamechart.DefaultSettings()
	return Config{
		Styles:  settings.Styles,
		Options: settings.Options,
		Headers: flamechart.DefaultHeaders(),
		Logging: Logging{Level: "info", Format: "console"},
	}
}

// Load reads the configuration at path. Keys missing from the file keep their defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("couldn't load config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML document on top of the defaults. Unknown keys are errors.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values that YAML decoding can't.
func (cfg Config) Validate() error {
	if _, err := cfg.Logging.level(); err != nil {
		return err
	}
	switch cfg.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log format %q", cfg.Logging.Format)
	}
	if _, err := cluster.CompileCondition(cfg.Clusterize.Condition); err != nil {
		return err
	}
	return nil
}

func (cfg Config) Settings() flamechart.Settings {
	return flamechart.Settings{Styles: cfg.Styles, Options: cfg.Options}
}

// Apply copies the configured settings, headers, colors and merge condition into opts.
func (cfg Config) Apply(opts *flamechart.Options) error {
	merge, err := cluster.CompileCondition(cfg.Clusterize.Condition)
	if err != nil {
		return err
	}
	opts.Settings = cfg.Settings()
	opts.Headers = cfg.Headers
	opts.Colors = cfg.Colors
	opts.Merge = merge
	return nil
}

func (l Logging) level() (zapcore.Level, error) {
	if l.Level == "" {
		return zapcore.InfoLevel, nil
	}
	lvl, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return 0, fmt.Errorf("invalid log level: %w", err)
	}
	return lvl, nil
}

// Build returns a logger writing to stderr.
func (l Logging) Build(opts ...zap.Option) (*zap.Logger, error) {
	lvl, err := l.level()
	if err != nil {
		return nil, err
	}
	var zc zap.Config
	if l.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build(opts...)
}
