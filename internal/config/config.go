// Package config reads and writes the YAML settings file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"visual-artifacts/internal/calibration"
)

const DefaultPath = "config.yaml"

var ErrNotFound = errors.New("configuration file not found")

type Config struct {
	Assets  AssetsConfig  `yaml:"assets"`
	Effects EffectsConfig `yaml:"effects"`
	Render  RenderConfig  `yaml:"render"`
}

type AssetsConfig struct {
	Videos   string `yaml:"assets_videos"`
	Audios   string `yaml:"assets_audios"`
	BuildDir string `yaml:"build_dir"`
	Webcam   int    `yaml:"webcam"`
	UseGPU   bool   `yaml:"use_gpu"`
}

type EffectsConfig struct {
	Default     string            `yaml:"default"`
	Calibration CalibrationConfig `yaml:"calibration"`
}

type CalibrationConfig struct {
	Policy     string `yaml:"policy"`    // once, periodic
	Aggregate  string `yaml:"aggregate"` // mean, median
	MinSamples int    `yaml:"min_samples"`
	Interval   int    `yaml:"interval"`
	HistoryCap int    `yaml:"history_cap"` // 0 is unbounded
}

type RenderConfig struct {
	MaxSeconds int    `yaml:"max_seconds"`
	Codec      string `yaml:"codec"`
}

func Default() *Config {
	return &Config{
		Assets: AssetsConfig{
			Videos:   "assets/videos/",
			Audios:   "assets/audios/",
			BuildDir: "build",
		},
		Effects: EffectsConfig{
			Default: "None",
			Calibration: CalibrationConfig{
				Policy:     "periodic",
				Aggregate:  "mean",
				MinSamples: 10,
				Interval:   10,
			},
		},
		Render: RenderConfig{
			MaxSeconds: 60,
			Codec:      "avc1",
		},
	}
}

// Init writes the defaults to path, replacing any existing file.
func Init(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.Save(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads path over the defaults. A missing file yields ErrNotFound.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadOrInit falls back to writing defaults when path does not exist.
func LoadOrInit(path string) (cfg *Config, created bool, err error) {
	cfg, err = Load(path)
	if errors.Is(err, ErrNotFound) {
		cfg, err = Init(path)
		return cfg, err == nil, err
	}
	return cfg, false, err
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Assets.Videos == "" {
		return fmt.Errorf("assets.assets_videos is required")
	}
	if c.Assets.BuildDir == "" {
		return fmt.Errorf("assets.build_dir is required")
	}
	if c.Assets.Webcam < 0 {
		return fmt.Errorf("assets.webcam must be a non-negative device index, got %d", c.Assets.Webcam)
	}
	if c.Render.MaxSeconds <= 0 {
		return fmt.Errorf("render.max_seconds must be positive, got %d", c.Render.MaxSeconds)
	}
	if len(c.Render.Codec) != 4 {
		return fmt.Errorf("render.codec must be a four character code, got %q", c.Render.Codec)
	}
	if _, err := c.CalibrationConfig(); err != nil {
		return err
	}
	return nil
}

// CalibrationConfig converts the YAML block into tracker settings.
func (c *Config) CalibrationConfig() (calibration.Config, error) {
	policy, err := calibration.ParsePolicy(c.Effects.Calibration.Policy)
	if err != nil {
		return calibration.Config{}, err
	}
	aggregate, err := calibration.ParseAggregate(c.Effects.Calibration.Aggregate)
	if err != nil {
		return calibration.Config{}, err
	}

	out := calibration.Config{
		Policy:     policy,
		Aggregate:  aggregate,
		MinSamples: c.Effects.Calibration.MinSamples,
		Interval:   c.Effects.Calibration.Interval,
		HistoryCap: c.Effects.Calibration.HistoryCap,
	}
	if err := out.Validate(); err != nil {
		return calibration.Config{}, fmt.Errorf("effects.calibration: %w", err)
	}
	return out, nil
}

// VideoPath resolves an asset name, appending .mp4 when it has no extension.
func (c *Config) VideoPath(name string) string {
	if filepath.Ext(name) == "" {
		name += ".mp4"
	}
	return filepath.Join(c.Assets.Videos, name)
}

// Keys lists the settings accepted by Set.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	return keys
}

var setters = map[string]func(c *Config, v string) error{
	"assets.assets_videos": func(c *Config, v string) error { c.Assets.Videos = v; return nil },
	"assets.assets_audios": func(c *Config, v string) error { c.Assets.Audios = v; return nil },
	"assets.build_dir":     func(c *Config, v string) error { c.Assets.BuildDir = v; return nil },
	"assets.webcam":        func(c *Config, v string) error { return setInt(&c.Assets.Webcam, v) },
	"assets.use_gpu":       func(c *Config, v string) error { return setBool(&c.Assets.UseGPU, v) },
	"effects.default":      func(c *Config, v string) error { c.Effects.Default = v; return nil },
	"effects.calibration.policy": func(c *Config, v string) error {
		c.Effects.Calibration.Policy = v
		return nil
	},
	"effects.calibration.aggregate": func(c *Config, v string) error {
		c.Effects.Calibration.Aggregate = v
		return nil
	},
	"effects.calibration.min_samples": func(c *Config, v string) error { return setInt(&c.Effects.Calibration.MinSamples, v) },
	"effects.calibration.interval":    func(c *Config, v string) error { return setInt(&c.Effects.Calibration.Interval, v) },
	"effects.calibration.history_cap": func(c *Config, v string) error { return setInt(&c.Effects.Calibration.HistoryCap, v) },
	"render.max_seconds":              func(c *Config, v string) error { return setInt(&c.Render.MaxSeconds, v) },
	"render.codec":                    func(c *Config, v string) error { c.Render.Codec = v; return nil },
}

// aliases keep the short keys accepted by earlier releases.
var aliases = map[string]string{
	"assets_video":  "assets.assets_videos",
	"assets_videos": "assets.assets_videos",
	"assets_audios": "assets.assets_audios",
	"build_dir":     "assets.build_dir",
	"webcam":        "assets.webcam",
	"use_gpu":       "assets.use_gpu",
}

// Set updates one dotted key and revalidates. On error c is unchanged.
func (c *Config) Set(key, value string) error {
	k := strings.ToLower(strings.TrimSpace(key))
	if alias, ok := aliases[k]; ok {
		k = alias
	}

	set, ok := setters[k]
	if !ok {
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	next := *c
	if err := set(&next, value); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if err := next.Validate(); err != nil {
		return err
	}

	*c = next
	return nil
}

func setInt(dst *int, v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("expected an integer, got %q", v)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, v string) error {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("expected a boolean, got %q", v)
	}
	*dst = b
	return nil
}
