// Package appconfig loads the app-level render configuration: the
// UI-derived parameters from spec.md §4.4.6/§4.5 step 4 (beam splat
// shape, halation, exposure/tonemap, viewport geometry) plus the
// defaults that let a run reproduce without a live UI, distinct from the
// phosphor TOML database in package phosphor.
package appconfig

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/typedrat/phosphor/engine"
)

// Beam mirrors the [beam] section: the two-lobe deposition splat shape.
type Beam struct {
	SigmaCore    float32 `yaml:"sigma_core"`
	SigmaHalo    float32 `yaml:"sigma_halo"`
	HaloFraction float32 `yaml:"halo_fraction"`
}

// Scatter mirrors the [scatter] section: the halation pass parameters.
type Scatter struct {
	Threshold float32 `yaml:"threshold"`
	Sigma     float32 `yaml:"sigma"`
	Intensity float32 `yaml:"intensity"`
}

// Composite mirrors the [composite] section: exposure, tonemap, tint,
// curvature and edge falloff for the final pass.
type Composite struct {
	Exposure    float32    `yaml:"exposure"`
	Tonemap     string     `yaml:"tonemap"`
	Tint        [3]float32 `yaml:"tint"`
	Curvature   float32    `yaml:"curvature"`
	EdgeFalloff float32    `yaml:"edge_falloff"`
}

// Config is the full app-level render configuration file.
type Config struct {
	DefaultPhosphor   string    `yaml:"default_phosphor"`
	DefaultSampleRate float64   `yaml:"default_sample_rate"`
	ViewportScale     float64   `yaml:"viewport_scale"`
	Beam              Beam      `yaml:"beam"`
	Scatter           Scatter   `yaml:"scatter"`
	Composite         Composite `yaml:"composite"`
}

// Default returns the built-in configuration used when no --config file
// is given.
func Default() Config {
	return Config{
		DefaultPhosphor:   "P31",
		DefaultSampleRate: 96000,
		ViewportScale:     1.0,
		Beam:              Beam{SigmaCore: 0.0015, SigmaHalo: 0.01, HaloFraction: 0.15},
		Scatter:           Scatter{Threshold: 0.6, Sigma: 4.0, Intensity: 0.35},
		Composite: Composite{
			Exposure:    1.0,
			Tonemap:     "reinhard",
			Tint:        [3]float32{1, 1, 1},
			Curvature:   0,
			EdgeFalloff: 0.25,
		},
	}
}

// Load parses the render configuration at path with strict field checking
// so a typo'd key fails loudly rather than being silently ignored.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("appconfig: reading %s: %w", path, err)
	}

	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("appconfig: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// BeamParams converts the configured beam section to engine.BeamParams.
func (c Config) BeamParams() engine.BeamParams {
	return engine.BeamParams{
		SigmaCore:    c.Beam.SigmaCore,
		SigmaHalo:    c.Beam.SigmaHalo,
		HaloFraction: c.Beam.HaloFraction,
	}
}

// ScatterParams converts the configured scatter section to
// engine.ScatterParams.
func (c Config) ScatterParams() engine.ScatterParams {
	return engine.ScatterParams{
		Threshold: c.Scatter.Threshold,
		Sigma:     c.Scatter.Sigma,
		Intensity: c.Scatter.Intensity,
	}
}

// CompositeParams converts the configured composite section to
// engine.CompositeParams, resolving the tonemap name to its enum value.
func (c Config) CompositeParams() (engine.CompositeParams, error) {
	mode, err := parseTonemap(c.Composite.Tonemap)
	if err != nil {
		return engine.CompositeParams{}, err
	}
	return engine.CompositeParams{
		Exposure:    c.Composite.Exposure,
		Mode:        mode,
		Tint:        engine.Tint{R: c.Composite.Tint[0], G: c.Composite.Tint[1], B: c.Composite.Tint[2]},
		EdgeFalloff: c.Composite.EdgeFalloff,
		Curvature:   c.Composite.Curvature,
		ScatterMix:  c.Scatter.Intensity,
	}, nil
}

func parseTonemap(name string) (engine.TonemapMode, error) {
	switch name {
	case "", "none":
		return engine.TonemapNone, nil
	case "clamp":
		return engine.TonemapClamp, nil
	case "reinhard":
		return engine.TonemapReinhard, nil
	case "aces":
		return engine.TonemapACES, nil
	default:
		return 0, fmt.Errorf("appconfig: unknown tonemap mode %q", name)
	}
}
