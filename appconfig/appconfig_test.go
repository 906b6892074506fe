package appconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/typedrat/phosphor/engine"
)

func TestDefaultConfigHasSensibleDefaults(t *testing.T) {
	cfg := Default()
	if cfg.DefaultPhosphor == "" {
		t.Fatal("expected a non-empty default phosphor designation")
	}
	if cfg.DefaultSampleRate <= 0 {
		t.Fatalf("DefaultSampleRate = %v, want > 0", cfg.DefaultSampleRate)
	}
	if cfg.ViewportScale <= 0 {
		t.Fatalf("ViewportScale = %v, want > 0", cfg.ViewportScale)
	}
}

func TestLoadParsesYAMLAndOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "render.yaml")
	content := `
default_phosphor: P7
default_sample_rate: 48000
viewport_scale: 0.75
beam:
  sigma_core: 0.002
  sigma_halo: 0.02
  halo_fraction: 0.2
scatter:
  threshold: 0.5
  sigma: 3.0
  intensity: 0.4
composite:
  exposure: 1.5
  tonemap: aces
  tint: [1.0, 0.95, 0.9]
  curvature: 0.1
  edge_falloff: 0.3
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.DefaultPhosphor != "P7" {
		t.Fatalf("DefaultPhosphor = %q, want P7", cfg.DefaultPhosphor)
	}
	if cfg.Composite.Tonemap != "aces" {
		t.Fatalf("Tonemap = %q, want aces", cfg.Composite.Tonemap)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "render.yaml")
	content := "default_phosphor: P7\nbogus_field: 1\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an unknown field under strict decoding")
	}
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	if _, err := Load("/nonexistent/render.yaml"); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestCompositeParamsResolvesTonemapMode(t *testing.T) {
	cfg := Default()
	cfg.Composite.Tonemap = "clamp"
	params, err := cfg.CompositeParams()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params.Mode != engine.TonemapClamp {
		t.Fatalf("Mode = %v, want TonemapClamp", params.Mode)
	}
}

func TestCompositeParamsRejectsUnknownTonemap(t *testing.T) {
	cfg := Default()
	cfg.Composite.Tonemap = "bogus"
	if _, err := cfg.CompositeParams(); err == nil {
		t.Fatal("expected an error for an unknown tonemap mode")
	}
}

func TestBeamParamsConversion(t *testing.T) {
	cfg := Default()
	bp := cfg.BeamParams()
	if bp.SigmaCore != cfg.Beam.SigmaCore || bp.SigmaHalo != cfg.Beam.SigmaHalo {
		t.Fatalf("BeamParams did not round-trip: %+v vs %+v", bp, cfg.Beam)
	}
}
