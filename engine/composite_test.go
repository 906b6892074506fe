package engine

import "testing"

func defaultCompositeParams() CompositeParams {
	return CompositeParams{
		Exposure:    1.0,
		Mode:        TonemapNone,
		Tint:        Tint{1, 1, 1},
		EdgeFalloff: 0,
		Curvature:   0,
		ScatterMix:  1.0,
	}
}

func TestCompositePassthroughWithNoneModeAndNoFalloff(t *testing.T) {
	hdr := NewHDRBuffer(4, 4)
	hdr.set(2, 2, 0.5, 0.25, 0.1)
	out := NewCompositeBuffer(4, 4)

	Composite(hdr, nil, defaultCompositeParams(), out)

	r, g, b := out.At(2, 2)
	if diff := r - 0.5; diff > 1e-5 || diff < -1e-5 {
		t.Fatalf("r = %v, want 0.5", r)
	}
	if diff := g - 0.25; diff > 1e-5 || diff < -1e-5 {
		t.Fatalf("g = %v, want 0.25", g)
	}
	if diff := b - 0.1; diff > 1e-5 || diff < -1e-5 {
		t.Fatalf("b = %v, want 0.1", b)
	}
}

func TestCompositeReinhardCompressesHighValues(t *testing.T) {
	hdr := NewHDRBuffer(2, 2)
	hdr.set(0, 0, 10.0, 10.0, 10.0)
	out := NewCompositeBuffer(2, 2)

	params := defaultCompositeParams()
	params.Mode = TonemapReinhard
	Composite(hdr, nil, params, out)

	r, _, _ := out.At(0, 0)
	if r >= 1.0 {
		t.Fatalf("reinhard should compress toward 1, got %v", r)
	}
	if r <= 0 {
		t.Fatalf("expected positive compressed value, got %v", r)
	}
}

func TestCompositeClampCapsAtOne(t *testing.T) {
	hdr := NewHDRBuffer(2, 2)
	hdr.set(0, 0, 5.0, 5.0, 5.0)
	out := NewCompositeBuffer(2, 2)

	params := defaultCompositeParams()
	params.Mode = TonemapClamp
	Composite(hdr, nil, params, out)

	r, g, b := out.At(0, 0)
	if r != 1 || g != 1 || b != 1 {
		t.Fatalf("expected clamp to 1, got r=%v g=%v b=%v", r, g, b)
	}
}

func TestCompositeEdgeFalloffDimsCorners(t *testing.T) {
	hdr := NewHDRBuffer(10, 10)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			hdr.set(x, y, 1.0, 1.0, 1.0)
		}
	}
	out := NewCompositeBuffer(10, 10)

	params := defaultCompositeParams()
	params.EdgeFalloff = 1.0
	Composite(hdr, nil, params, out)

	centerR, _, _ := out.At(5, 5)
	cornerR, _, _ := out.At(0, 0)
	if cornerR >= centerR {
		t.Fatalf("corner (%v) should be dimmer than center (%v) under edge falloff", cornerR, centerR)
	}
}

func TestCompositeTintModulatesChannelsIndependently(t *testing.T) {
	hdr := NewHDRBuffer(2, 2)
	hdr.set(0, 0, 1.0, 1.0, 1.0)
	out := NewCompositeBuffer(2, 2)

	params := defaultCompositeParams()
	params.Tint = Tint{1.0, 0.5, 0.0}
	Composite(hdr, nil, params, out)

	r, g, b := out.At(0, 0)
	if diff := r - 1.0; diff > 1e-5 || diff < -1e-5 {
		t.Fatalf("r = %v, want ~1.0", r)
	}
	if diff := g - 0.5; diff > 1e-5 || diff < -1e-5 {
		t.Fatalf("g = %v, want ~0.5", g)
	}
	if b != 0 {
		t.Fatalf("b = %v, want 0", b)
	}
}

func TestCompositeBlendsScatterByIntensityWeight(t *testing.T) {
	hdr := NewHDRBuffer(4, 4)
	scatter := newScatterBuffer(2, 2)
	scatter.set(1, 1, 1.0, 1.0, 1.0)
	out := NewCompositeBuffer(4, 4)

	params := defaultCompositeParams()
	params.ScatterMix = 0.5
	Composite(hdr, scatter, params, out)

	r, _, _ := out.At(2, 2)
	if r <= 0 {
		t.Fatalf("expected scatter contribution to blend in, got %v", r)
	}
}

func TestTonemapACESStaysWithinUnitRange(t *testing.T) {
	for _, v := range []float32{0, 0.5, 1.0, 10.0, 100.0} {
		r, _, _ := tonemap(TonemapACES, v, v, v)
		if r < 0 || r > 1 {
			t.Fatalf("ACES(%v) = %v, out of [0,1]", v, r)
		}
	}
}

func TestTonemapModeStringer(t *testing.T) {
	cases := map[TonemapMode]string{
		TonemapNone:     "none",
		TonemapClamp:    "clamp",
		TonemapReinhard: "reinhard",
		TonemapACES:     "aces",
	}
	for mode, want := range cases {
		if got := mode.String(); got != want {
			t.Fatalf("%v.String() = %q, want %q", int(mode), got, want)
		}
	}
}
