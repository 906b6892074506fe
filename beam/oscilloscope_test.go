package beam

import (
	"math"
	"testing"
)

func TestOscilloscopeSineGeneratesCorrectRange(t *testing.T) {
	src := NewOscilloscopeSource(
		ChannelConfig{Waveform: Sine, Frequency: 1, Amplitude: 1},
		ChannelConfig{Waveform: Sine, Frequency: 1, Amplitude: 1, Phase: math.Pi / 2},
		1000,
	)
	samples := src.Generate(1000, State{})
	if len(samples) != 1000 {
		t.Fatalf("len = %d, want 1000", len(samples))
	}
	for _, s := range samples {
		if s.X < 0 || s.X > 1 || s.Y < 0 || s.Y > 1 {
			t.Fatalf("sample out of range: %+v", s)
		}
		if s.Intensity <= 0 {
			t.Fatalf("sample intensity should be > 0: %+v", s)
		}
	}
}

func TestOscilloscopeSineCosineMakesCircle(t *testing.T) {
	src := NewOscilloscopeSource(
		ChannelConfig{Waveform: Sine, Frequency: 1, Amplitude: 0.4},
		ChannelConfig{Waveform: Sine, Frequency: 1, Amplitude: 0.4, Phase: math.Pi / 2},
		1000,
	)
	samples := src.Generate(1000, State{})
	for _, s := range samples {
		dx, dy := float64(s.X)-0.5, float64(s.Y)-0.5
		r := math.Sqrt(dx*dx + dy*dy)
		if math.Abs(r-0.4) > 0.01 {
			t.Fatalf("r = %v, want ~0.4", r)
		}
	}
}

func TestOscilloscopeSquareWaveIsBinary(t *testing.T) {
	src := NewOscilloscopeSource(
		ChannelConfig{Waveform: Square, Frequency: 10, Amplitude: 1},
		ChannelConfig{Waveform: Sine, Frequency: 1, Amplitude: 1},
		10000,
	)
	samples := src.Generate(10000, State{})
	for _, s := range samples {
		if !(s.X < 0.01 || s.X > 0.99) {
			t.Fatalf("x = %v, not binary", s.X)
		}
	}
}

func TestOscilloscopeDTMatchesSampleRate(t *testing.T) {
	src := NewOscilloscopeSource(
		ChannelConfig{Waveform: Sine, Frequency: 1, Amplitude: 1},
		ChannelConfig{Waveform: Sine, Frequency: 1, Amplitude: 1},
		44100,
	)
	samples := src.Generate(100, State{})
	for _, s := range samples {
		if math.Abs(float64(s.DT)-1.0/44100.0) > 1e-9 {
			t.Fatalf("dt = %v, want ~%v", s.DT, 1.0/44100.0)
		}
	}
}

func TestOscilloscopePhaseContinuousAcrossBatches(t *testing.T) {
	src := NewOscilloscopeSource(
		ChannelConfig{Waveform: Sawtooth, Frequency: 5, Amplitude: 1},
		ChannelConfig{Waveform: Sine, Frequency: 1, Amplitude: 1},
		1000,
	)
	combined := NewOscilloscopeSource(
		ChannelConfig{Waveform: Sawtooth, Frequency: 5, Amplitude: 1},
		ChannelConfig{Waveform: Sine, Frequency: 1, Amplitude: 1},
		1000,
	)

	a := src.Generate(500, State{})
	b := src.Generate(500, State{})
	full := combined.Generate(1000, State{})

	for i := 0; i < 500; i++ {
		if math.Abs(float64(a[i].X-full[i].X)) > 1e-5 {
			t.Fatalf("batch1[%d].X = %v, want %v", i, a[i].X, full[i].X)
		}
	}
	for i := 0; i < 500; i++ {
		if math.Abs(float64(b[i].X-full[500+i].X)) > 1e-5 {
			t.Fatalf("batch2[%d].X = %v, want %v", i, b[i].X, full[500+i].X)
		}
	}
}
