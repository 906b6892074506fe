package beam

import "math"

// Waveform selects the periodic function an oscilloscope channel traces.
type Waveform int

const (
	Sine Waveform = iota
	Triangle
	Square
	Sawtooth
)

func (w Waveform) String() string {
	switch w {
	case Sine:
		return "sine"
	case Triangle:
		return "triangle"
	case Square:
		return "square"
	case Sawtooth:
		return "sawtooth"
	default:
		return "unknown"
	}
}

const tau = 2 * math.Pi

// evalWaveform evaluates a waveform at phase p (radians), returning a
// value in [-1, 1].
func evalWaveform(w Waveform, p float64) float64 {
	switch w {
	case Sine:
		return math.Sin(p)
	case Triangle:
		t := remEuclid(p, tau) / tau
		switch {
		case t < 0.25:
			return 4 * t
		case t < 0.75:
			return 2 - 4*t
		default:
			return 4*t - 4
		}
	case Square:
		if math.Sin(p) >= 0 {
			return 1
		}
		return -1
	case Sawtooth:
		t := remEuclid(p, tau) / tau
		return 2*t - 1
	default:
		return 0
	}
}

func remEuclid(x, y float64) float64 {
	r := math.Mod(x, y)
	if r < 0 {
		r += math.Abs(y)
	}
	return r
}

// ChannelConfig describes one oscilloscope deflection channel.
type ChannelConfig struct {
	Waveform  Waveform
	Frequency float64
	Amplitude float64
	Phase     float64
	DCOffset  float64
}

// DefaultChannelConfig matches the original instrument's power-on default:
// a 100Hz, 0.4-amplitude sine with no phase or DC offset.
func DefaultChannelConfig() ChannelConfig {
	return ChannelConfig{Waveform: Sine, Frequency: 100, Amplitude: 0.4}
}

func evalChannel(c ChannelConfig, t float64) float32 {
	phase := tau*c.Frequency*t + c.Phase
	deflection := c.Amplitude*evalWaveform(c.Waveform, phase) + c.DCOffset
	v := 0.5 + deflection
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return float32(v)
}

// OscilloscopeSource synthesizes beam samples from two independent
// deflection channels, advancing a phase-continuous internal clock across
// successive Generate calls.
type OscilloscopeSource struct {
	XChannel, YChannel ChannelConfig
	SampleRate         float64

	tCurrent float64
}

// NewOscilloscopeSource creates a source whose internal clock starts at 0.
func NewOscilloscopeSource(x, y ChannelConfig, sampleRate float64) *OscilloscopeSource {
	return &OscilloscopeSource{XChannel: x, YChannel: y, SampleRate: sampleRate}
}

// Generate implements Source.
func (o *OscilloscopeSource) Generate(count int, _ State) []Sample {
	dt := float32(1 / o.SampleRate)
	out := make([]Sample, count)
	for i := 0; i < count; i++ {
		t := o.tCurrent + float64(i)/o.SampleRate
		out[i] = Sample{
			X:         evalChannel(o.XChannel, t),
			Y:         evalChannel(o.YChannel, t),
			Intensity: 1,
			DT:        dt,
		}
	}
	o.tCurrent += float64(count) / o.SampleRate
	return out
}
