// Package beam models the electron beam as a time series of position and
// intensity samples, the sources that generate them, and the producer
// thread that paces generation against the downstream ring buffer.
package beam

// Sample is one beam position/intensity observation. x and y are screen
// coordinates normalized to [0, 1]; intensity is either an instantaneous
// rate or, after arc-length resampling, a pre-integrated energy (signaled
// by dt == 1).
type Sample struct {
	X, Y      float32
	Intensity float32
	DT        float32
}

// Blank reports whether this sample represents a retrace/blanking interval.
func (s Sample) Blank() bool {
	return s.Intensity <= 0
}

// State describes the beam geometry visible to a Source while it
// generates a batch.
type State struct {
	// SpotRadius is focus/viewport_width, in normalized screen units.
	SpotRadius float32
}

// Source generates beam samples for one batch. Implementations are not
// required to be safe for concurrent use; the producer owns one Source at
// a time from a single goroutine.
type Source interface {
	// Generate produces count samples continuing from wherever this
	// source's internal time/position cursor left off.
	Generate(count int, beam State) []Sample
}
