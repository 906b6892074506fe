package beam

import "sync/atomic"

// Telemetry publishes producer-thread statistics via relaxed atomics so a
// UI or metrics exporter on another goroutine can read them without
// synchronizing with the producer.
type Telemetry struct {
	batchIntervalNanos   atomic.Int64
	throughputSamplesSec atomic.Uint64
	generatedSamplesSec  atomic.Uint64
	samplesDropped       atomic.Uint64
	bufferCapacity       atomic.Uint64
}

// BatchInterval returns the current adaptive batch interval in seconds.
func (t *Telemetry) BatchInterval() float64 {
	return float64(t.batchIntervalNanos.Load()) / 1e9
}

// ThroughputSamplesPerSec returns the achieved delivery rate.
func (t *Telemetry) ThroughputSamplesPerSec() uint64 {
	return t.throughputSamplesSec.Load()
}

// GeneratedSamplesPerSec returns the raw generation rate, before any ring
// overflow drops.
func (t *Telemetry) GeneratedSamplesPerSec() uint64 {
	return t.generatedSamplesSec.Load()
}

// SamplesDropped returns the monotonic count of samples dropped by the
// channel due to ring overflow.
func (t *Telemetry) SamplesDropped() uint64 {
	return t.samplesDropped.Load()
}

// BufferCapacity returns the configured ring buffer capacity.
func (t *Telemetry) BufferCapacity() uint64 {
	return t.bufferCapacity.Load()
}
