package beam

import (
	"runtime"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/typedrat/phosphor/beamchannel"
)

// BeamEnergyScale is a calibration constant compensating for the small
// absolute dt values the producer works with; it carries no claimed
// physical meaning beyond "makes deposited energy land in a useful
// numeric range for the accumulation buffer".
const BeamEnergyScale = 5000

const (
	minBatchInterval     = 1 * time.Millisecond
	maxBatchInterval     = 10 * time.Millisecond
	initialBatchInterval = 1 * time.Millisecond
)

// CommandKind tags the mutation a Command carries.
type CommandKind int

const (
	CmdSetInputMode CommandKind = iota
	CmdSetOscilloscopeParams
	CmdSetFocus
	CmdSetViewport
	CmdLoadSource
	CmdAudioTransport
	CmdSetAudioSpeed
	CmdSetSampleRate
	CmdShutdown
)

// Command carries one producer-thread mutation across the command
// channel. Only the fields relevant to Kind are meaningful.
type Command struct {
	Kind CommandKind

	Source Source // CmdLoadSource

	Focus float32 // CmdSetFocus

	ViewportWidth, ViewportHeight int // CmdSetViewport

	SampleRate float64 // CmdSetSampleRate
	// NewRing carries the producer half of a freshly-sized beamchannel
	// when the sample rate change requires reallocating the ring.
	NewRing *beamchannel.Producer

	AudioPlay bool    // CmdAudioTransport: true=play, false=stop
	AudioSeek float64 // CmdAudioTransport: seconds, <0 means no seek
	AudioSpeed float64 // CmdSetAudioSpeed
}

// Producer runs an input Source and feeds a beamchannel ring, paced so
// average throughput matches the nominal sample rate without starving the
// renderer or overflowing the ring.
type Producer struct {
	commands chan Command
	ring     *beamchannel.Producer
	rng      *PartitionedRNG
	telemetry Telemetry

	source             Source
	sampleRate         float64
	focus              float32
	viewportW, viewportH int

	batchInterval time.Duration

	lastThroughputCheck time.Time
	samplesSinceCheck   uint64
}

// NewProducer creates a producer thread bound to the given ring buffer
// half and driven initially by source.
func NewProducer(ring *beamchannel.Producer, source Source, sampleRate float64, seed Seed) *Producer {
	p := &Producer{
		commands:      make(chan Command, 64),
		ring:          ring,
		rng:           NewPartitionedRNG(seed),
		source:        source,
		sampleRate:    sampleRate,
		viewportW:     1,
		viewportH:     1,
		batchInterval: initialBatchInterval,
	}
	p.telemetry.bufferCapacity.Store(uint64(ring.Capacity()))
	return p
}

// Commands returns the channel used to send mutations to the running
// producer loop.
func (p *Producer) Commands() chan<- Command {
	return p.commands
}

// Telemetry returns the producer's live telemetry struct.
func (p *Producer) Telemetry() *Telemetry {
	return &p.telemetry
}

// Run executes the producer loop until a CmdShutdown command arrives. It
// is intended to be launched in its own goroutine.
func (p *Producer) Run() {
	p.lastThroughputCheck = time.Now()

	for {
		select {
		case cmd := <-p.commands:
			if !p.applyCommand(cmd) {
				return
			}
			continue
		default:
		}

		iterStart := time.Now()
		p.runOneBatch()
		genElapsed := time.Since(iterStart)

		p.adaptBatchInterval(genElapsed)
		p.maybeCheckThroughput()

		p.sleepRemainder(iterStart)
	}
}

func (p *Producer) applyCommand(cmd Command) (keepRunning bool) {
	switch cmd.Kind {
	case CmdShutdown:
		return false
	case CmdLoadSource:
		p.source = cmd.Source
	case CmdSetFocus:
		p.focus = cmd.Focus
	case CmdSetViewport:
		p.viewportW, p.viewportH = cmd.ViewportWidth, cmd.ViewportHeight
	case CmdSetSampleRate:
		p.sampleRate = cmd.SampleRate
		if cmd.NewRing != nil {
			p.ring = cmd.NewRing
			p.telemetry.bufferCapacity.Store(uint64(cmd.NewRing.Capacity()))
		}
	case CmdSetOscilloscopeParams, CmdAudioTransport, CmdSetAudioSpeed, CmdSetInputMode:
		// These are handled by specific Source implementations; the
		// caller is expected to have already reconfigured p.source
		// before issuing or alongside this command.
	}
	return true
}

func (p *Producer) runOneBatch() {
	if p.source == nil {
		return
	}

	n := int(p.sampleRate * p.batchInterval.Seconds())
	if n < 1 {
		n = 1
	}

	spotRadius := float32(0)
	if p.viewportW > 0 {
		spotRadius = p.focus / float32(p.viewportW)
	}
	samples := p.source.Generate(n, State{SpotRadius: spotRadius})

	applyAspectCorrection(samples, p.aspect())

	samples = ArcLengthResample(samples, spotRadius)

	out := make([]beamchannel.Sample, len(samples))
	for i, s := range samples {
		out[i] = beamchannel.Sample{
			X:         s.X,
			Y:         s.Y,
			Intensity: s.Intensity * BeamEnergyScale,
			DT:        s.DT,
		}
	}

	written := p.ring.PushBulk(out)
	dropped := len(out) - written

	p.telemetry.generatedSamplesSec.Add(uint64(len(out)))
	p.samplesSinceCheck += uint64(written)
	if dropped > 0 {
		p.telemetry.samplesDropped.Add(uint64(dropped))
	}
}

func (p *Producer) aspect() float32 {
	if p.viewportH == 0 {
		return 1
	}
	return float32(p.viewportW) / float32(p.viewportH)
}

// applyAspectCorrection compresses the wider screen axis toward center so
// a circular beam path stays circular on a non-square viewport.
func applyAspectCorrection(samples []Sample, aspect float32) {
	switch {
	case aspect > 1:
		for i := range samples {
			samples[i].X = 0.5 + (samples[i].X-0.5)/aspect
		}
	case aspect < 1 && aspect > 0:
		for i := range samples {
			samples[i].Y = 0.5 + (samples[i].Y-0.5)*aspect
		}
	}
}

func (p *Producer) adaptBatchInterval(generationElapsed time.Duration) {
	interval := p.batchInterval
	if generationElapsed > interval*8/10 {
		interval *= 2
	} else if generationElapsed < interval*2/10 {
		interval /= 2
	}
	if interval < minBatchInterval {
		interval = minBatchInterval
	}
	if interval > maxBatchInterval {
		interval = maxBatchInterval
	}
	p.batchInterval = interval
	p.telemetry.batchIntervalNanos.Store(int64(interval))
}

func (p *Producer) maybeCheckThroughput() {
	now := time.Now()
	elapsed := now.Sub(p.lastThroughputCheck)
	if elapsed < time.Second {
		return
	}
	rate := float64(p.samplesSinceCheck) / elapsed.Seconds()
	p.telemetry.throughputSamplesSec.Store(uint64(rate))
	if rate < 0.9*p.sampleRate {
		interval := p.batchInterval * 2
		if interval > maxBatchInterval {
			interval = maxBatchInterval
		}
		p.batchInterval = interval
		p.telemetry.batchIntervalNanos.Store(int64(interval))
		logrus.Debugf("beam producer: throughput %v below target %v, doubling batch interval to %v", rate, p.sampleRate, interval)
	}
	p.lastThroughputCheck = now
	p.samplesSinceCheck = 0
}

// sleepRemainder sleeps off whatever is left of the current batch
// interval after iterStart, using a hybrid spin/park strategy: it parks
// (time.Sleep) for all but the last slice of the remainder, then spins to
// avoid the scheduler's wakeup jitter overshooting the deadline. If the
// deadline has already passed, it does not attempt to burst-catch-up —
// the next batch simply starts immediately.
func (p *Producer) sleepRemainder(iterStart time.Time) {
	deadline := iterStart.Add(p.batchInterval)
	const spinWindow = 200 * time.Microsecond

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return
		}
		if remaining > spinWindow {
			time.Sleep(remaining - spinWindow)
			continue
		}
		for time.Until(deadline) > 0 {
			runtime.Gosched()
		}
		return
	}
}
