package frame

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/typedrat/phosphor/beamchannel"
	"github.com/typedrat/phosphor/engine"
	"github.com/typedrat/phosphor/phosphor"
)

// Orchestrator drives the per-frame sequence: phosphor/resolution
// reconfiguration, draining the sample ring, recording the pass sequence,
// and presenting. It owns the accumulation/HDR buffers and the GPU timing
// history.
type Orchestrator struct {
	Presenter Presenter
	Consumer  *beamchannel.Consumer

	SampleRate    float64
	FrameInterval time.Duration

	BeamParams      engine.BeamParams
	ScatterParams   engine.ScatterParams
	CompositeParams engine.CompositeParams

	Timing *TimingRing

	activePhosphor  phosphor.Phosphor
	activeLayers    int
	resolutionScale float64
	baseWidth       int
	baseHeight      int
	width, height   int

	buf *engine.Buffer
	hdr *engine.HDRBuffer

	pendingPhosphor *phosphor.Phosphor
	pendingScale    float64
}

// NewOrchestrator builds an orchestrator for the given initial phosphor,
// internal base resolution, and sample ring consumer half.
func NewOrchestrator(p phosphor.Phosphor, baseWidth, baseHeight int, consumer *beamchannel.Consumer, presenter Presenter) *Orchestrator {
	groups := engine.BuildGroups(p)
	o := &Orchestrator{
		Presenter:       presenter,
		Consumer:        consumer,
		FrameInterval:   16 * time.Millisecond,
		Timing:          NewTimingRing(256),
		activePhosphor:  p,
		activeLayers:    layersTotal(groups),
		resolutionScale: 1.0,
		baseWidth:       baseWidth,
		baseHeight:      baseHeight,
		width:           baseWidth,
		height:          baseHeight,
		buf:             engine.NewBuffer(baseWidth, baseHeight, groups),
		hdr:             engine.NewHDRBuffer(baseWidth, baseHeight),
		CompositeParams: engine.CompositeParams{Exposure: 1, Mode: engine.TonemapReinhard, Tint: engine.Tint{R: 1, G: 1, B: 1}, ScatterMix: 1},
	}
	return o
}

func layersTotal(groups []engine.Group) int {
	n := 0
	for _, g := range groups {
		n += g.Layout.Layers
	}
	return n
}

// SetPhosphor requests a phosphor change to take effect on the next
// RenderFrame call.
func (o *Orchestrator) SetPhosphor(p phosphor.Phosphor) {
	o.pendingPhosphor = &p
}

// SetResolutionScale requests an internal-resolution change to take effect
// on the next RenderFrame call.
func (o *Orchestrator) SetResolutionScale(scale float64) {
	o.pendingScale = scale
}

// reconfigurePhosphor implements step 1 of the per-frame sequence.
func (o *Orchestrator) reconfigurePhosphor() {
	if o.pendingPhosphor == nil || o.pendingPhosphor.Designation == o.activePhosphor.Designation {
		o.pendingPhosphor = nil
		return
	}
	p := *o.pendingPhosphor
	o.pendingPhosphor = nil

	groups := engine.BuildGroups(p)
	newLayers := layersTotal(groups)
	if newLayers != o.activeLayers {
		o.buf = engine.NewBuffer(o.width, o.height, groups)
	} else {
		o.buf.Groups = groups
		o.buf.Zero()
	}
	o.activePhosphor = p
	o.activeLayers = newLayers
}

// reconfigureResolution implements step 2 of the per-frame sequence.
func (o *Orchestrator) reconfigureResolution() {
	if o.pendingScale == 0 || o.pendingScale == o.resolutionScale {
		o.pendingScale = 0
		return
	}
	o.resolutionScale = o.pendingScale
	o.pendingScale = 0

	o.width = clampInt(int(float64(o.baseWidth)*o.resolutionScale), 1, o.baseWidth*8)
	o.height = clampInt(int(float64(o.baseHeight)*o.resolutionScale), 1, o.baseHeight*8)

	o.buf = engine.NewBuffer(o.width, o.height, o.buf.Groups)
	o.hdr = engine.NewHDRBuffer(o.width, o.height)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RenderFrame executes one full per-frame sequence: reconfigure, drain,
// record the pass sequence, submit and present. Returns an error only for
// a fatal condition (ErrOutOfMemory); transient swapchain loss is
// recovered internally and other surface errors are logged and swallowed,
// matching the documented failure-handling rule.
func (o *Orchestrator) RenderFrame() error {
	o.reconfigurePhosphor()
	o.reconfigureResolution()

	dropCap := int(o.SampleRate * 2 * o.FrameInterval.Seconds())
	samples := o.Consumer.DrainUpTo(dropCap)
	simDt := float32(len(samples)) / float32(o.SampleRate)

	// Step 4, writing UI-derived parameters to GPU uniforms, is a no-op
	// here: BeamParams/ScatterParams/CompositeParams are read directly by
	// each pass below rather than staged through a separate uniform
	// buffer, since there is no real GPU command encoder to stage into.

	var timing FrameTiming
	frameStart := time.Now()

	t0 := time.Now()
	engine.Deposit(o.buf, samples, o.BeamParams)
	timing.Segments[SegBeamWrite] = time.Since(t0).Nanoseconds()

	t0 = time.Now()
	engine.SpectralResolve(o.buf, o.hdr)
	timing.Segments[SegSpectralResolve] = time.Since(t0).Nanoseconds()

	t0 = time.Now()
	engine.Decay(o.buf, simDt)
	timing.Segments[SegDecay] = time.Since(t0).Nanoseconds()

	t0 = time.Now()
	scatter := engine.Halation(o.hdr, o.ScatterParams)
	timing.Segments[SegHalation] = time.Since(t0).Nanoseconds()

	t0 = time.Now()
	frame, err := o.Presenter.Acquire()
	if err != nil {
		return o.handleAcquireError(err)
	}
	composite := engine.NewCompositeBuffer(frame.Width, frame.Height)
	engine.Composite(o.hdr, scatter, o.CompositeParams, composite)
	timing.Segments[SegComposite] = time.Since(t0).Nanoseconds()

	// UI overlay compositing is out of scope; the swapchain image already
	// holds the rendered frame at this point.

	if err := o.Presenter.Present(frame); err != nil {
		return o.handlePresentError(err)
	}

	timing.Total = time.Since(frameStart).Nanoseconds()
	timing.BeamCount = uint64(len(samples))
	o.Timing.Push(timing)

	select {
	case <-o.Presenter.Lost():
		o.Presenter.Reconfigure(frame.Width, frame.Height)
	default:
	}

	return nil
}

func (o *Orchestrator) handleAcquireError(err error) error {
	return o.handleSurfaceError(err)
}

func (o *Orchestrator) handlePresentError(err error) error {
	return o.handleSurfaceError(err)
}

func (o *Orchestrator) handleSurfaceError(err error) error {
	switch err {
	case ErrSwapchainLost:
		o.Presenter.Reconfigure(o.width, o.height)
		return nil
	case ErrOutOfMemory:
		return fmt.Errorf("frame: unrecoverable presenter failure: %w", err)
	default:
		logrus.Warnf("frame: surface error, continuing: %v", err)
		return nil
	}
}
