// Package engine implements the decay/spectral engine: a flat per-pixel
// accumulation buffer and the deposition, decay, spectral-resolve,
// halation, and composite passes that read and write it.
//
// The buffer is described by spec as GPU storage accessed via atomic u32
// compare-and-swap for float add; this package realizes the same access
// discipline as plain Go functions over []float32 slices, with deposition
// using sync/atomic CAS on the bit-cast representation and the other
// passes doing ordinary reads/writes within their own pass, exactly as
// the GPU pipeline-barrier ordering intends.
package engine

import (
	"math"
	"sync/atomic"

	"github.com/typedrat/phosphor/phosphor"
)

// Layout describes the per-pixel layer arrangement for one emission group
// (fluorescence, or phosphorescence for dual-layer phosphors): the
// classification it was built from and the starting index of each tier's
// layer range within the group's persistent layer block. T1 (instant) has
// no persistent state and so is not addressed here at all — it lives in
// Buffer's separate per-group instant scalar, outside Layers/AccumLayers.
type Layout struct {
	Classification phosphor.Classification

	// SlowStart is the first of SlowExpCount consecutive T2 layers.
	SlowStart int
	// PeakLayer/ElapsedLayer are the two T3 layers (only valid if
	// Classification.HasPowerLaw).
	PeakLayer, ElapsedLayer int

	// Layers is the total persistent layer count this group occupies,
	// equal to Classification.AccumLayers().
	Layers int
}

// NewLayout assigns layer indices for one emission group's classification,
// starting at layer index base. Layers are packed in the order: slow
// exponentials, then power-law (peak, elapsed) — matching spec.md §4.4.2's
// per-sample write order. The instant tier is intentionally absent here;
// see Buffer's instant scalar.
func NewLayout(c phosphor.Classification, base int) Layout {
	l := Layout{Classification: c}
	next := base
	l.SlowStart = next
	next += c.SlowExpCount
	if c.HasPowerLaw {
		l.PeakLayer = next
		l.ElapsedLayer = next + 1
		next += 2
	}
	l.Layers = next - base
	return l
}

// Group is one emission group's static engine state: its layout, emission
// weights, and the decay term parameters for its layers. SlowTerms is
// ordered to match Layout.SlowStart assignment; PowerLaw and
// InstantEnergyTotal are precomputed once at build time since there is at
// most one power-law term and the instant contribution is always a sum
// over every tier-1 term.
type Group struct {
	Layout             Layout
	EmissionWeights    [phosphor.Bands]float32
	SlowTerms          []phosphor.DecayTerm
	PowerLaw           phosphor.DecayTerm // valid iff Layout.Classification.HasPowerLaw
	InstantEnergyTotal float32            // valid iff Layout.Classification.HasInstant()
}

// buildGroup derives a Group's Layout and per-tier term data from a
// phosphor layer's decay terms, base layer index, and cutoff.
func buildGroup(layer phosphor.Layer, tauCutoff float32, base int) Group {
	c := phosphor.Classify(layer.DecayTerms, tauCutoff)
	layout := NewLayout(c, base)

	g := Group{
		Layout:             layout,
		EmissionWeights:    layer.EmissionWeights,
		InstantEnergyTotal: phosphor.InstantEnergyTotal(layer.DecayTerms, tauCutoff),
	}
	for _, t := range layer.DecayTerms {
		switch {
		case t.Kind == phosphor.Exponential && t.Tau >= tauCutoff:
			g.SlowTerms = append(g.SlowTerms, t)
		case t.Kind == phosphor.PowerLaw:
			g.PowerLaw = t
		}
	}
	return g
}

// Buffer is the flat accumulation buffer: TotalLayers() layers, each a
// width*height plane of float32 values. Group 0's (fluorescence)
// Layout.Layers planes come first, followed by, for dual-layer phosphors,
// group 1's (phosphorescence) Layout.Layers planes — per the "duplicated
// per emission group" resolution of the dual-layer T2/T3 state-sharing
// open question (see DESIGN.md).
type Buffer struct {
	Width, Height int
	Groups        []Group // 1 for single-layer, 2 for dual-layer phosphors

	// data stores each layer's float32 value as its IEEE-754 bit pattern
	// in a uint32, layer-major, each layer plane row-major. The bit-cast representation
	// is what lets AtomicAdd use sync/atomic's integer CAS to implement
	// float add without package unsafe.
	data []atomic.Uint32

	// instant holds one transient per-pixel, per-group scalar for the T1
	// tier, bit-cast the same way as data. It is deliberately kept out of
	// data/Layers: T1 has no persistent state, so it is never counted by
	// Classification.AccumLayers(), only written by Deposit, read once by
	// SpectralResolve, and cleared by Decay within the same frame.
	instant []atomic.Uint32
}

// NewBuffer allocates a zero-filled accumulation buffer for the given
// emission groups at the given pixel dimensions.
func NewBuffer(width, height int, groups []Group) *Buffer {
	total := 0
	for _, g := range groups {
		total += g.Layout.Layers
	}
	return &Buffer{
		Width:   width,
		Height:  height,
		Groups:  groups,
		data:    make([]atomic.Uint32, width*height*total),
		instant: make([]atomic.Uint32, width*height*len(groups)),
	}
}

// TotalLayers returns the summed layer count across all emission groups.
func (b *Buffer) TotalLayers() int {
	total := 0
	for _, g := range b.Groups {
		total += g.Layout.Layers
	}
	return total
}

// groupBase returns the absolute index of the given group's first layer.
func (b *Buffer) groupBase(group int) int {
	base := 0
	for i := 0; i < group; i++ {
		base += b.Groups[i].Layout.Layers
	}
	return base
}

// index computes the flat slice offset for (x, y, absolute layer):
// layer*(width*height) + y*width + x.
func (b *Buffer) index(x, y, layer int) int {
	return layer*(b.Width*b.Height) + y*b.Width + x
}

// Zero clears the entire buffer, e.g. on phosphor hot-swap when the layer
// count is unchanged and so no fresh allocation is needed.
func (b *Buffer) Zero() {
	for i := range b.data {
		b.data[i].Store(0)
	}
	for i := range b.instant {
		b.instant[i].Store(0)
	}
}

// instantIndex computes the flat slice offset for (x, y, group) in the
// instant scratch array.
func (b *Buffer) instantIndex(x, y, group int) int {
	return (y*b.Width+x)*len(b.Groups) + group
}

// InstantGet reads a group's T1 scalar at (x, y) with a plain load.
func (b *Buffer) InstantGet(x, y, group int) float32 {
	return math.Float32frombits(b.instant[b.instantIndex(x, y, group)].Load())
}

// InstantSet writes a group's T1 scalar at (x, y) with a plain store.
func (b *Buffer) InstantSet(x, y, group int, v float32) {
	b.instant[b.instantIndex(x, y, group)].Store(math.Float32bits(v))
}

// InstantAdd adds delta to a group's T1 scalar at (x, y) using the same
// CAS loop as AtomicAdd, since multiple beam samples may deposit into the
// same pixel within one dispatch.
func (b *Buffer) InstantAdd(x, y, group int, delta float32) {
	slot := &b.instant[b.instantIndex(x, y, group)]
	for {
		old := slot.Load()
		newVal := math.Float32bits(math.Float32frombits(old) + delta)
		if slot.CompareAndSwap(old, newVal) {
			return
		}
	}
}

// Get reads the value at (x, y, absolute layer) with a plain load — valid
// within the decay and spectral-resolve passes, which own the buffer
// exclusively for the duration of their pass.
func (b *Buffer) Get(x, y, layer int) float32 {
	return math.Float32frombits(b.data[b.index(x, y, layer)].Load())
}

// Set writes the value at (x, y, absolute layer) with a plain store.
func (b *Buffer) Set(x, y, layer int, v float32) {
	b.data[b.index(x, y, layer)].Store(math.Float32bits(v))
}

// AtomicAdd adds delta to the value at (x, y, absolute layer) using a
// compare-and-swap loop on the float's bit-cast uint32 representation,
// the Go equivalent of a GPU atomic float add. This is the only access
// pattern deposition uses, since many beam samples may splat into
// overlapping pixels within a single parallel dispatch.
func (b *Buffer) AtomicAdd(x, y, layer int, delta float32) {
	slot := &b.data[b.index(x, y, layer)]
	for {
		old := slot.Load()
		newVal := math.Float32bits(math.Float32frombits(old) + delta)
		if slot.CompareAndSwap(old, newVal) {
			return
		}
	}
}
