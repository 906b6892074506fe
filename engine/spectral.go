package engine

import (
	"math"

	"github.com/typedrat/phosphor/cie"
	"github.com/typedrat/phosphor/phosphor"
)

// HDRBuffer holds one linear-light RGB triple per pixel, the output of
// SpectralResolve and the input to the halation and composite passes.
type HDRBuffer struct {
	Width, Height int
	R, G, B       []float32
}

// NewHDRBuffer allocates a zero-filled HDR buffer.
func NewHDRBuffer(width, height int) *HDRBuffer {
	n := width * height
	return &HDRBuffer{Width: width, Height: height, R: make([]float32, n), G: make([]float32, n), B: make([]float32, n)}
}

func (h *HDRBuffer) index(x, y int) int { return y*h.Width + x }

// At returns the linear RGB triple at (x, y).
func (h *HDRBuffer) At(x, y int) (r, g, b float32) {
	i := h.index(x, y)
	return h.R[i], h.G[i], h.B[i]
}

func (h *HDRBuffer) set(x, y int, r, g, b float32) {
	i := h.index(x, y)
	h.R[i], h.G[i], h.B[i] = r, g, b
}

// SpectralResolve runs the per-pixel spectral resolve pass: aggregates
// every active tier's contribution across every emission group into a
// spectral energy vector, projects it to CIE XYZ, and converts to linear
// sRGB. Must run before Decay in the same frame so T1's contribution is
// visible exactly once.
func SpectralResolve(buf *Buffer, hdr *HDRBuffer) {
	parallelRows(buf.Height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < buf.Width; x++ {
				resolvePixel(buf, hdr, x, y)
			}
		}
	})
}

func resolvePixel(buf *Buffer, hdr *HDRBuffer, x, y int) {
	var spectral [phosphor.Bands]float32

	for gi, g := range buf.Groups {
		base := buf.groupBase(gi)
		l := g.Layout

		for i := range g.SlowTerms {
			s := buf.Get(x, y, base+l.SlowStart+i)
			if s == 0 {
				continue
			}
			for b := 0; b < phosphor.Bands; b++ {
				spectral[b] += s * g.EmissionWeights[b]
			}
		}

		if l.Classification.HasPowerLaw {
			peak := buf.Get(x, y, base+l.PeakLayer)
			elapsed := buf.Get(x, y, base+l.ElapsedLayer)
			alpha, beta := g.PowerLaw.Alpha, g.PowerLaw.Beta
			if peak != 0 && alpha > 0 {
				v := peak * float32(math.Pow(float64(alpha/(elapsed+alpha)), float64(beta)))
				for b := 0; b < phosphor.Bands; b++ {
					spectral[b] += v * g.EmissionWeights[b]
				}
			}
		}

		if l.Classification.HasInstant() {
			instant := buf.InstantGet(x, y, gi)
			if instant != 0 {
				for b := 0; b < phosphor.Bands; b++ {
					spectral[b] += instant * g.EmissionWeights[b]
				}
			}
		}
	}

	xv, yv, zv := cie.ProjectToXYZ(spectral)
	r, g, b := cie.XYZToLinearRGB(xv, yv, zv)
	hdr.set(x, y, float32(r), float32(g), float32(b))
}
