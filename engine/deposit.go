package engine

import (
	"math"
	"runtime"
	"sync"

	"github.com/typedrat/phosphor/beamchannel"
)

// BeamParams are the per-frame deposition parameters shared by every
// sample in a batch.
type BeamParams struct {
	SigmaCore, SigmaHalo float32
	HaloFraction         float32
}

// truncationK sets the splat neighborhood radius to k*SigmaHalo; k=4
// gives < 1e-4 relative truncation error for a Gaussian profile.
const truncationK = 4

// gaussian2D evaluates an isotropic 2D Gaussian (unnormalized at r=0, peak
// 1) at radius r with standard deviation sigma.
func gaussian2D(r, sigma float32) float32 {
	if sigma <= 0 {
		return 0
	}
	t := r / sigma
	return float32(math.Exp(float64(-0.5 * t * t)))
}

// twoLobeProfile computes the two-lobe core+halo splat profile at radius r.
func twoLobeProfile(r float32, p BeamParams) float32 {
	return (1-p.HaloFraction)*gaussian2D(r, p.SigmaCore) + p.HaloFraction*gaussian2D(r, p.SigmaHalo)
}

// Deposit runs the beam-write pass: splats each drained sample into the
// accumulation buffer's layers across every emission group, dispatched
// across a bounded worker pool that splits the sample list into
// contiguous chunks, standing in for the original's
// one-workgroup-per-sample GPU dispatch.
func Deposit(buf *Buffer, samples []beamchannel.Sample, beamParams BeamParams) {
	if len(samples) == 0 {
		return
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > len(samples) {
		workers = len(samples)
	}
	if workers < 1 {
		workers = 1
	}

	chunk := (len(samples) + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > len(samples) {
			hi = len(samples)
		}
		if lo >= hi {
			continue
		}
		wg.Add(1)
		go func(batch []beamchannel.Sample) {
			defer wg.Done()
			for _, s := range batch {
				depositSample(buf, s, beamParams)
			}
		}(samples[lo:hi])
	}
	wg.Wait()
}

func depositSample(buf *Buffer, s beamchannel.Sample, p BeamParams) {
	if s.Blank() {
		return
	}

	// p.SigmaCore/SigmaHalo are normalized (fraction of buffer width);
	// scale to pixel units once so they compare directly against the
	// pixel-space radius r computed in the splat loop below.
	width := float32(buf.Width)
	pixelParams := BeamParams{
		SigmaCore:    p.SigmaCore * width,
		SigmaHalo:    p.SigmaHalo * width,
		HaloFraction: p.HaloFraction,
	}

	cx := s.X * width
	cy := s.Y * float32(buf.Height)
	radius := truncationK * pixelParams.SigmaHalo
	if radius < 1 {
		radius = 1
	}

	rateOrEnergy := float32(1)
	if s.DT != 1 {
		rateOrEnergy = s.DT
	}

	x0 := clampInt(int(cx-radius), 0, buf.Width-1)
	x1 := clampInt(int(cx+radius), 0, buf.Width-1)
	y0 := clampInt(int(cy-radius), 0, buf.Height-1)
	y1 := clampInt(int(cy+radius), 0, buf.Height-1)

	for py := y0; py <= y1; py++ {
		for px := x0; px <= x1; px++ {
			dx := (float32(px) + 0.5) - cx
			dy := (float32(py) + 0.5) - cy
			r := sqrt32(dx*dx + dy*dy)
			profile := twoLobeProfile(r, pixelParams)
			if profile <= 0 {
				continue
			}
			eDep := s.Intensity * profile * rateOrEnergy
			for gi := range buf.Groups {
				depositIntoGroup(buf, px, py, gi, eDep)
			}
		}
	}
}

func depositIntoGroup(buf *Buffer, x, y, groupIdx int, eDep float32) {
	base := buf.groupBase(groupIdx)
	g := buf.Groups[groupIdx]
	l := g.Layout

	for i, term := range g.SlowTerms {
		buf.AtomicAdd(x, y, base+l.SlowStart+i, eDep*term.Amplitude)
	}

	if l.Classification.HasPowerLaw {
		// T3 resets on each new deposit: overwrite the peak layer and
		// zero the elapsed-time layer, rather than accumulate — see
		// DESIGN.md's T3 peak/elapsed open-question decision. A plain
		// Set (not AtomicAdd) is correct here because overwrite, not
		// accumulation, is the documented semantics; concurrent
		// depositors splatting the same pixel in the same dispatch
		// simply race for "last write wins" on the peak, matching the
		// original's overwrite contract.
		buf.Set(x, y, base+l.PeakLayer, eDep*g.PowerLaw.Amplitude)
		buf.Set(x, y, base+l.ElapsedLayer, 0)
	}

	if l.Classification.HasInstant() {
		buf.InstantAdd(x, y, groupIdx, eDep*g.InstantEnergyTotal)
	}
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

func sqrt32(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}
