// Package cie computes the CIE 1931 2-degree standard observer
// color-matching functions and pre-integrates them into per-band weight
// triples for the B spectral bands defined by the phosphor package.
//
// spec.md §6 describes the dataset as "a 471-row, 1-nm-step table ...
// embedded at build time". This module has no authoritative copy of that
// table to embed, so it instead evaluates the well-known analytic
// multi-lobe Gaussian fit to the 1931 2° observer (Wyman, Sloan & Shirley,
// "Simple Analytic Approximations to the CIE XYZ Color Matching
// Functions", JCGT 2013) at 1nm resolution and integrates it the same way
// the original table would have been integrated. See DESIGN.md for the
// rationale.
package cie

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/typedrat/phosphor/phosphor"
)

// gaussianLobe evaluates a*exp(-0.5*((x-mu)/sigma)^2) with an asymmetric
// sigma depending on which side of mu x falls.
func gaussianLobe(x, a, mu, sigma1, sigma2 float64) float64 {
	sigma := sigma1
	if x >= mu {
		sigma = sigma2
	}
	t := (x - mu) / sigma
	return a * math.Exp(-0.5*t*t)
}

// xBar, yBar, zBar are the Wyman/Sloan/Shirley analytic approximations to
// the CIE 1931 2-degree color matching functions, valid over the visible
// range.
func xBar(wl float64) float64 {
	return gaussianLobe(wl, 1.056, 599.8, 37.9, 31.0) +
		gaussianLobe(wl, 0.362, 442.0, 16.0, 26.7) -
		gaussianLobe(wl, 0.065, 501.1, 20.4, 26.2)
}

func yBar(wl float64) float64 {
	return gaussianLobe(wl, 0.821, 568.8, 46.9, 40.5) +
		gaussianLobe(wl, 0.286, 530.9, 16.3, 31.1)
}

func zBar(wl float64) float64 {
	return gaussianLobe(wl, 1.217, 437.0, 11.8, 36.0) +
		gaussianLobe(wl, 0.681, 459.0, 26.0, 13.8)
}

// BandWeights holds the integrated (x_bar, y_bar, z_bar) tristimulus
// weight for one spectral band.
type BandWeights struct {
	X, Y, Z float64
}

var (
	once        sync.Once
	bandWeights [phosphor.Bands]BandWeights
	xyzMatrix   *mat.Dense
)

// simpsonIntegrate integrates f over [lo, hi] with Simpson's rule at about
// 1nm steps. An odd sub-interval count is bumped to the next even count
// (so the step shrinks slightly below 1nm); an interval shorter than two
// steps uses a single trapezoid instead.
func simpsonIntegrate(f func(float64) float64, lo, hi float64) float64 {
	const step = 1.0
	n := int(math.Round((hi - lo) / step))
	if n < 2 {
		return 0.5 * (f(lo) + f(hi)) * (hi - lo)
	}
	if n%2 == 1 {
		n++
	}
	h := (hi - lo) / float64(n)
	sum := f(lo) + f(hi)
	for i := 1; i < n; i++ {
		x := lo + float64(i)*h
		if i%2 == 0 {
			sum += 2 * f(x)
		} else {
			sum += 4 * f(x)
		}
	}
	return sum * h / 3
}

// compute computes the B-length band weight table once, lazily, the first
// time a caller asks for it — the closest Go equivalent to the original's
// compile-time pre-integration, since Go has no const-eval for
// transcendental functions.
func compute() {
	once.Do(func() {
		data := make([]float64, phosphor.Bands*3)
		for b := 0; b < phosphor.Bands; b++ {
			lo, hi := phosphor.BandRange(b)
			x := simpsonIntegrate(xBar, lo, hi)
			y := simpsonIntegrate(yBar, lo, hi)
			z := simpsonIntegrate(zBar, lo, hi)
			bandWeights[b] = BandWeights{X: x, Y: y, Z: z}
			data[b*3+0] = x
			data[b*3+1] = y
			data[b*3+2] = z
		}
		xyzMatrix = mat.NewDense(phosphor.Bands, 3, data)
	})
}

// BandWeightsTable returns the per-band (x_bar, y_bar, z_bar) integrated
// weights, computing them on first use.
func BandWeightsTable() [phosphor.Bands]BandWeights {
	compute()
	return bandWeights
}

// ProjectToXYZ projects a length-B spectral energy vector to CIE XYZ
// tristimulus values: X = sum_b xbar_b*S_b, etc.
func ProjectToXYZ(spectralEnergy [phosphor.Bands]float32) (x, y, z float64) {
	compute()
	s := make([]float64, phosphor.Bands)
	for i, v := range spectralEnergy {
		s[i] = float64(v)
	}
	var out mat.VecDense
	sv := mat.NewVecDense(phosphor.Bands, s)
	out.MulVec(xyzMatrix.T(), sv)
	return out.AtVec(0), out.AtVec(1), out.AtVec(2)
}

// xyzToLinearSRGB is the standard CIE XYZ -> linear sRGB 3x3 matrix
// (D65 white point), applied with out-of-gamut negatives clamped to 0 by
// the caller.
var xyzToLinearSRGB = mat.NewDense(3, 3, []float64{
	3.2404542, -1.5371385, -0.4985314,
	-0.9692660, 1.8760108, 0.0415560,
	0.0556434, -0.2040259, 1.0572252,
})

// XYZToLinearRGB converts a CIE XYZ triple to linear sRGB, clamping
// negative (out-of-gamut) components to 0 per spec.md §4.4.4.
func XYZToLinearRGB(x, y, z float64) (r, g, b float64) {
	in := mat.NewVecDense(3, []float64{x, y, z})
	var out mat.VecDense
	out.MulVec(xyzToLinearSRGB, in)
	r, g, b = out.AtVec(0), out.AtVec(1), out.AtVec(2)
	if r < 0 {
		r = 0
	}
	if g < 0 {
		g = 0
	}
	if b < 0 {
		b = 0
	}
	return r, g, b
}
