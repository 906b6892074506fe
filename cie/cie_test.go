package cie

import (
	"math"
	"testing"

	"github.com/typedrat/phosphor/phosphor"
)

func TestBandWeightsTableAllPositiveY(t *testing.T) {
	table := BandWeightsTable()
	var ySum float64
	for b, w := range table {
		if w.Y < 0 {
			t.Fatalf("band %d has negative y_bar weight %v", b, w.Y)
		}
		ySum += w.Y
	}
	if ySum <= 0 {
		t.Fatal("total luminance weight should be positive")
	}
}

func TestBandWeightsTableIsStableAcrossCalls(t *testing.T) {
	a := BandWeightsTable()
	b := BandWeightsTable()
	if a != b {
		t.Fatal("BandWeightsTable should return the same memoized table each call")
	}
}

func TestProjectToXYZMonochromaticGreenHasPositiveY(t *testing.T) {
	var energy [phosphor.Bands]float32
	for b := 0; b < phosphor.Bands; b++ {
		center := phosphor.BandCenter(b)
		if center > 520 && center < 560 {
			energy[b] = 1.0
		}
	}
	_, y, _ := ProjectToXYZ(energy)
	if y <= 0 {
		t.Fatalf("y = %v, want > 0 for green energy", y)
	}
}

func TestXYZToLinearRGBClampsNegatives(t *testing.T) {
	// A strongly saturated blue-violet XYZ point is known to fall outside
	// the sRGB gamut and produce a negative red component pre-clamp.
	r, g, b := XYZToLinearRGB(0.05, 0.01, 0.8)
	if r < 0 || g < 0 || b < 0 {
		t.Fatalf("components should be clamped to >= 0, got r=%v g=%v b=%v", r, g, b)
	}
}

func TestXYZToLinearRGBWhitePointIsNeutral(t *testing.T) {
	// D65 white point should map close to (1,1,1) in linear sRGB.
	r, g, b := XYZToLinearRGB(0.9505, 1.0000, 1.0890)
	for _, v := range []float64{r, g, b} {
		if math.Abs(v-1.0) > 0.05 {
			t.Fatalf("white point channel = %v, want ~1.0", v)
		}
	}
}
