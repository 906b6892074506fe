package phosphor

import (
	"bufio"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Bands is the fixed number of spectral bands an emission profile is
// resolved to. Increasing it would require regenerating the CIE band
// weights in the cie package; it is not a runtime parameter.
const Bands = 16

const (
	wavelengthMinNM = 380.0
	wavelengthMaxNM = 780.0
	bandWidthNM     = (wavelengthMaxNM - wavelengthMinNM) / Bands
)

// BandRange returns the [lo, hi) wavelength interval in nanometers covered
// by the given band index.
func BandRange(band int) (lo, hi float64) {
	lo = wavelengthMinNM + float64(band)*bandWidthNM
	return lo, lo + bandWidthNM
}

// BandCenter returns the center wavelength in nanometers of the given band.
func BandCenter(band int) float64 {
	return wavelengthMinNM + (float64(band)+0.5)*bandWidthNM
}

// GaussianEmissionWeights synthesizes an L1-normalized emission profile as
// a Gaussian centered at peakNM with standard deviation derived from the
// full-width-at-half-maximum.
func GaussianEmissionWeights(peakNM, fwhmNM float64) [Bands]float32 {
	sigma := fwhmNM / 2.355
	var weights [Bands]float64
	for i := 0; i < Bands; i++ {
		d := (BandCenter(i) - peakNM) / sigma
		weights[i] = math.Exp(-0.5 * d * d)
	}
	normalizeL1(weights[:])
	var out [Bands]float32
	for i, w := range weights {
		out[i] = float32(w)
	}
	return out
}

func normalizeL1(w []float64) {
	sum := floats.Sum(w)
	if sum > 0 {
		floats.Scale(1/sum, w)
	}
}

// spectrumPoint is one (wavelength, relative intensity) sample from a
// measured spectrum CSV.
type spectrumPoint struct {
	wavelengthNM float64
	relIntensity float64
}

// CSVToEmissionWeights parses a spectrum CSV (header containing
// wavelength_nm and rel_intensity columns, '#'-prefixed and blank lines
// skipped) and integrates it by the trapezoidal rule into the B spectral
// bands, clipping segments to band boundaries, then L1-normalizes the
// result.
func CSVToEmissionWeights(csvText string) ([Bands]float32, error) {
	var out [Bands]float32

	points, err := parseSpectrumCSV(csvText)
	if err != nil {
		return out, err
	}
	if len(points) < 2 {
		return out, fmt.Errorf("spectrum csv: need at least 2 data points, got %d", len(points))
	}

	sort.Slice(points, func(i, j int) bool { return points[i].wavelengthNM < points[j].wavelengthNM })

	var weights [Bands]float64
	for b := 0; b < Bands; b++ {
		lo, hi := BandRange(b)
		weights[b] = integrateTrapezoidClipped(points, lo, hi)
	}

	total := floats.Sum(weights[:])
	if total <= 0 {
		return out, fmt.Errorf("spectrum csv: zero total intensity")
	}
	normalizeL1(weights[:])
	for i, w := range weights {
		out[i] = float32(w)
	}
	return out, nil
}

func parseSpectrumCSV(csvText string) ([]spectrumPoint, error) {
	scanner := bufio.NewScanner(strings.NewReader(csvText))

	wlCol, riCol := -1, -1
	haveHeader := false
	var points []spectrumPoint

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		if !haveHeader {
			for i, f := range fields {
				switch strings.ToLower(f) {
				case "wavelength_nm":
					wlCol = i
				case "rel_intensity":
					riCol = i
				}
			}
			if wlCol == -1 || riCol == -1 {
				return nil, fmt.Errorf("spectrum csv line %d: missing wavelength_nm or rel_intensity column in header", lineNo)
			}
			haveHeader = true
			continue
		}

		if wlCol >= len(fields) || riCol >= len(fields) {
			return nil, fmt.Errorf("spectrum csv line %d: expected at least %d columns, got %d", lineNo, maxInt(wlCol, riCol)+1, len(fields))
		}
		wl, err := strconv.ParseFloat(fields[wlCol], 64)
		if err != nil {
			return nil, fmt.Errorf("spectrum csv line %d: invalid wavelength_nm %q: %w", lineNo, fields[wlCol], err)
		}
		ri, err := strconv.ParseFloat(fields[riCol], 64)
		if err != nil {
			return nil, fmt.Errorf("spectrum csv line %d: invalid rel_intensity %q: %w", lineNo, fields[riCol], err)
		}
		points = append(points, spectrumPoint{wavelengthNM: wl, relIntensity: ri})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("spectrum csv: %w", err)
	}
	if !haveHeader {
		return nil, fmt.Errorf("spectrum csv: missing header row")
	}
	return points, nil
}

// integrateTrapezoidClipped integrates the piecewise-linear curve defined
// by points over [lo, hi), clipping each segment to the band boundaries.
func integrateTrapezoidClipped(points []spectrumPoint, lo, hi float64) float64 {
	var total float64
	for i := 0; i+1 < len(points); i++ {
		x0, y0 := points[i].wavelengthNM, points[i].relIntensity
		x1, y1 := points[i+1].wavelengthNM, points[i+1].relIntensity
		if x1 <= lo || x0 >= hi || x1 == x0 {
			continue
		}
		cx0, cx1 := x0, x1
		cy0, cy1 := y0, y1
		if cx0 < lo {
			cy0 = lerp(y0, y1, (lo-x0)/(x1-x0))
			cx0 = lo
		}
		if cx1 > hi {
			cy1 = lerp(y0, y1, (hi-x0)/(x1-x0))
			cx1 = hi
		}
		if cx1 <= cx0 {
			continue
		}
		total += 0.5 * (cy0 + cy1) * (cx1 - cx0)
	}
	return total
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
