package beam

// ArcLengthResample merges a run of closely-spaced lit samples into fewer,
// energy-equivalent depositions spaced roughly threshold apart in arc
// length. This decouples the energy deposition rate from the input sample
// rate: without it, a slowly-moving beam over-deposits at high sample
// rates and a fast-moving beam under-samples at low ones.
//
// The first lit sample of each run is emitted unchanged, serving as a
// line-start anchor for the deposition pass. Subsequent lit samples
// accumulate distance and energy until the accumulated distance reaches
// threshold, at which point a single merged sample is emitted carrying
// the accumulated energy and dt == 1 (a sentinel meaning "this intensity
// is already an integrated energy, not a rate"). Blanks flush any pending
// energy and are passed through verbatim, ending the run.
func ArcLengthResample(samples []Sample, threshold float32) []Sample {
	if len(samples) == 0 || threshold <= 0 {
		out := make([]Sample, len(samples))
		copy(out, samples)
		return out
	}

	out := make([]Sample, 0, len(samples))

	var prevX, prevY, accumEnergy, accumDist float32
	inRun := false

	for _, s := range samples {
		if s.Blank() {
			if inRun && accumEnergy > 0 {
				out = append(out, Sample{X: prevX, Y: prevY, Intensity: accumEnergy, DT: 1})
			}
			out = append(out, s)
			accumEnergy, accumDist = 0, 0
			inRun = false
			continue
		}

		if !inRun {
			out = append(out, s)
			prevX, prevY = s.X, s.Y
			accumEnergy, accumDist = 0, 0
			inRun = true
			continue
		}

		dx, dy := s.X-prevX, s.Y-prevY
		accumDist += sqrt32(dx*dx + dy*dy)
		accumEnergy += s.Intensity * s.DT
		prevX, prevY = s.X, s.Y

		if accumDist >= threshold {
			out = append(out, Sample{X: s.X, Y: s.Y, Intensity: accumEnergy, DT: 1})
			accumEnergy, accumDist = 0, 0
		}
	}

	if inRun && accumEnergy > 0 {
		out = append(out, Sample{X: prevX, Y: prevY, Intensity: accumEnergy, DT: 1})
	}

	return out
}
