package engine

import "math"

// ScatterParams governs the faceplate-scatter (halation) passes.
type ScatterParams struct {
	Threshold float32
	Sigma     float32
	Intensity float32
}

// ScatterBuffer is the half-resolution ping-pong buffer the three
// halation passes read from and write to.
type ScatterBuffer struct {
	Width, Height int
	R, G, B       []float32
}

func newScatterBuffer(width, height int) *ScatterBuffer {
	n := width * height
	return &ScatterBuffer{Width: width, Height: height, R: make([]float32, n), G: make([]float32, n), B: make([]float32, n)}
}

func (s *ScatterBuffer) index(x, y int) int { return y*s.Width + x }

func (s *ScatterBuffer) at(x, y int) (r, g, b float32) {
	i := s.index(x, y)
	return s.R[i], s.G[i], s.B[i]
}

func (s *ScatterBuffer) set(x, y int, r, g, b float32) {
	i := s.index(x, y)
	s.R[i], s.G[i], s.B[i] = r, g, b
}

func luma(r, g, b float32) float32 {
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// Halation runs the three-pass downsample+threshold / blur-H / blur-V
// faceplate scatter pipeline and returns the final half-resolution
// scatter buffer to be blended into the composite pass.
func Halation(hdr *HDRBuffer, params ScatterParams) *ScatterBuffer {
	halfW, halfH := hdr.Width/2, hdr.Height/2
	if halfW < 1 {
		halfW = 1
	}
	if halfH < 1 {
		halfH = 1
	}

	a := newScatterBuffer(halfW, halfH)
	downsampleThreshold(hdr, a, params.Threshold)

	b := newScatterBuffer(halfW, halfH)
	separableBlur(a, b, params.Sigma, true)  // H: read A write B
	separableBlur(b, a, params.Sigma, false) // V: read B write A

	return a
}

func downsampleThreshold(hdr *HDRBuffer, out *ScatterBuffer, threshold float32) {
	parallelRows(out.Height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < out.Width; x++ {
				sx, sy := x*2, y*2
				r, g, b := sampleHDRBlock(hdr, sx, sy)
				l := luma(r, g, b)
				if l <= threshold || l <= 0 {
					out.set(x, y, 0, 0, 0)
					continue
				}
				excess := l - threshold
				scale := excess / l
				out.set(x, y, r*scale, g*scale, b*scale)
			}
		}
	})
}

// sampleHDRBlock averages the 2x2 HDR block the half-resolution pixel
// (x/2, y/2) downsamples from, clamping at the buffer edge.
func sampleHDRBlock(hdr *HDRBuffer, x, y int) (r, g, b float32) {
	var rs, gs, bs float32
	n := 0
	for dy := 0; dy < 2; dy++ {
		for dx := 0; dx < 2; dx++ {
			px, py := x+dx, y+dy
			if px >= hdr.Width || py >= hdr.Height {
				continue
			}
			pr, pg, pb := hdr.At(px, py)
			rs += pr
			gs += pg
			bs += pb
			n++
		}
	}
	if n == 0 {
		return 0, 0, 0
	}
	return rs / float32(n), gs / float32(n), bs / float32(n)
}

// separableBlur applies a 1D Gaussian blur either horizontally or
// vertically, reading from src and writing to dst (which must be a
// distinct buffer — this is the ping-pong discipline the three-pass
// halation pipeline depends on).
func separableBlur(src, dst *ScatterBuffer, sigma float32, horizontal bool) {
	radius := int(math.Ceil(float64(3 * sigma)))
	if radius < 1 {
		radius = 1
	}
	weights := make([]float32, 2*radius+1)
	var sum float32
	for i := -radius; i <= radius; i++ {
		w := gaussian2D(float32(i), sigma)
		weights[i+radius] = w
		sum += w
	}
	if sum > 0 {
		for i := range weights {
			weights[i] /= sum
		}
	}

	parallelRows(src.Height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < src.Width; x++ {
				var r, g, b float32
				for i := -radius; i <= radius; i++ {
					sx, sy := x, y
					if horizontal {
						sx = clampInt(x+i, 0, src.Width-1)
					} else {
						sy = clampInt(y+i, 0, src.Height-1)
					}
					pr, pg, pb := src.at(sx, sy)
					w := weights[i+radius]
					r += pr * w
					g += pg * w
					b += pb * w
				}
				dst.set(x, y, r, g, b)
			}
		}
	})
}
