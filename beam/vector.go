package beam

// Segment is one vector-display stroke from (X0,Y0) to (X1,Y1) at a given
// intensity.
type Segment struct {
	X0, Y0, X1, Y1 float32
	Intensity      float32
}

// SettlingTime is the dt assigned to the zero-intensity sample inserted
// between two segments that do not share an endpoint, modeling the beam's
// retrace/settle interval.
const SettlingTime float32 = 0.0005

// VectorSource replays an ordered list of segments, subdividing each into
// dense samples spaced within one beam spot-radius.
type VectorSource struct {
	Segments []Segment

	pos   int
	lastX float32
	lastY float32
	have  bool
}

// NewVectorSource creates a source over the given ordered segment list.
func NewVectorSource(segments []Segment) *VectorSource {
	return &VectorSource{Segments: segments}
}

// Generate implements Source. It emits up to count samples, resuming from
// wherever the previous call left off within the segment list; once all
// segments are exhausted it returns fewer than count samples (or none).
func (v *VectorSource) Generate(count int, beam State) []Sample {
	spacing := beam.SpotRadius
	if spacing <= 0 {
		spacing = 0.001
	}

	var out []Sample
	for len(out) < count && v.pos < len(v.Segments) {
		seg := v.Segments[v.pos]

		if v.have && !contiguous(v.lastX, v.lastY, seg.X0, seg.Y0) {
			out = append(out, Sample{X: v.lastX, Y: v.lastY, Intensity: 0, DT: SettlingTime})
			if len(out) >= count {
				break
			}
		}

		dx, dy := seg.X1-seg.X0, seg.Y1-seg.Y0
		length := sqrt32(dx*dx + dy*dy)
		n := int(length/spacing) + 1
		if n < 1 {
			n = 1
		}
		for i := 0; i <= n && len(out) < count; i++ {
			t := float32(i) / float32(n)
			out = append(out, Sample{
				X:         seg.X0 + dx*t,
				Y:         seg.Y0 + dy*t,
				Intensity: seg.Intensity,
				DT:        0.001,
			})
		}

		v.lastX, v.lastY = seg.X1, seg.Y1
		v.have = true
		v.pos++
	}
	return out
}

func contiguous(x0, y0, x1, y1 float32) bool {
	const eps = 1e-6
	dx, dy := x1-x0, y1-y0
	return dx*dx+dy*dy < eps*eps
}

// Reset rewinds the source to the beginning of its segment list.
func (v *VectorSource) Reset() {
	v.pos = 0
	v.have = false
}
