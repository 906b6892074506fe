package beam

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ExternalSource parses the line-oriented external beam protocol from a
// stream and emits either direct samples or subdivided line segments:
//
//	B x y intensity dt        direct beam sample
//	L x0 y0 x1 y1 intensity   line segment, subdivided by spot radius
//	F                         frame sync: end current batch
//	# ...                     comment, ignored
//
// Unknown verbs fail the line with a diagnostic; whitespace is not
// significant. A malformed line is a configuration error per spec and
// transitions the source into an error-holding state rather than
// panicking: further Generate calls yield empty batches until a fresh
// source is loaded.
type ExternalSource struct {
	r         *bufio.Reader
	LoadError string
	frameSync bool
}

// NewExternalSource creates a source reading the protocol from r.
func NewExternalSource(r io.Reader) *ExternalSource {
	return &ExternalSource{r: bufio.NewReader(r)}
}

// Generate implements Source. It reads lines until count samples have
// been produced, a frame-sync ('F') line ends the current batch early, or
// the stream is exhausted.
func (e *ExternalSource) Generate(count int, beam State) []Sample {
	if e.LoadError != "" {
		return nil
	}

	spacing := beam.SpotRadius
	if spacing <= 0 {
		spacing = 0.001
	}

	var out []Sample
	for len(out) < count {
		line, err := e.r.ReadString('\n')
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			samples, fin, perr := parseExternalLine(trimmed, spacing)
			if perr != nil {
				e.LoadError = perr.Error()
				return out
			}
			out = append(out, samples...)
			if fin {
				break
			}
		}
		if err != nil {
			break
		}
	}
	return out
}

// parseExternalLine parses one non-empty, trimmed protocol line, returning
// any samples it produces and whether it was a frame-sync line.
func parseExternalLine(line string, spacing float32) (samples []Sample, frameSync bool, err error) {
	if strings.HasPrefix(line, "#") {
		return nil, false, nil
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, false, nil
	}

	verb := fields[0]
	args := fields[1:]

	switch verb {
	case "B":
		if len(args) != 4 {
			return nil, false, fmt.Errorf("external protocol: B expects 4 arguments, got %d: %q", len(args), line)
		}
		vals, err := parseFloats(args)
		if err != nil {
			return nil, false, fmt.Errorf("external protocol: %w: %q", err, line)
		}
		return []Sample{{X: vals[0], Y: vals[1], Intensity: vals[2], DT: vals[3]}}, false, nil

	case "L":
		if len(args) != 5 {
			return nil, false, fmt.Errorf("external protocol: L expects 5 arguments, got %d: %q", len(args), line)
		}
		vals, err := parseFloats(args)
		if err != nil {
			return nil, false, fmt.Errorf("external protocol: %w: %q", err, line)
		}
		seg := Segment{X0: vals[0], Y0: vals[1], X1: vals[2], Y1: vals[3], Intensity: vals[4]}
		return subdivideSegment(seg, spacing), false, nil

	case "F":
		if len(args) != 0 {
			return nil, false, fmt.Errorf("external protocol: F takes no arguments: %q", line)
		}
		return nil, true, nil

	default:
		return nil, false, fmt.Errorf("external protocol: unknown verb %q: %q", verb, line)
	}
}

func parseFloats(fields []string) ([]float32, error) {
	out := make([]float32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid numeric argument %q", f)
		}
		out[i] = float32(v)
	}
	return out, nil
}

func subdivideSegment(seg Segment, spacing float32) []Sample {
	dx, dy := seg.X1-seg.X0, seg.Y1-seg.Y0
	length := sqrt32(dx*dx + dy*dy)
	n := int(length/spacing) + 1
	if n < 1 {
		n = 1
	}
	out := make([]Sample, 0, n+1)
	for i := 0; i <= n; i++ {
		t := float32(i) / float32(n)
		out = append(out, Sample{
			X:         seg.X0 + dx*t,
			Y:         seg.Y0 + dy*t,
			Intensity: seg.Intensity,
			DT:        0.001,
		})
	}
	return out
}
