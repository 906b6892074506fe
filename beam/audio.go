package beam

import "io"

// AudioStream supplies decoded, interleaved PCM frames. Demuxing/decoding
// compressed formats is out of scope; this interface starts after that
// step, at a stream of float32 samples in [-1, 1].
type AudioStream interface {
	// Channels returns the interleaved channel count.
	Channels() int
	// ReadFrames reads up to len(buf)/Channels() interleaved frames into
	// buf, returning the number of frames read. io.EOF signals the end
	// of the stream.
	ReadFrames(buf []float32) (frames int, err error)
	// Seek repositions the stream to the given frame index.
	Seek(frame int64) error
}

// LoopMode controls AudioSource's end-of-stream behavior.
type LoopMode int

const (
	// LoopAtEnd seeks back to frame 0 when the stream is exhausted.
	LoopAtEnd LoopMode = iota
	// StopAtEnd halts playback (Generate returns blanks) once exhausted.
	StopAtEnd
)

// AudioSource maps a decoded stereo stream's left/right channels linearly
// to beam (x, y). Mono streams duplicate their single channel to both
// axes; streams with more than two channels use only the first two.
type AudioSource struct {
	Stream     AudioStream
	SampleRate float64
	Loop       LoopMode

	stopped   bool
	LoadError string
}

// NewAudioSource creates a source over an already-open decoded stream.
func NewAudioSource(stream AudioStream, sampleRate float64, loop LoopMode) *AudioSource {
	return &AudioSource{Stream: stream, SampleRate: sampleRate, Loop: loop}
}

// Generate implements Source.
func (a *AudioSource) Generate(count int, _ State) []Sample {
	out := make([]Sample, 0, count)
	dt := float32(1 / a.SampleRate)

	if a.stopped || a.LoadError != "" {
		for len(out) < count {
			out = append(out, Sample{Intensity: 0, DT: dt})
		}
		return out
	}

	ch := a.Stream.Channels()
	if ch < 1 {
		ch = 1
	}
	buf := make([]float32, count*ch)

	for len(out) < count {
		n, err := a.Stream.ReadFrames(buf)
		for i := 0; i < n && len(out) < count; i++ {
			l := buf[i*ch]
			r := l
			if ch >= 2 {
				r = buf[i*ch+1]
			}
			out = append(out, Sample{
				X:         (l + 1) / 2,
				Y:         (r + 1) / 2,
				Intensity: 1,
				DT:        dt,
			})
		}
		if err == io.EOF {
			if a.Loop == LoopAtEnd {
				if seekErr := a.Stream.Seek(0); seekErr != nil {
					a.LoadError = seekErr.Error()
					break
				}
				if n == 0 {
					// Avoid spinning forever on a zero-length stream.
					break
				}
				continue
			}
			a.stopped = true
			break
		}
		if err != nil {
			a.LoadError = err.Error()
			break
		}
		if n == 0 {
			break
		}
	}

	for len(out) < count {
		out = append(out, Sample{Intensity: 0, DT: dt})
	}
	return out
}
