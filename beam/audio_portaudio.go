package beam

import (
	"fmt"
	"io"

	"github.com/gordonklaus/portaudio"
)

// PortAudioCapture implements AudioStream by pulling live interleaved PCM
// from a local input device, letting the beam be driven directly by a real
// oscilloscope-music signal chain without an intermediate file.
type PortAudioCapture struct {
	stream   *portaudio.Stream
	channels int
	ring     []float32
	ringHead int
}

// OpenPortAudioCapture opens the system's default input device at
// sampleRate with the given channel count and begins streaming.
func OpenPortAudioCapture(sampleRate float64, channels int) (*PortAudioCapture, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio: initialize: %w", err)
	}

	const framesPerBuffer = 1024
	c := &PortAudioCapture{channels: channels}
	buf := make([]float32, framesPerBuffer*channels)

	stream, err := portaudio.OpenDefaultStream(channels, 0, sampleRate, framesPerBuffer, buf)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("portaudio: open default stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("portaudio: start stream: %w", err)
	}

	c.stream = stream
	c.ring = buf
	return c, nil
}

// Channels implements AudioStream.
func (c *PortAudioCapture) Channels() int { return c.channels }

// ReadFrames implements AudioStream, blocking on the device callback
// buffer and copying available interleaved frames into buf.
func (c *PortAudioCapture) ReadFrames(buf []float32) (int, error) {
	if err := c.stream.Read(); err != nil {
		return 0, fmt.Errorf("portaudio: read: %w", err)
	}
	n := copy(buf, c.ring)
	return n / c.channels, nil
}

// Seek is a no-op for a live capture device: there is nothing to rewind
// to, so EOF/looping semantics never apply to this stream.
func (c *PortAudioCapture) Seek(int64) error {
	return nil
}

// Close stops the stream and releases the PortAudio device.
func (c *PortAudioCapture) Close() error {
	if c.stream == nil {
		return nil
	}
	err := c.stream.Close()
	portaudio.Terminate()
	return err
}

var _ AudioStream = (*PortAudioCapture)(nil)
var _ io.Closer = (*PortAudioCapture)(nil)
