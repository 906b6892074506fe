package frame

import "errors"

// ErrSwapchainLost is returned by Presenter.Acquire/Present when the
// surface needs reconfiguring at its current size before the next frame.
var ErrSwapchainLost = errors.New("frame: swapchain lost")

// ErrOutOfMemory is returned when the presenter cannot allocate swapchain
// resources; the orchestrator treats this as fatal.
var ErrOutOfMemory = errors.New("frame: out of memory")

// Frame is the acquired swapchain image the orchestrator renders into and
// hands back to Present.
type Frame struct {
	Width, Height int
}

// Presenter is the small interface the orchestrator depends on in place of
// a real windowing/swapchain backend, which is out of scope here — the
// window system and surface creation are external collaborators.
type Presenter interface {
	Acquire() (Frame, error)
	Present(Frame) error
	Reconfigure(width, height int)
	Lost() <-chan struct{}
}

// NullPresenter is a headless Presenter that always succeeds, sized to
// whatever Reconfigure last set.
type NullPresenter struct {
	Width, Height int
}

// NewNullPresenter creates a NullPresenter at the given size.
func NewNullPresenter(width, height int) *NullPresenter {
	return &NullPresenter{Width: width, Height: height}
}

func (p *NullPresenter) Acquire() (Frame, error) {
	return Frame{Width: p.Width, Height: p.Height}, nil
}

func (p *NullPresenter) Present(Frame) error { return nil }

func (p *NullPresenter) Reconfigure(width, height int) {
	p.Width, p.Height = width, height
}

func (p *NullPresenter) Lost() <-chan struct{} { return nil }

// RecordingPresenter counts every Acquire/Present/Reconfigure call so
// orchestrator tests can assert present counts and failure recovery.
type RecordingPresenter struct {
	Width, Height int

	Acquired     int
	Presented    []Frame
	Reconfigured []Frame

	// NextAcquireErr, if set, is returned once by the next Acquire call
	// and then cleared.
	NextAcquireErr error
	lost           chan struct{}
}

// NewRecordingPresenter creates a RecordingPresenter at the given size.
func NewRecordingPresenter(width, height int) *RecordingPresenter {
	return &RecordingPresenter{Width: width, Height: height, lost: make(chan struct{}, 1)}
}

func (p *RecordingPresenter) Acquire() (Frame, error) {
	p.Acquired++
	if p.NextAcquireErr != nil {
		err := p.NextAcquireErr
		p.NextAcquireErr = nil
		return Frame{}, err
	}
	return Frame{Width: p.Width, Height: p.Height}, nil
}

func (p *RecordingPresenter) Present(f Frame) error {
	p.Presented = append(p.Presented, f)
	return nil
}

func (p *RecordingPresenter) Reconfigure(width, height int) {
	p.Width, p.Height = width, height
	p.Reconfigured = append(p.Reconfigured, Frame{Width: width, Height: height})
}

func (p *RecordingPresenter) Lost() <-chan struct{} { return p.lost }

// TriggerLost signals a surface loss the orchestrator should observe on
// its next poll of Lost().
func (p *RecordingPresenter) TriggerLost() {
	select {
	case p.lost <- struct{}{}:
	default:
	}
}
