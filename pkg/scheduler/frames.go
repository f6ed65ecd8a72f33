package scheduler

import "sync"

// FrameSource delivers paint opportunities. Both methods are safe to call
// from any goroutine; callbacks always run on the UI goroutine.
type FrameSource interface {
	// RequestFrame runs fn on the next paint opportunity.
	RequestFrame(fn func())

	// Post runs fn on the UI goroutine as soon as possible.
	Post(fn func())
}

// ManualFrames is a FrameSource whose paint opportunities are delivered by
// calling Tick. The goroutine calling Tick acts as the UI goroutine.
type ManualFrames struct {
	mu       sync.Mutex
	frames   []func()
	posted   []func()
	requests int
}

// NewManualFrames creates a ManualFrames.
func NewManualFrames() *ManualFrames {
	return &ManualFrames{}
}

// RequestFrame implements FrameSource.
func (m *ManualFrames) RequestFrame(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = append(m.frames, fn)
	m.requests++
}

// Post implements FrameSource.
func (m *ManualFrames) Post(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posted = append(m.posted, fn)
}

// Requests returns the total number of frames requested so far.
func (m *ManualFrames) Requests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests
}

// PendingFrames returns the number of requested frames not yet delivered.
func (m *ManualFrames) PendingFrames() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.frames)
}

// RunPosted runs all posted callbacks, including ones posted while
// running. Returns the number run.
func (m *ManualFrames) RunPosted() int {
	count := 0
	for {
		m.mu.Lock()
		posted := m.posted
		m.posted = nil
		m.mu.Unlock()
		if len(posted) == 0 {
			return count
		}
		for _, fn := range posted {
			fn()
			count++
		}
	}
}

// Tick runs posted callbacks and then delivers one paint opportunity to
// every frame requested before the call. Returns the number of frame
// callbacks run.
func (m *ManualFrames) Tick() int {
	m.RunPosted()

	m.mu.Lock()
	frames := m.frames
	m.frames = nil
	m.mu.Unlock()

	for _, fn := range frames {
		fn()
	}
	return len(frames)
}
