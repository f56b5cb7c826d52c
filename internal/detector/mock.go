package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results frame by frame.
type MockDetector struct {
	mu     sync.Mutex
	hands  []HandLandmarks
	queue  [][]HandLandmarks
	err    error
	calls  int
	closed bool
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands returned by Detect once any queued frames are used up.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// Enqueue appends per-frame results. Each Detect call consumes one entry.
func (m *MockDetector) Enqueue(frames ...[]HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, frames...)
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the next queued result, the fixed hands, or the configured error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		return next, nil
	}
	return m.hands, nil
}

// Calls returns how many times Detect was invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Close marks the detector closed.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// fingerColumns holds the x position of each non-thumb finger, index first.
var fingerColumns = [4]float64{0.58, 0.50, 0.44, 0.38}

// PoseLandmarks builds an upright, camera-facing hand in normalized
// coordinates with the given non-thumb fingers extended. The thumb rests
// against the palm.
func PoseLandmarks(handedness Handedness, index, middle, ring, little bool) HandLandmarks {
	h := HandLandmarks{
		Points:     make([]Point3D, NumLandmarks),
		Handedness: handedness,
		Score:      0.95,
	}

	h.Points[Wrist] = Point3D{X: 0.48, Y: 0.85}
	h.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.80, Z: -0.01}
	h.Points[ThumbMCP] = Point3D{X: 0.58, Y: 0.74, Z: -0.02}
	h.Points[ThumbIP] = Point3D{X: 0.56, Y: 0.70, Z: -0.03}
	h.Points[ThumbTip] = Point3D{X: 0.53, Y: 0.68, Z: -0.03}

	for i, extended := range [4]bool{index, middle, ring, little} {
		mcp := IndexMCP + i*4
		x := fingerColumns[i]

		h.Points[mcp] = Point3D{X: x, Y: 0.62}
		if extended {
			h.Points[mcp+1] = Point3D{X: x, Y: 0.50, Z: -0.01}
			h.Points[mcp+2] = Point3D{X: x, Y: 0.42, Z: -0.02}
			h.Points[mcp+3] = Point3D{X: x, Y: 0.35, Z: -0.02}
		} else {
			h.Points[mcp+1] = Point3D{X: x, Y: 0.56, Z: -0.04}
			h.Points[mcp+2] = Point3D{X: x - 0.01, Y: 0.61, Z: -0.05}
			h.Points[mcp+3] = Point3D{X: x - 0.01, Y: 0.65, Z: -0.04}
		}
	}

	return h
}

// PointingLandmarks returns a right hand with only the index finger raised.
func PointingLandmarks() HandLandmarks {
	return PoseLandmarks(Right, true, false, false, false)
}

// FistLandmarks returns a right hand with every finger folded.
func FistLandmarks() HandLandmarks {
	return PoseLandmarks(Right, false, false, false, false)
}

// OpenPalmLandmarks returns a right hand with all four fingers extended.
func OpenPalmLandmarks() HandLandmarks {
	return PoseLandmarks(Right, true, true, true, true)
}
