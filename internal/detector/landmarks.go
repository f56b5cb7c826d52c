// Package detector provides the hand landmark source used by the gesture pipeline.
package detector

import "fmt"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Handedness identifies which hand produced an observation.
type Handedness string

const (
	// Left is a left hand as labelled by the pose estimator.
	Left Handedness = "Left"
	// Right is a right hand as labelled by the pose estimator.
	Right Handedness = "Right"
)

// ParseHandedness converts a label into a Handedness.
func ParseHandedness(label string) (Handedness, error) {
	switch Handedness(label) {
	case Left, Right:
		return Handedness(label), nil
	default:
		return "", fmt.Errorf("hand must be %q or %q, got %q", Left, Right, label)
	}
}

// Point3D represents a normalized landmark. X and Y are in [0,1] relative to
// the frame; Z is a depth proxy on the same scale as X.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks is one hand as reported by a Detector.
// A well-formed observation has NumLandmarks points; upstream services may
// deliver fewer, and consumers must check.
type HandLandmarks struct {
	Points     []Point3D  `json:"points"`
	Handedness Handedness `json:"handedness"`
	Score      float64    `json:"score"`
}

// Complete reports whether the observation carries all 21 landmarks.
func (h *HandLandmarks) Complete() bool {
	return h != nil && len(h.Points) >= NumLandmarks
}
