package gesture

import (
	"fmt"
	"strings"

	"github.com/ayusman/mudra/internal/detector"
)

// Finger indexes a FingerState. The thumb is not tracked.
type Finger int

const (
	Index Finger = iota
	Middle
	Ring
	Little
	NumFingers
)

// fingertips lists the tip landmark of each tracked finger.
var fingertips = [NumFingers]int{
	detector.IndexTip,
	detector.MiddleTip,
	detector.RingTip,
	detector.PinkyTip,
}

// FingerState records which of the index, middle, ring and little fingers are extended.
type FingerState [NumFingers]bool

// Classify reports a finger as extended when its tip sits strictly higher in
// the image than the joint two landmarks below it (the PIP). Image y grows
// downward, so equal heights count as folded.
//
// This only holds for an upright hand facing the camera. A sideways or
// inverted hand is misread.
func Classify(h PixelHand) FingerState {
	var s FingerState
	for f, tip := range fingertips {
		s[f] = h.Points[tip].Y < h.Points[tip-2].Y
	}
	return s
}

// NewFingerState builds a vector from individual finger flags.
func NewFingerState(index, middle, ring, little bool) FingerState {
	return FingerState{index, middle, ring, little}
}

// Extended returns the number of extended fingers.
func (s FingerState) Extended() int {
	n := 0
	for _, up := range s {
		if up {
			n++
		}
	}
	return n
}

// String renders the vector as [T,F,F,F].
func (s FingerState) String() string {
	parts := make([]string, len(s))
	for i, up := range s {
		if up {
			parts[i] = "T"
		} else {
			parts[i] = "F"
		}
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// MarshalText implements encoding.TextMarshaler.
func (s FingerState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *FingerState) UnmarshalText(text []byte) error {
	parsed, err := ParseFingerState(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseFingerState accepts forms like "TFFF", "1000" or "[T,F,F,F]".
func ParseFingerState(text string) (FingerState, error) {
	var s FingerState
	cleaned := strings.NewReplacer("[", "", "]", "", ",", "", " ", "").Replace(text)
	if len(cleaned) != int(NumFingers) {
		return s, fmt.Errorf("finger state %q: want %d flags", text, NumFingers)
	}
	for i, c := range strings.ToUpper(cleaned) {
		switch c {
		case 'T', '1':
			s[i] = true
		case 'F', '0':
			s[i] = false
		default:
			return s, fmt.Errorf("finger state %q: invalid flag %q", text, c)
		}
	}
	return s, nil
}
