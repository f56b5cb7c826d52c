// Package gesture turns detector output into pixel-space hands and finger states.
package gesture

import (
	"errors"
	"fmt"
	"math"

	"github.com/ayusman/mudra/internal/detector"
)

var (
	// ErrMalformedHand is returned when an observation has fewer than 21 landmarks.
	ErrMalformedHand = errors.New("malformed hand observation")
	// ErrInvalidFrameSize is returned for non-positive frame dimensions.
	ErrInvalidFrameSize = errors.New("invalid frame size")
)

// PixelPoint is a landmark in frame pixels. Z is scaled by the frame width so
// it shares the unit of X.
type PixelPoint struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// PixelHand is one hand mapped to pixel coordinates. It lives for a single frame.
type PixelHand struct {
	Points     [detector.NumLandmarks]PixelPoint `json:"points"`
	Handedness detector.Handedness               `json:"handedness"`
}

// MapToPixels rescales normalized landmarks to the given frame size.
// Landmarks past the 21st are ignored.
func MapToPixels(h detector.HandLandmarks, width, height int) (PixelHand, error) {
	if width <= 0 || height <= 0 {
		return PixelHand{}, fmt.Errorf("%w: %dx%d", ErrInvalidFrameSize, width, height)
	}
	if !h.Complete() {
		return PixelHand{}, fmt.Errorf("%w: got %d landmarks, want %d", ErrMalformedHand, len(h.Points), detector.NumLandmarks)
	}

	w := float64(width)
	hgt := float64(height)

	out := PixelHand{Handedness: h.Handedness}
	for i := 0; i < detector.NumLandmarks; i++ {
		p := h.Points[i]
		out.Points[i] = PixelPoint{
			X: int(math.Round(p.X * w)),
			Y: int(math.Round(p.Y * hgt)),
			Z: int(math.Round(p.Z * w)),
		}
	}
	return out, nil
}

// MapAll maps every hand in a frame, dropping malformed ones. The second
// return value counts the dropped observations.
func MapAll(hands []detector.HandLandmarks, width, height int) ([]PixelHand, int) {
	mapped := make([]PixelHand, 0, len(hands))
	dropped := 0
	for _, h := range hands {
		p, err := MapToPixels(h, width, height)
		if err != nil {
			dropped++
			continue
		}
		mapped = append(mapped, p)
	}
	return mapped, dropped
}
