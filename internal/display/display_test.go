package display

import (
	"testing"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

func TestHandConnections(t *testing.T) {
	seen := make(map[int]bool)
	for _, c := range HandConnections {
		for _, idx := range c {
			if idx < 0 || idx >= detector.NumLandmarks {
				t.Fatalf("connection %v references landmark out of range", c)
			}
			seen[idx] = true
		}
		if c[0] == c[1] {
			t.Errorf("connection %v joins a landmark to itself", c)
		}
	}
	if len(seen) != detector.NumLandmarks {
		t.Errorf("expected every landmark connected, got %d", len(seen))
	}
}

func TestHeadless(t *testing.T) {
	h := NewHeadless()

	img := gocv.NewMat()
	defer img.Close()

	h.Show(&img)
	h.Show(nil)

	if h.Shown() != 2 {
		t.Errorf("expected 2 frames shown, got %d", h.Shown())
	}
	if h.PollKey() != NoKey {
		t.Error("headless display should never report a key")
	}
	if err := h.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !h.Closed() {
		t.Error("expected Closed() after Close")
	}
}

func TestDrawHand(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping OpenCV drawing test")
	}

	hand, err := gesture.MapToPixels(detector.OpenPalmLandmarks(), 640, 480)
	if err != nil {
		t.Fatalf("MapToPixels() error = %v", err)
	}

	img := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer img.Close()

	DrawHand(&img, hand)
	DrawStatus(&img, "notepad=open")

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	if gocv.CountNonZero(gray) == 0 {
		t.Error("expected hand pixels on the frame")
	}

	// Empty images are ignored rather than panicking.
	empty := gocv.NewMat()
	defer empty.Close()
	DrawHand(&empty, hand)
	DrawStatus(&empty, "x")
}
