package detector

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"gocv.io/x/gocv"
)

func TestParseHandedness(t *testing.T) {
	tests := []struct {
		label   string
		want    Handedness
		wantErr bool
	}{
		{"Left", Left, false},
		{"Right", Right, false},
		{"left", "", true},
		{"", "", true},
		{"Both", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, err := ParseHandedness(tt.label)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseHandedness(%q) error = %v, wantErr %v", tt.label, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseHandedness(%q) = %q, want %q", tt.label, got, tt.want)
			}
		})
	}
}

func TestHandLandmarks_Complete(t *testing.T) {
	t.Run("nil hand is incomplete", func(t *testing.T) {
		var h *HandLandmarks
		if h.Complete() {
			t.Error("expected nil hand to be incomplete")
		}
	})

	t.Run("20 points is incomplete", func(t *testing.T) {
		h := HandLandmarks{Points: make([]Point3D, NumLandmarks-1)}
		if h.Complete() {
			t.Error("expected 20-point hand to be incomplete")
		}
	})

	t.Run("21 points is complete", func(t *testing.T) {
		h := PointingLandmarks()
		if !h.Complete() {
			t.Error("expected preset hand to be complete")
		}
	})
}

func TestDecodeResponse(t *testing.T) {
	t.Run("parses hands and handedness", func(t *testing.T) {
		line := []byte(`{"hands":[{"points":[{"x":0.1,"y":0.2,"z":-0.01}],"handedness":"Left","score":0.91}]}` + "\n")

		hands, err := decodeResponse(line)
		if err != nil {
			t.Fatalf("decodeResponse() error = %v", err)
		}
		if len(hands) != 1 {
			t.Fatalf("expected 1 hand, got %d", len(hands))
		}
		if hands[0].Handedness != Left {
			t.Errorf("expected Left, got %s", hands[0].Handedness)
		}
		if hands[0].Points[0].Y != 0.2 {
			t.Errorf("expected y 0.2, got %f", hands[0].Points[0].Y)
		}
	})

	t.Run("keeps short hands for the mapper to reject", func(t *testing.T) {
		line := []byte(`{"hands":[{"points":[{"x":0.1,"y":0.2,"z":0}],"handedness":"Right","score":0.8}]}`)

		hands, err := decodeResponse(line)
		if err != nil {
			t.Fatalf("decodeResponse() error = %v", err)
		}
		if len(hands) != 1 || hands[0].Complete() {
			t.Errorf("expected one incomplete hand, got %+v", hands)
		}
	})

	t.Run("drops unknown handedness", func(t *testing.T) {
		line := []byte(`{"hands":[{"points":[],"handedness":"Unknown","score":0.5}]}`)

		hands, err := decodeResponse(line)
		if err != nil {
			t.Fatalf("decodeResponse() error = %v", err)
		}
		if len(hands) != 0 {
			t.Errorf("expected no hands, got %d", len(hands))
		}
	})

	t.Run("no hands", func(t *testing.T) {
		hands, err := decodeResponse([]byte(`{"hands":[]}`))
		if err != nil {
			t.Fatalf("decodeResponse() error = %v", err)
		}
		if len(hands) != 0 {
			t.Errorf("expected no hands, got %d", len(hands))
		}
	})

	t.Run("service error", func(t *testing.T) {
		_, err := decodeResponse([]byte(`{"hands":[],"error":"bad frame"}`))
		if err == nil {
			t.Fatal("expected error from service error field")
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		if _, err := decodeResponse([]byte(`not json`)); err == nil {
			t.Fatal("expected parse error")
		}
	})
}

func TestNewMediaPipeDetector_MissingScript(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ScriptPath = "/nonexistent/mediapipe_service.py"

	if _, err := NewMediaPipeDetector(cfg, nil); err == nil {
		t.Fatal("expected error for missing script")
	}
}

// fakeService writes an executable standing in for the Python interpreter.
// Every start appends a line to the returned log path.
func fakeService(t *testing.T, body string) (*MediaPipeDetector, string) {
	t.Helper()
	dir := t.TempDir()
	log := filepath.Join(dir, "starts")
	python := filepath.Join(dir, "python")
	if err := os.WriteFile(python, []byte("#!/bin/sh\necho start >> "+log+"\n"+body), 0755); err != nil {
		t.Fatalf("failed to write fake interpreter: %v", err)
	}
	script := filepath.Join(dir, ServiceScript)
	if err := os.WriteFile(script, nil, 0644); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	cfg := DefaultConfig()
	cfg.ScriptPath = script
	cfg.PythonPath = python

	d, err := NewMediaPipeDetector(cfg, nil)
	if err != nil {
		t.Fatalf("NewMediaPipeDetector() error = %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d, log
}

func countStarts(t *testing.T, log string) int {
	t.Helper()
	data, err := os.ReadFile(log)
	if err != nil {
		return 0
	}
	return strings.Count(string(data), "start")
}

func TestMediaPipeDetector_Detect(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping OpenCV detector test")
	}
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	frame := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
	defer frame.Close()

	t.Run("reads one response per frame", func(t *testing.T) {
		d, log := fakeService(t, "echo '{\"hands\":[]}'\ncat > /dev/null\n")

		hands, err := d.Detect(&frame)
		if err != nil {
			t.Fatalf("Detect() error = %v", err)
		}
		if len(hands) != 0 {
			t.Errorf("expected no hands, got %d", len(hands))
		}
		if err := d.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
		if n := countStarts(t, log); n != 1 {
			t.Errorf("expected one start, got %d", n)
		}
	})

	t.Run("restarts a service that exited", func(t *testing.T) {
		d, log := fakeService(t, "exit 1\n")
		d.restartDelay = 0

		if _, err := d.Detect(&frame); err == nil {
			t.Fatal("expected error from exited service")
		}
		_, err := d.Detect(&frame)
		if err == nil {
			t.Fatal("expected error from exited service")
		}
		if errors.Is(err, ErrServiceUnavailable) {
			t.Fatalf("expected a fresh start, got %v", err)
		}
		if n := countStarts(t, log); n != 2 {
			t.Errorf("expected the service to be started twice, got %d", n)
		}
	})

	t.Run("waits before restarting", func(t *testing.T) {
		d, log := fakeService(t, "exit 1\n")
		d.restartDelay = time.Hour

		if _, err := d.Detect(&frame); err == nil {
			t.Fatal("expected error from exited service")
		}
		if _, err := d.Detect(&frame); !errors.Is(err, ErrServiceUnavailable) {
			t.Fatalf("expected ErrServiceUnavailable, got %v", err)
		}
		if n := countStarts(t, log); n != 1 {
			t.Errorf("expected a single start during backoff, got %d", n)
		}
	})

	t.Run("empty frame skips the service", func(t *testing.T) {
		d, log := fakeService(t, "exit 1\n")
		empty := gocv.NewMat()
		defer empty.Close()

		hands, err := d.Detect(&empty)
		if err != nil || hands != nil {
			t.Errorf("Detect(empty) = %v, %v", hands, err)
		}
		if n := countStarts(t, log); n != 0 {
			t.Errorf("service should not start for an empty frame, got %d", n)
		}
	})
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty hands by default", func(t *testing.T) {
		mock := NewMockDetector()

		hands, err := mock.Detect(nil)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if hands != nil {
			t.Errorf("expected nil hands, got %v", hands)
		}
	})

	t.Run("queued frames are consumed in order", func(t *testing.T) {
		mock := NewMockDetector()
		mock.Enqueue(
			[]HandLandmarks{FistLandmarks()},
			[]HandLandmarks{PointingLandmarks(), OpenPalmLandmarks()},
		)
		mock.SetHands([]HandLandmarks{OpenPalmLandmarks()})

		wantCounts := []int{1, 2, 1, 1}
		for i, want := range wantCounts {
			hands, err := mock.Detect(nil)
			if err != nil {
				t.Fatalf("call %d: unexpected error: %v", i, err)
			}
			if len(hands) != want {
				t.Errorf("call %d: expected %d hands, got %d", i, want, len(hands))
			}
		}
		if mock.Calls() != len(wantCounts) {
			t.Errorf("expected %d calls, got %d", len(wantCounts), mock.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()

		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		hands, err := mock.Detect(nil)
		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if hands != nil {
			t.Errorf("expected nil hands when error is set, got %v", hands)
		}
	})

	t.Run("Close marks closed", func(t *testing.T) {
		mock := NewMockDetector()

		if err := mock.Close(); err != nil {
			t.Errorf("expected Close to return nil, got %v", err)
		}
		if !mock.Closed() {
			t.Error("expected Closed() to be true")
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
	})
}

func TestPoseLandmarks(t *testing.T) {
	tips := [4]int{IndexTip, MiddleTip, RingTip, PinkyTip}

	t.Run("extended fingers have tip above joint", func(t *testing.T) {
		h := OpenPalmLandmarks()
		for _, tip := range tips {
			if h.Points[tip].Y >= h.Points[tip-2].Y {
				t.Errorf("landmark %d: tip y %f should be above joint y %f", tip, h.Points[tip].Y, h.Points[tip-2].Y)
			}
		}
	})

	t.Run("folded fingers have tip below joint", func(t *testing.T) {
		h := FistLandmarks()
		for _, tip := range tips {
			if h.Points[tip].Y <= h.Points[tip-2].Y {
				t.Errorf("landmark %d: tip y %f should be below joint y %f", tip, h.Points[tip].Y, h.Points[tip-2].Y)
			}
		}
	})

	t.Run("keeps handedness", func(t *testing.T) {
		h := PoseLandmarks(Left, true, false, false, false)
		if h.Handedness != Left {
			t.Errorf("expected Left, got %s", h.Handedness)
		}
		if len(h.Points) != NumLandmarks {
			t.Errorf("expected %d points, got %d", NumLandmarks, len(h.Points))
		}
	})
}
