// Package detector turns camera frames into normalized hand landmarks.
package detector

import "gocv.io/x/gocv"

// Detector is a pose estimator. Each call returns zero or more hands found in
// the frame with 21 normalized landmarks each.
type Detector interface {
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)
	Close() error
}

// Config is passed to the estimator process on start.
type Config struct {
	MaxHands        int
	MinConfidence   float64
	MinTrackingConf float64

	// ScriptPath and PythonPath skip discovery when set.
	ScriptPath string
	PythonPath string
}

// DefaultConfig allows two hands so that a second hand can suppress actions.
func DefaultConfig() Config {
	return Config{
		MaxHands:        2,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}
