// Package display shows annotated frames and reads the exit key.
package display

import (
	"sync"

	"gocv.io/x/gocv"
)

// NoKey is returned by PollKey when no key was pressed.
const NoKey = -1

// Display presents frames to the user.
type Display interface {
	// Show presents img. The caller keeps ownership of img.
	Show(img *gocv.Mat)
	// PollKey returns the last pressed key code or NoKey.
	PollKey() int
	Close() error
}

// Window is a native OpenCV window.
type Window struct {
	mu     sync.Mutex
	window *gocv.Window
}

// NewWindow opens a window titled title.
func NewWindow(title string) *Window {
	return &Window{window: gocv.NewWindow(title)}
}

// Show draws img in the window.
func (w *Window) Show(img *gocv.Mat) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.window == nil || img == nil || img.Empty() {
		return
	}
	w.window.IMShow(*img)
}

// PollKey pumps the window event loop for one millisecond.
func (w *Window) PollKey() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.window == nil {
		return NoKey
	}
	return w.window.WaitKey(1)
}

// Close destroys the window. It is safe to call more than once.
func (w *Window) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.window == nil {
		return nil
	}
	err := w.window.Close()
	w.window = nil
	return err
}

// Headless discards frames. It is used when the tray owns the UI or no
// desktop is available.
type Headless struct {
	mu     sync.Mutex
	shown  int
	closed bool
}

// NewHeadless returns a display that never shows anything.
func NewHeadless() *Headless {
	return &Headless{}
}

func (h *Headless) Show(img *gocv.Mat) {
	h.mu.Lock()
	h.shown++
	h.mu.Unlock()
}

func (h *Headless) PollKey() int {
	return NoKey
}

func (h *Headless) Close() error {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	return nil
}

// Shown returns how many frames were passed to Show.
func (h *Headless) Shown() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.shown
}

// Closed reports whether Close was called.
func (h *Headless) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}
