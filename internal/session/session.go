// Package session runs the capture, detect, classify and act loop.
package session

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/display"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/keyboard"
	"github.com/ayusman/mudra/internal/launcher"
	"github.com/ayusman/mudra/internal/store"
)

// ErrFrameRead is returned by Run when the camera stops producing frames.
var ErrFrameRead = errors.New("frame read failed")

// DefaultExitKey is ESC.
const DefaultExitKey = 27

// Config holds the collaborators of a Session. Camera and Detector are
// required.
type Config struct {
	Camera   capture.Camera
	Detector detector.Detector
	// Dispatcher runs launch and terminate actions. Without one the session
	// only observes gestures, and the end-session gesture still stops it.
	Dispatcher *launcher.Dispatcher
	// Display defaults to a headless display.
	Display display.Display
	// Keyboard defaults to a renderer over keyboard.DefaultLayout.
	Keyboard *keyboard.Renderer
	// Store is optional. When set, sessions and actions are journaled and
	// the enabled flag is persisted.
	Store  *store.Store
	Logger *slog.Logger

	ExitKey   int
	DrawHands bool
	// Preview keeps a JPEG copy of the latest rendered frame for LatestJPEG.
	Preview bool
}

// Snapshot is a copy of the loop's observable state.
type Snapshot struct {
	SessionID  string               `json:"session_id,omitempty"`
	Running    bool                 `json:"running"`
	Enabled    bool                 `json:"enabled"`
	Frames     uint64               `json:"frames"`
	Hands      int                  `json:"hands"`
	Vector     *gesture.FingerState `json:"vector,omitempty"`
	Keyboard   bool                 `json:"keyboard"`
	State      control.ActionState  `json:"state"`
	LastAction string               `json:"last_action,omitempty"`
	LastError  string               `json:"last_error,omitempty"`
	UpdatedAt  time.Time            `json:"updated_at"`
}

// Session owns the frame loop. Run may be called once.
type Session struct {
	camera     capture.Camera
	detector   detector.Detector
	display    display.Display
	keyboard   *keyboard.Renderer
	dispatcher *launcher.Dispatcher
	store      *store.Store
	logger     *slog.Logger
	controller *control.Controller

	exitKey   int
	drawHands bool
	preview   bool

	// vector is the finger state of the frame whose actions are being
	// dispatched. Only the loop goroutine touches it.
	vector *gesture.FingerState

	mu       sync.RWMutex
	enabled  bool
	snapshot Snapshot
	jpeg     []byte
}

// New creates a Session from cfg.
func New(cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	disp := cfg.Display
	if disp == nil {
		disp = display.NewHeadless()
	}
	kb := cfg.Keyboard
	if kb == nil {
		kb = keyboard.NewRenderer(keyboard.DefaultLayout())
	}
	exitKey := cfg.ExitKey
	if exitKey <= 0 {
		exitKey = DefaultExitKey
	}

	enabled := true
	if cfg.Store != nil {
		enabled = cfg.Store.Settings().GetBool(store.SettingEnabled, true)
	}

	s := &Session{
		camera:     cfg.Camera,
		detector:   cfg.Detector,
		display:    disp,
		keyboard:   kb,
		dispatcher: cfg.Dispatcher,
		store:      cfg.Store,
		logger:     logger,
		controller: control.NewController(),
		exitKey:    exitKey,
		drawHands:  cfg.DrawHands,
		preview:    cfg.Preview,
		enabled:    enabled,
	}
	s.snapshot.Enabled = enabled

	if s.dispatcher != nil {
		s.dispatcher.OnAction(s.recordAction)
	}

	return s
}

// SetEnabled enables or disables gesture processing. Frames keep flowing to
// the display while disabled.
func (s *Session) SetEnabled(enabled bool) {
	s.mu.Lock()
	s.enabled = enabled
	s.snapshot.Enabled = enabled
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Settings().SetBool(store.SettingEnabled, enabled); err != nil {
			s.logger.Warn("persist enabled flag", "err", err)
		}
	}
	s.logger.Info("gesture processing toggled", "enabled", enabled)
}

// IsEnabled returns whether gesture processing is on.
func (s *Session) IsEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled
}

// Status returns a copy of the latest snapshot.
func (s *Session) Status() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if snap.Vector != nil {
		v := *snap.Vector
		snap.Vector = &v
	}
	return snap
}

// LatestJPEG returns the latest rendered frame as JPEG, or nil when preview
// is off or no frame has been rendered yet.
func (s *Session) LatestJPEG() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jpeg
}

// recordAction is the dispatcher hook. It runs on the loop goroutine.
func (s *Session) recordAction(a control.Action, err error) {
	s.mu.Lock()
	s.snapshot.LastAction = a.String()
	if err != nil {
		s.snapshot.LastError = err.Error()
	}
	sessionID := s.snapshot.SessionID
	s.mu.Unlock()

	if s.store == nil || sessionID == "" {
		return
	}

	e := &store.Event{
		SessionID: sessionID,
		Kind:      string(a.Kind),
		App:       string(a.App),
	}
	if s.vector != nil {
		e.Vector = s.vector.String()
	}
	if err != nil {
		e.Error = err.Error()
	}
	if rerr := s.store.Events().Record(e); rerr != nil {
		s.logger.Warn("journal action", "action", a.String(), "err", rerr)
	}
}
