package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/display"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
)

// Run opens the camera and processes frames until the end-session gesture,
// the exit key, ctx cancellation or a frame read failure. The camera,
// detector and display are released on every path.
func (s *Session) Run(ctx context.Context) error {
	reason := store.EndReasonCancelled
	defer func() { s.cleanup(reason) }()

	if err := s.camera.Open(); err != nil {
		reason = store.EndReasonFrameRead
		return fmt.Errorf("%w: %v", ErrFrameRead, err)
	}

	s.begin()
	s.logger.Info("session started")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		frame, err := s.camera.ReadFrame()
		if err != nil {
			reason = store.EndReasonFrameRead
			s.logger.Error("camera read failed", "err", err)
			return fmt.Errorf("%w: %v", ErrFrameRead, err)
		}

		end := s.processFrame(frame)
		s.render(frame)
		frame.Close()

		if end {
			reason = store.EndReasonGesture
			s.logger.Info("session ended by gesture")
			return nil
		}

		if key := s.display.PollKey(); key != display.NoKey && key&0xFF == s.exitKey {
			reason = store.EndReasonExitKey
			s.logger.Info("session ended by exit key")
			return nil
		}
	}
}

// processFrame runs detection and control for one frame and draws overlays.
// It reports whether the frame asked for the session to end.
func (s *Session) processFrame(frame *gocv.Mat) bool {
	if !s.IsEnabled() {
		s.publish(func(snap *Snapshot) {
			snap.Hands = 0
			snap.Vector = nil
			snap.Keyboard = false
		})
		return false
	}

	raw, err := s.detector.Detect(frame)
	if errors.Is(err, detector.ErrServiceUnavailable) {
		raw = nil
	} else if err != nil {
		s.logger.Warn("hand detection failed", "err", err)
		raw = nil
	}

	hands, dropped := gesture.MapAll(raw, frame.Cols(), frame.Rows())
	if dropped > 0 {
		s.logger.Debug("dropped malformed hands", "count", dropped)
	}

	if s.drawHands {
		for _, h := range hands {
			display.DrawHand(frame, h)
		}
	}

	res := s.controller.Process(hands)
	s.keyboard.Draw(frame, res.Keyboard)

	s.vector = res.Vector
	if len(res.Actions) > 0 && s.dispatcher != nil {
		s.dispatcher.Dispatch(res.Actions)
	}
	s.vector = nil

	s.publish(func(snap *Snapshot) {
		snap.Hands = len(hands)
		snap.Vector = res.Vector
		snap.Keyboard = res.Keyboard != nil
		snap.State = res.State
	})

	return control.EndsSession(res.Actions)
}

// render adds the status line, updates the preview and shows the frame.
func (s *Session) render(frame *gocv.Mat) {
	snap := s.Status()
	status := snap.State.String()
	if !snap.Enabled {
		status = "paused"
	} else if snap.Vector != nil {
		status = snap.Vector.String() + " " + status
	}
	display.DrawStatus(frame, status)

	if s.preview {
		s.encodePreview(frame)
	}

	s.display.Show(frame)
}

func (s *Session) encodePreview(frame *gocv.Mat) {
	if frame.Empty() {
		return
	}
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		s.logger.Debug("encode preview", "err", err)
		return
	}
	defer buf.Close()

	data := append([]byte(nil), buf.GetBytes()...)

	s.mu.Lock()
	s.jpeg = data
	s.mu.Unlock()
}

func (s *Session) publish(update func(snap *Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Frames++
	update(&s.snapshot)
	s.snapshot.UpdatedAt = time.Now()
}

func (s *Session) begin() {
	s.mu.Lock()
	s.snapshot.Running = true
	s.mu.Unlock()

	if s.store == nil {
		return
	}

	sess, err := s.store.Sessions().Create()
	if err != nil {
		s.logger.Warn("journal session start", "err", err)
		return
	}

	s.mu.Lock()
	s.snapshot.SessionID = sess.ID
	s.mu.Unlock()
	s.logger.Debug("journal session created", "id", sess.ID)
}

func (s *Session) cleanup(reason string) {
	if err := s.camera.Close(); err != nil {
		s.logger.Warn("close camera", "err", err)
	}
	if err := s.detector.Close(); err != nil {
		s.logger.Warn("close detector", "err", err)
	}
	if err := s.display.Close(); err != nil {
		s.logger.Warn("close display", "err", err)
	}

	s.mu.Lock()
	s.snapshot.Running = false
	sessionID := s.snapshot.SessionID
	s.mu.Unlock()

	if s.store != nil && sessionID != "" {
		if err := s.store.Sessions().End(sessionID, reason); err != nil {
			s.logger.Warn("journal session end", "err", err)
		}
	}

	s.logger.Info("session stopped", "reason", reason)
}
