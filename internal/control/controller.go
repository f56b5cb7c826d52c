package control

import (
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

// Step is the pure transition function of the controller. Left hands never
// change state or produce actions. Right hands are looked up in the gesture
// table; a guarded binding fires only when its transition is allowed from the
// current application status.
func Step(s ActionState, hand detector.Handedness, v gesture.FingerState) (ActionState, []Action) {
	if hand != detector.Right {
		return s, nil
	}

	b, ok := lookup(v)
	if !ok {
		return s, nil
	}

	if !b.Guarded() {
		return s, []Action{b.Action}
	}

	next, allowed := b.Transition.Apply(s.Status(b.App))
	if !allowed {
		return s, nil
	}
	return s.With(b.App, next), []Action{b.Action}
}

// Result describes what one frame produced.
type Result struct {
	// Actions to dispatch, in order.
	Actions []Action
	// Keyboard is the hand the keyboard overlay should follow, if any.
	Keyboard *gesture.PixelHand
	// Vector is the classified finger state of the driving hand, if one was classified.
	Vector *gesture.FingerState
	// State is the action state after the frame.
	State ActionState
}

// Controller holds ActionState across frames. It is not safe for concurrent
// use; the frame loop is its only caller.
type Controller struct {
	state ActionState
}

// NewController returns a controller with every application closed.
func NewController() *Controller {
	return &Controller{}
}

// State returns the current action state.
func (c *Controller) State() ActionState {
	return c.state
}

// Process handles the mapped hands of one frame. Only frames with exactly
// one hand drive the controller: a left hand routes to the keyboard overlay
// and a right hand is classified and stepped. Frames with zero or several
// hands do nothing.
func (c *Controller) Process(hands []gesture.PixelHand) Result {
	if len(hands) != 1 {
		return Result{State: c.state}
	}

	hand := hands[0]
	if hand.Handedness == detector.Left {
		return Result{Keyboard: &hand, State: c.state}
	}

	v := gesture.Classify(hand)
	next, actions := Step(c.state, hand.Handedness, v)
	c.state = next
	return Result{Actions: actions, Vector: &v, State: next}
}
