// Package control maps finger states to edge-triggered application actions.
package control

import "fmt"

// AppID names an application the controller can open or close.
type AppID string

const (
	Notepad    AppID = "notepad"
	Browser    AppID = "browser"
	Calculator AppID = "calculator"
)

// Apps lists every controllable application in a stable order.
var Apps = []AppID{Notepad, Browser, Calculator}

// AppStatus is the state of one application's two-state machine.
type AppStatus uint8

const (
	Closed AppStatus = iota
	Open
)

func (s AppStatus) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

// MarshalText implements encoding.TextMarshaler.
func (s AppStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Transition is a named edge of an application state machine.
type Transition string

const (
	// TransitionLaunch moves an application from Closed to Open.
	TransitionLaunch Transition = "launch"
	// TransitionTerminate moves an application from Open to Closed.
	TransitionTerminate Transition = "terminate"
)

// Apply returns the status after t, and whether t was allowed from s.
// A disallowed transition leaves the status unchanged.
func (t Transition) Apply(s AppStatus) (AppStatus, bool) {
	switch {
	case t == TransitionLaunch && s == Closed:
		return Open, true
	case t == TransitionTerminate && s == Open:
		return Closed, true
	default:
		return s, false
	}
}

// ActionState holds the only state that survives between frames.
// The zero value has every application closed.
type ActionState struct {
	Notepad    AppStatus `json:"notepad"`
	Browser    AppStatus `json:"browser"`
	Calculator AppStatus `json:"calculator"`
}

// Status returns the status of app.
func (s ActionState) Status(app AppID) AppStatus {
	switch app {
	case Notepad:
		return s.Notepad
	case Browser:
		return s.Browser
	case Calculator:
		return s.Calculator
	default:
		return Closed
	}
}

// IsOpen reports whether app is considered open.
func (s ActionState) IsOpen(app AppID) bool {
	return s.Status(app) == Open
}

// With returns a copy of s with app set to status.
func (s ActionState) With(app AppID, status AppStatus) ActionState {
	switch app {
	case Notepad:
		s.Notepad = status
	case Browser:
		s.Browser = status
	case Calculator:
		s.Calculator = status
	}
	return s
}

func (s ActionState) String() string {
	return fmt.Sprintf("notepad=%s browser=%s calculator=%s", s.Notepad, s.Browser, s.Calculator)
}
