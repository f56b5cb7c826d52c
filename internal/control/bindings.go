package control

import "github.com/ayusman/mudra/internal/gesture"

// Binding ties a right-hand finger state to an action. When App is set the
// binding drives that application's state machine through Transition and only
// fires when the transition is allowed, which is what keeps a held gesture
// from firing on every frame.
type Binding struct {
	Name       string              `json:"name"`
	Vector     gesture.FingerState `json:"vector"`
	App        AppID               `json:"app,omitempty"`
	Transition Transition          `json:"transition,omitempty"`
	Action     Action              `json:"action"`
}

// Guarded reports whether the binding depends on application state.
func (b Binding) Guarded() bool {
	return b.App != ""
}

// bindings is the fixed gesture table. Browser and calculator have no close
// gesture.
var bindings = []Binding{
	{
		Name:       "open-notepad",
		Vector:     gesture.NewFingerState(true, false, false, false),
		App:        Notepad,
		Transition: TransitionLaunch,
		Action:     LaunchApp(Notepad),
	},
	{
		Name:       "open-browser",
		Vector:     gesture.NewFingerState(true, true, false, false),
		App:        Browser,
		Transition: TransitionLaunch,
		Action:     LaunchApp(Browser),
	},
	{
		Name:       "open-calculator",
		Vector:     gesture.NewFingerState(true, true, true, false),
		App:        Calculator,
		Transition: TransitionLaunch,
		Action:     LaunchApp(Calculator),
	},
	{
		Name:       "close-notepad",
		Vector:     gesture.NewFingerState(false, false, false, false),
		App:        Notepad,
		Transition: TransitionTerminate,
		Action:     TerminateApp(Notepad),
	},
	{
		Name:   "end-session",
		Vector: gesture.NewFingerState(true, false, false, true),
		Action: EndSession(),
	},
}

// Bindings returns a copy of the gesture table.
func Bindings() []Binding {
	out := make([]Binding, len(bindings))
	copy(out, bindings)
	return out
}

// lookup returns the binding for v, if any.
func lookup(v gesture.FingerState) (Binding, bool) {
	for _, b := range bindings {
		if b.Vector == v {
			return b, true
		}
	}
	return Binding{}, false
}
