package control

import (
	"reflect"
	"testing"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

func vec(t *testing.T, s string) gesture.FingerState {
	t.Helper()
	v, err := gesture.ParseFingerState(s)
	if err != nil {
		t.Fatalf("ParseFingerState(%q) error = %v", s, err)
	}
	return v
}

func pixelHand(t *testing.T, h detector.HandLandmarks) gesture.PixelHand {
	t.Helper()
	p, err := gesture.MapToPixels(h, 640, 480)
	if err != nil {
		t.Fatalf("MapToPixels() error = %v", err)
	}
	return p
}

func TestTransition_Apply(t *testing.T) {
	tests := []struct {
		name        string
		transition  Transition
		from        AppStatus
		want        AppStatus
		wantAllowed bool
	}{
		{"launch closed", TransitionLaunch, Closed, Open, true},
		{"launch open", TransitionLaunch, Open, Open, false},
		{"terminate open", TransitionTerminate, Open, Closed, true},
		{"terminate closed", TransitionTerminate, Closed, Closed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, allowed := tt.transition.Apply(tt.from)
			if got != tt.want || allowed != tt.wantAllowed {
				t.Errorf("Apply(%s) = (%s, %v), want (%s, %v)", tt.from, got, allowed, tt.want, tt.wantAllowed)
			}
		})
	}
}

func TestStep_GestureTable(t *testing.T) {
	allOpen := ActionState{Notepad: Open, Browser: Open, Calculator: Open}

	tests := []struct {
		name        string
		state       ActionState
		vector      string
		wantState   ActionState
		wantActions []Action
	}{
		{"index opens notepad", ActionState{}, "TFFF", ActionState{Notepad: Open}, []Action{LaunchApp(Notepad)}},
		{"index with notepad open", ActionState{Notepad: Open}, "TFFF", ActionState{Notepad: Open}, nil},
		{"two fingers open browser", ActionState{}, "TTFF", ActionState{Browser: Open}, []Action{LaunchApp(Browser)}},
		{"two fingers with browser open", ActionState{Browser: Open}, "TTFF", ActionState{Browser: Open}, nil},
		{"three fingers open calculator", ActionState{}, "TTTF", ActionState{Calculator: Open}, []Action{LaunchApp(Calculator)}},
		{"three fingers with calculator open", ActionState{Calculator: Open}, "TTTF", ActionState{Calculator: Open}, nil},
		{"fist closes notepad", allOpen, "FFFF", ActionState{Browser: Open, Calculator: Open}, []Action{TerminateApp(Notepad)}},
		{"fist with notepad closed", ActionState{Browser: Open}, "FFFF", ActionState{Browser: Open}, nil},
		{"horns end session from closed", ActionState{}, "TFFT", ActionState{}, []Action{EndSession()}},
		{"horns end session from open", allOpen, "TFFT", allOpen, []Action{EndSession()}},
		{"open palm is unmatched", ActionState{}, "TTTT", ActionState{}, nil},
		{"little only is unmatched", allOpen, "FFFT", allOpen, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotState, gotActions := Step(tt.state, detector.Right, vec(t, tt.vector))
			if gotState != tt.wantState {
				t.Errorf("state = %s, want %s", gotState, tt.wantState)
			}
			if !reflect.DeepEqual(gotActions, tt.wantActions) {
				t.Errorf("actions = %v, want %v", gotActions, tt.wantActions)
			}
		})
	}
}

func TestStep_NoCloseForBrowserOrCalculator(t *testing.T) {
	s := ActionState{Browser: Open, Calculator: Open}

	for _, b := range Bindings() {
		if b.Transition == TransitionTerminate && b.App != Notepad {
			t.Errorf("unexpected close binding %q for %s", b.Name, b.App)
		}
	}

	for _, v := range []string{"FFFF", "TTFF", "TTTF", "TTTT", "FTTT"} {
		next, _ := Step(s, detector.Right, vec(t, v))
		if next.Browser != Open || next.Calculator != Open {
			t.Errorf("vector %s closed browser or calculator: %s", v, next)
		}
	}
}

func TestStep_LeftHandNeverMutates(t *testing.T) {
	states := []ActionState{{}, {Notepad: Open}, {Notepad: Open, Browser: Open, Calculator: Open}}

	for _, s := range states {
		for bits := 0; bits < 16; bits++ {
			v := gesture.NewFingerState(bits&8 != 0, bits&4 != 0, bits&2 != 0, bits&1 != 0)
			next, actions := Step(s, detector.Left, v)
			if next != s {
				t.Errorf("left %s changed state %s -> %s", v, s, next)
			}
			if len(actions) != 0 {
				t.Errorf("left %s produced actions %v", v, actions)
			}
		}
	}
}

func TestStep_Debounce(t *testing.T) {
	s := ActionState{}
	launches := 0

	for i := 0; i < 10; i++ {
		var actions []Action
		s, actions = Step(s, detector.Right, vec(t, "TFFF"))
		for _, a := range actions {
			if a == LaunchApp(Notepad) {
				launches++
			}
		}
	}

	if launches != 1 {
		t.Errorf("expected exactly 1 launch, got %d", launches)
	}
	if !s.IsOpen(Notepad) {
		t.Error("expected notepad to end open")
	}
}

func TestStep_CloseIsEdgeTriggered(t *testing.T) {
	s, _ := Step(ActionState{}, detector.Right, vec(t, "TFFF"))

	terminates := 0
	for i := 0; i < 3; i++ {
		var actions []Action
		s, actions = Step(s, detector.Right, vec(t, "FFFF"))
		for _, a := range actions {
			if a == TerminateApp(Notepad) {
				terminates++
			}
		}
	}

	if terminates != 1 {
		t.Errorf("expected exactly 1 terminate, got %d", terminates)
	}
	if s.IsOpen(Notepad) {
		t.Error("expected notepad to end closed")
	}
}

func TestController_Process(t *testing.T) {
	t.Run("single right hand drives actions", func(t *testing.T) {
		c := NewController()

		res := c.Process([]gesture.PixelHand{pixelHand(t, detector.PointingLandmarks())})

		if !reflect.DeepEqual(res.Actions, []Action{LaunchApp(Notepad)}) {
			t.Errorf("actions = %v, want [launch(notepad)]", res.Actions)
		}
		if res.Vector == nil || *res.Vector != vec(t, "TFFF") {
			t.Errorf("vector = %v, want [T,F,F,F]", res.Vector)
		}
		if res.Keyboard != nil {
			t.Error("right hand should not route to keyboard")
		}
		if !c.State().IsOpen(Notepad) {
			t.Error("expected notepad open after launch")
		}
	})

	t.Run("single left hand routes to keyboard", func(t *testing.T) {
		c := NewController()
		left := pixelHand(t, detector.PoseLandmarks(detector.Left, true, false, false, false))

		res := c.Process([]gesture.PixelHand{left})

		if res.Keyboard == nil {
			t.Fatal("expected keyboard routing for left hand")
		}
		if res.Keyboard.Handedness != detector.Left {
			t.Errorf("keyboard hand = %s, want Left", res.Keyboard.Handedness)
		}
		if len(res.Actions) != 0 {
			t.Errorf("left hand produced actions %v", res.Actions)
		}
		if c.State() != (ActionState{}) {
			t.Errorf("left hand mutated state: %s", c.State())
		}
	})

	t.Run("two hands do nothing", func(t *testing.T) {
		c := NewController()
		hands := []gesture.PixelHand{
			pixelHand(t, detector.PointingLandmarks()),
			pixelHand(t, detector.PoseLandmarks(detector.Left, true, false, false, true)),
		}

		res := c.Process(hands)

		if len(res.Actions) != 0 || res.Keyboard != nil || res.Vector != nil {
			t.Errorf("expected empty result for two hands, got %+v", res)
		}
		if c.State() != (ActionState{}) {
			t.Errorf("two hands mutated state: %s", c.State())
		}
	})

	t.Run("no hands do nothing", func(t *testing.T) {
		c := NewController()

		res := c.Process(nil)

		if len(res.Actions) != 0 || res.Keyboard != nil {
			t.Errorf("expected empty result, got %+v", res)
		}
	})
}

func TestController_OpenCloseScenario(t *testing.T) {
	c := NewController()
	frames := []detector.HandLandmarks{
		detector.FistLandmarks(),
		detector.PointingLandmarks(),
		detector.PointingLandmarks(),
		detector.FistLandmarks(),
	}

	var actions []Action
	var trace []bool
	for _, f := range frames {
		res := c.Process([]gesture.PixelHand{pixelHand(t, f)})
		actions = append(actions, res.Actions...)
		trace = append(trace, res.State.IsOpen(Notepad))
	}

	wantActions := []Action{LaunchApp(Notepad), TerminateApp(Notepad)}
	if !reflect.DeepEqual(actions, wantActions) {
		t.Errorf("actions = %v, want %v", actions, wantActions)
	}

	wantTrace := []bool{false, true, true, false}
	if !reflect.DeepEqual(trace, wantTrace) {
		t.Errorf("notepad trace = %v, want %v", trace, wantTrace)
	}
}

func TestController_EndSessionAnyState(t *testing.T) {
	horns := detector.PoseLandmarks(detector.Right, true, false, false, true)

	for _, prior := range []detector.HandLandmarks{detector.FistLandmarks(), detector.PointingLandmarks(), detector.OpenPalmLandmarks()} {
		c := NewController()
		c.Process([]gesture.PixelHand{pixelHand(t, prior)})

		res := c.Process([]gesture.PixelHand{pixelHand(t, horns)})
		if !reflect.DeepEqual(res.Actions, []Action{EndSession()}) {
			t.Errorf("actions = %v, want [end_session]", res.Actions)
		}
	}
}

func TestActionState_With(t *testing.T) {
	s := ActionState{}.With(Browser, Open)

	if !s.IsOpen(Browser) {
		t.Error("expected browser open")
	}
	if s.IsOpen(Notepad) || s.IsOpen(Calculator) {
		t.Errorf("unexpected state %s", s)
	}
	if s.Status("unknown") != Closed {
		t.Error("unknown app should report closed")
	}
}

func TestAction_String(t *testing.T) {
	if got := LaunchApp(Browser).String(); got != "launch(browser)" {
		t.Errorf("String() = %s", got)
	}
	if got := EndSession().String(); got != "end_session" {
		t.Errorf("String() = %s", got)
	}
}

func TestEndsSession(t *testing.T) {
	tests := []struct {
		name    string
		actions []Action
		want    bool
	}{
		{"none", nil, false},
		{"launch only", []Action{LaunchApp(Notepad)}, false},
		{"end session", []Action{EndSession()}, true},
		{"after other actions", []Action{TerminateApp(Notepad), EndSession()}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EndsSession(tt.actions); got != tt.want {
				t.Errorf("EndsSession(%v) = %v, want %v", tt.actions, got, tt.want)
			}
		})
	}
}
