package control

// ActionKind enumerates the effects the controller can request.
type ActionKind string

const (
	KindLaunch     ActionKind = "launch"
	KindTerminate  ActionKind = "terminate"
	KindEndSession ActionKind = "end_session"
)

// Action is an effect requested by the controller. The controller never
// performs it; a dispatcher outside this package does.
type Action struct {
	Kind ActionKind `json:"kind"`
	App  AppID      `json:"app,omitempty"`
}

// LaunchApp requests that app be started.
func LaunchApp(app AppID) Action {
	return Action{Kind: KindLaunch, App: app}
}

// TerminateApp requests that app be force-closed.
func TerminateApp(app AppID) Action {
	return Action{Kind: KindTerminate, App: app}
}

// EndSession requests that the capture loop stop.
func EndSession() Action {
	return Action{Kind: KindEndSession}
}

// EndsSession reports whether actions contain an end-session request.
func EndsSession(actions []Action) bool {
	for _, a := range actions {
		if a.Kind == KindEndSession {
			return true
		}
	}
	return false
}

func (a Action) String() string {
	if a.App == "" {
		return string(a.Kind)
	}
	return string(a.Kind) + "(" + string(a.App) + ")"
}
