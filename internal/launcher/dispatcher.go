package launcher

import (
	"log/slog"

	"github.com/ayusman/mudra/internal/control"
)

// Runner performs the OS side of an action.
type Runner interface {
	Launch(p *Program) error
	Terminate(processName string) error
}

// Dispatcher executes controller actions. Launch and terminate failures are
// logged and dropped; they never stop the session.
type Dispatcher struct {
	registry *Registry
	runner   Runner
	logger   *slog.Logger
	onAction func(a control.Action, err error)
}

// NewDispatcher creates a Dispatcher over registry and runner.
func NewDispatcher(registry *Registry, runner Runner, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		registry: registry,
		runner:   runner,
		logger:   logger,
	}
}

// OnAction registers a hook called after each action is executed, with the
// error it produced, if any.
func (d *Dispatcher) OnAction(fn func(a control.Action, err error)) {
	d.onAction = fn
}

// Dispatch executes actions in order and reports whether one of them asked
// for the session to end.
func (d *Dispatcher) Dispatch(actions []control.Action) bool {
	end := false
	for _, a := range actions {
		var err error
		switch a.Kind {
		case control.KindLaunch:
			err = d.launch(a.App)
		case control.KindTerminate:
			err = d.terminate(a.App)
		case control.KindEndSession:
			end = true
		}

		if err != nil {
			d.logger.Warn("action failed", "action", a.String(), "err", err)
		} else {
			d.logger.Info("action executed", "action", a.String())
		}

		if d.onAction != nil {
			d.onAction(a, err)
		}
	}
	return end
}

func (d *Dispatcher) launch(app control.AppID) error {
	p, err := d.registry.Get(string(app))
	if err != nil {
		return err
	}
	return d.runner.Launch(p)
}

func (d *Dispatcher) terminate(app control.AppID) error {
	p, err := d.registry.Get(string(app))
	if err != nil {
		return err
	}
	return d.runner.Terminate(p.ProcessName)
}
