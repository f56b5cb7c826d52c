// Package launcher starts and force-closes the external programs that gestures control.
package launcher

import "errors"

var (
	// ErrProgramNotFound is returned when a requested program is not registered.
	ErrProgramNotFound = errors.New("program not found")
	// ErrNoExecutable is returned when none of a program's candidate paths exist.
	ErrNoExecutable = errors.New("no executable found")
)

// Program describes how to start and stop one controllable application.
type Program struct {
	// Name is the application key, e.g. "browser".
	Name string `json:"name"`
	// Paths are candidate executables tried in order. Later entries are
	// fallbacks used only when earlier ones are missing.
	Paths []string `json:"paths"`
	// Args are passed to whichever executable starts.
	Args []string `json:"args,omitempty"`
	// ProcessName is the image name handed to the terminate command.
	ProcessName string `json:"process_name"`
}
