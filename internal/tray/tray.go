// Package tray provides the system tray menu for mudra.
package tray

import (
	"context"
	"sync"
	"time"

	"github.com/getlantern/systray"
)

// PollInterval is how often Watch refreshes the menu labels.
const PollInterval = 500 * time.Millisecond

const (
	labelEnabled  = "● Enabled"
	labelDisabled = "○ Disabled"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle  func(enabled bool)
	onPreview func()
	onQuit    func()
	enabled   bool
	last      string
	mu        sync.RWMutex

	// Menu items stored for later updates
	menuToggle     *systray.MenuItem
	menuLastAction *systray.MenuItem
	menuStates     *systray.MenuItem
}

// New creates a new Tray with the given initial enabled state.
func New(enabled bool) *Tray {
	return &Tray{
		enabled: enabled,
	}
}

// OnToggle sets the callback function to be called when the enabled state is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnPreview sets the callback for the preview menu item. The item is only
// shown when a callback is set before Run.
func (t *Tray) OnPreview(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onPreview = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit stops the tray from outside its menu, e.g. when the session ends.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("mudra")
	systray.SetTooltip("mudra hand gesture control")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleLabel(t.enabled), "Toggle gesture control")
	systray.AddSeparator()

	t.menuLastAction = systray.AddMenuItem(lastActionLabel(t.last), "Last executed action")
	t.menuLastAction.Disable()
	t.menuStates = systray.AddMenuItem("Apps: none open", "Applications opened by gesture")
	t.menuStates.Disable()
	systray.AddSeparator()

	var previewCh chan struct{}
	if t.onPreview != nil {
		previewCh = systray.AddMenuItem("Open Preview...", "Open the live preview in a browser").ClickedCh
		systray.AddSeparator()
	}
	t.mu.Unlock()

	menuQuit := systray.AddMenuItem("Quit", "Quit mudra")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-previewCh:
				t.handlePreview()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled

	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleLabel(enabled))
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handlePreview() {
	t.mu.RLock()
	callback := t.onPreview
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetLastAction updates the last action display in the menu.
func (t *Tray) SetLastAction(action string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.last = action
	if t.menuLastAction != nil {
		t.menuLastAction.SetTitle(lastActionLabel(action))
	}
}

// SetEnabled updates the toggle without calling the OnToggle callback. It
// is used when the state was changed elsewhere, e.g. over HTTP.
func (t *Tray) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.enabled = enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleLabel(enabled))
	}
}

// SetOpenApps updates the open applications display.
func (t *Tray) SetOpenApps(label string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuStates != nil {
		t.menuStates.SetTitle(label)
	}
}

// LastAction returns the label most recently passed to SetLastAction.
func (t *Tray) LastAction() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// Status is what Watch reads on every tick.
type Status struct {
	Enabled    bool
	LastAction string
	OpenApps   []string
}

// Watch polls status and refreshes the menu until ctx is cancelled.
func (t *Tray) Watch(ctx context.Context, status func() Status) {
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st := status()
			if st.Enabled != t.IsEnabled() {
				t.SetEnabled(st.Enabled)
			}
			if st.LastAction != t.LastAction() {
				t.SetLastAction(st.LastAction)
			}
			t.SetOpenApps(openAppsLabel(st.OpenApps))
		}
	}
}

func toggleLabel(enabled bool) string {
	if enabled {
		return labelEnabled
	}
	return labelDisabled
}

func lastActionLabel(action string) string {
	if action == "" {
		return "Last: none"
	}
	return "Last: " + action
}

func openAppsLabel(apps []string) string {
	if len(apps) == 0 {
		return "Apps: none open"
	}
	label := "Apps: "
	for i, a := range apps {
		if i > 0 {
			label += ", "
		}
		label += a
	}
	return label
}
