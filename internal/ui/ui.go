// Package ui defines the collaborator that performs OS-level input against
// the browser. Every action is fire-and-forget: the browser gives nothing
// back, so implementations report transport problems at best and the
// orchestration layer never learns whether a keystroke landed.
package ui

// Driver is the set of input actions the orchestration engine needs. Tab
// indexes are browser tab positions, 1-based.
type Driver interface {
	// Activate brings the browser frontmost so keystrokes reach it.
	Activate() error
	// FocusTab switches to the tab at the given position.
	FocusTab(index int) error
	// OpenTab opens a new tab with the address bar focused.
	OpenTab() error
	// CloseTab closes the currently focused tab.
	CloseTab() error
	// OpenConsole opens the devtools console in the focused tab.
	OpenConsole() error
	// InjectText places text into the focused input surface, paste-style.
	InjectText(text string) error
	// PressEnter sends the return key.
	PressEnter() error
	// PressDown sends the down-arrow key. Short selects the quick variant
	// used for single-step picker navigation.
	PressDown(short bool) error
}
