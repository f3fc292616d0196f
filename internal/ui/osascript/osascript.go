// Package osascript implements ui.Driver for macOS by shelling out to
// osascript System Events keystrokes, with clipboard writes for text
// injection. This is application scripting, not orchestration: command
// failures are logged and swallowed because the driven browser offers no
// error channel anyway.
package osascript

import (
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/atotto/clipboard"
	"github.com/italolelis/batch_restyler/internal/pace"
)

const (
	microDelayMin = 120 * time.Millisecond
	microDelayMax = 450 * time.Millisecond

	downDelayShort = 70 * time.Millisecond
	downDelayLong  = 500 * time.Millisecond
)

// Driver drives the browser through AppleScript keystroke events.
type Driver struct {
	browser string
	logger  *slog.Logger

	micro pace.Sampler
	sleep func(time.Duration)
	run   func(script string) error
}

// NewDriver returns a Driver targeting the named browser application.
func NewDriver(browser string, logger *slog.Logger) *Driver {
	return &Driver{
		browser: browser,
		logger:  logger,
		micro:   pace.Uniform(microDelayMin, microDelayMax),
		sleep:   time.Sleep,
		run:     runOsascript,
	}
}

func runOsascript(script string) error {
	return exec.Command("osascript", "-e", script).Run()
}

// osa runs one AppleScript statement and pauses for a jittered micro-delay,
// mimicking the cadence of a person issuing the same action.
func (d *Driver) osa(script string) error {
	if err := d.run(script); err != nil {
		d.logger.Warn("osascript command failed", "err", err)
	}

	d.sleep(d.micro())

	return nil
}

func (d *Driver) Activate() error {
	return d.osa(fmt.Sprintf("tell application %q to activate", d.browser))
}

func (d *Driver) FocusTab(index int) error {
	return d.osa(fmt.Sprintf(`tell application "System Events" to keystroke "%d" using {command down}`, index))
}

func (d *Driver) OpenTab() error {
	return d.osa(`tell application "System Events" to keystroke "t" using {command down}`)
}

func (d *Driver) CloseTab() error {
	return d.osa(`tell application "System Events" to keystroke "w" using {command down}`)
}

func (d *Driver) OpenConsole() error {
	return d.osa(`tell application "System Events" to keystroke "j" using {command down, option down}`)
}

// InjectText writes the clipboard and sends the paste chord. The clipboard
// is a machine-global slot; another process writing between the copy and
// the paste corrupts the injection.
func (d *Driver) InjectText(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}

	return d.osa(`tell application "System Events" to keystroke "v" using {command down}`)
}

func (d *Driver) PressEnter() error {
	return d.osa(`tell application "System Events" to key code 36`)
}

func (d *Driver) PressDown(short bool) error {
	if err := d.run(`tell application "System Events" to key code 125`); err != nil {
		d.logger.Warn("osascript command failed", "err", err)
	}

	if short {
		d.sleep(downDelayShort)
	} else {
		d.sleep(downDelayLong)
	}

	return nil
}
