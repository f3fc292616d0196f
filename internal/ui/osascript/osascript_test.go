package osascript

import (
	"log/slog"
	"testing"
	"time"

	"github.com/italolelis/batch_restyler/internal/pace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDriver() (*Driver, *[]string, *[]time.Duration) {
	var scripts []string

	var slept []time.Duration

	d := NewDriver("Google Chrome", slog.Default())
	d.micro = pace.Fixed(time.Millisecond)
	d.sleep = func(dur time.Duration) { slept = append(slept, dur) }
	d.run = func(script string) error {
		scripts = append(scripts, script)

		return nil
	}

	return d, &scripts, &slept
}

func TestDriver_Keystrokes(t *testing.T) {
	d, scripts, _ := newTestDriver()

	require.NoError(t, d.Activate())
	require.NoError(t, d.OpenTab())
	require.NoError(t, d.FocusTab(3))
	require.NoError(t, d.OpenConsole())
	require.NoError(t, d.PressEnter())
	require.NoError(t, d.CloseTab())

	require.Len(t, *scripts, 6)

	assert.Equal(t, `tell application "Google Chrome" to activate`, (*scripts)[0])
	assert.Contains(t, (*scripts)[1], `keystroke "t"`)
	assert.Contains(t, (*scripts)[2], `keystroke "3"`)
	assert.Contains(t, (*scripts)[3], `keystroke "j"`)
	assert.Contains(t, (*scripts)[3], "option down")
	assert.Contains(t, (*scripts)[4], "key code 36")
	assert.Contains(t, (*scripts)[5], `keystroke "w"`)
}

func TestDriver_PressDownDelays(t *testing.T) {
	d, scripts, slept := newTestDriver()

	require.NoError(t, d.PressDown(true))
	require.NoError(t, d.PressDown(false))

	require.Len(t, *scripts, 2)
	assert.Contains(t, (*scripts)[0], "key code 125")

	require.Len(t, *slept, 2)
	assert.Equal(t, downDelayShort, (*slept)[0])
	assert.Equal(t, downDelayLong, (*slept)[1])
}

func TestDriver_SwallowsCommandFailures(t *testing.T) {
	d, _, _ := newTestDriver()
	d.run = func(string) error { return assert.AnError }

	// The browser offers no error channel; a lost keystroke must not stop
	// the run.
	assert.NoError(t, d.PressEnter())
	assert.NoError(t, d.FocusTab(2))
}
