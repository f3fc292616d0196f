// Package upload drives one item through the target application's upload
// flow: stage the image, open a tab, run the file picker twice, inject the
// prompt and submit. The application reports nothing back; a failed upload
// only surfaces later as a download verification failure.
package upload

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/italolelis/batch_restyler/internal/batch"
	"github.com/italolelis/batch_restyler/internal/logctx"
	"github.com/italolelis/batch_restyler/internal/pace"
	"github.com/italolelis/batch_restyler/internal/stage"
	"github.com/italolelis/batch_restyler/internal/ui"
)

// Application scripting content: the console snippets that operate the
// target page. Selector strings belong to the driven application, not to
// the orchestration engine.
const (
	openPickerJS = `document.querySelector('input[type="file"]')?.click();`
	submitJS     = `document.querySelector('#composer-submit-button').click()`

	promptJS = `
(() => {
  const selector = "#prompt-textarea > p";
  const text = ` + "`{PROMPT_TEXT}`" + `;

  const el = document.querySelector(selector);
  if (!el) {
    console.error("element not found:", selector);
    return;
  }

  el.focus && el.focus();

  if (el.isContentEditable) {
    el.innerText = text;
    const range = document.createRange();
    range.selectNodeContents(el);
    range.collapse(false);
    const sel = window.getSelection();
    sel.removeAllRanges();
    sel.addRange(range);
    el.dispatchEvent(new InputEvent('input', { bubbles: true, cancelable: true, data: text }));
    el.dispatchEvent(new Event('change', { bubbles: true }));
    el.dispatchEvent(new KeyboardEvent('keyup', { bubbles: true }));
    return;
  }

  el.textContent = text;
  el.dispatchEvent(new Event('input', { bubbles: true }));
  el.dispatchEvent(new Event('change', { bubbles: true }));
  el.dispatchEvent(new KeyboardEvent('keyup', { bubbles: true }));
})();
`

	promptText = "Apply the artistic style, color palette, and texture of the second image " +
		"to the first image while keeping its structure. " +
		"Don't be afraid to vary colours and keep the colours more realistically " +
		"similar to the first image. This image must be square."
)

// Picker dialog settle times. The native file dialog has no observable
// ready signal, so these match the slowest openings seen in practice.
const (
	pickerOpenDelay = 800 * time.Millisecond
	pickerStepDelay = 700 * time.Millisecond
	pickerPickDelay = 300 * time.Millisecond

	stepDelayMin = 120 * time.Millisecond
	stepDelayMax = 450 * time.Millisecond
)

// Sequencer uploads one item per call, fire-and-forget.
type Sequencer struct {
	driver    ui.Driver
	stager    *stage.Stager
	targetURL string

	pacing pace.Sampler
	step   pace.Sampler
	sleep  func(time.Duration)
}

// NewSequencer builds a Sequencer. The pacing sampler sets the pause after
// each submitted upload, keeping item submissions off a mechanical rhythm.
func NewSequencer(driver ui.Driver, stager *stage.Stager, targetURL string, pacing pace.Sampler) *Sequencer {
	return &Sequencer{
		driver:    driver,
		stager:    stager,
		targetURL: targetURL,
		pacing:    pacing,
		step:      pace.Uniform(stepDelayMin, stepDelayMax),
		sleep:     time.Sleep,
	}
}

// UploadOne runs the full upload flow for item and leaves its tab open,
// queued for the later download pass. A non-nil error means a local fault
// (staging or clipboard); the caller logs it and moves on, because the item
// will be filed as failed at verification time either way.
func (s *Sequencer) UploadOne(ctx context.Context, item batch.FileItem) error {
	logger := logctx.LoggerFromContext(ctx)

	if err := s.stager.StageBase(item.Path); err != nil {
		return fmt.Errorf("failed to stage %s: %w", item.Name, err)
	}

	defer s.stager.UnstageBase(ctx, item.Path)

	if err := s.openTarget(); err != nil {
		return err
	}

	// First picker pass selects the base image, second the style reference;
	// the style file's name sorts last, hence the extra down-arrow steps.
	if err := s.pickFile(1); err != nil {
		return err
	}

	if err := s.pickFile(2); err != nil {
		return err
	}

	if err := s.submitPrompt(); err != nil {
		return err
	}

	logger.Info("upload submitted", "file", item.Name)

	s.sleep(s.pacing())

	return nil
}

// openTarget opens a fresh tab on the target URL and brings up the console.
func (s *Sequencer) openTarget() error {
	if err := s.driver.OpenTab(); err != nil {
		return err
	}

	if err := s.driver.InjectText(s.targetURL); err != nil {
		return err
	}

	if err := s.driver.PressEnter(); err != nil {
		return err
	}

	s.pause(2)

	if err := s.driver.OpenConsole(); err != nil {
		return err
	}

	s.pause(3)

	return nil
}

// pickFile opens the application's file picker and selects the entry steps
// positions down the listing.
func (s *Sequencer) pickFile(steps int) error {
	if err := s.runSnippet(openPickerJS, 2); err != nil {
		return err
	}

	s.sleep(pickerOpenDelay)

	for i := 0; i < steps; i++ {
		if err := s.driver.PressDown(steps == 1); err != nil {
			return err
		}

		if steps > 1 {
			s.sleep(pickerStepDelay)
		}
	}

	s.sleep(pickerPickDelay)

	if err := s.driver.PressEnter(); err != nil {
		return err
	}

	s.pause(3)

	return nil
}

func (s *Sequencer) submitPrompt() error {
	js := strings.ReplaceAll(promptJS, "{PROMPT_TEXT}", strings.ReplaceAll(promptText, "`", "\\`"))

	if err := s.runSnippet(js, 4); err != nil {
		return err
	}

	s.pause(3)

	return s.runSnippet(submitJS, 3)
}

// runSnippet pastes a console snippet and executes it.
func (s *Sequencer) runSnippet(js string, pauses int) error {
	if err := s.driver.InjectText(js); err != nil {
		return err
	}

	s.pause(pauses)

	return s.driver.PressEnter()
}

func (s *Sequencer) pause(times int) {
	for i := 0; i < times; i++ {
		s.sleep(s.step())
	}
}
