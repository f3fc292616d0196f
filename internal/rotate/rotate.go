// Package rotate keeps a batch's tabs looking attended during the idle
// window between submission and collection. Selection is a randomized
// round-robin with a liveness guarantee: once a tab's last visit is older
// than the configured max age it wins the next draw, so every tab is
// revisited within the max-age window while the pattern stays
// non-deterministic.
package rotate

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/italolelis/batch_restyler/internal/logctx"
	"github.com/italolelis/batch_restyler/internal/pace"
	"github.com/italolelis/batch_restyler/internal/ui"
)

// singleTabMargin pads the idle window when there is nothing to rotate to.
const singleTabMargin = 2 * time.Second

// Scheduler rotates focus across a batch's tabs for a bounded window.
type Scheduler struct {
	driver ui.Driver
	maxAge time.Duration
	delay  pace.Sampler

	// OnSwitch, when set, observes every focus change.
	OnSwitch func(tab int)

	now   func() time.Time
	sleep func(time.Duration)
	intn  func(int) int
}

// NewScheduler builds a Scheduler. maxAge bounds how long any tab may go
// unvisited; delay spaces consecutive switches.
func NewScheduler(driver ui.Driver, maxAge time.Duration, delay pace.Sampler) *Scheduler {
	return &Scheduler{
		driver: driver,
		maxAge: maxAge,
		delay:  delay,
		now:    time.Now,
		sleep:  time.Sleep,
		intn:   rand.IntN,
	}
}

// Rotate focuses tabs[0], then keeps switching focus among tabs until the
// window elapses. With a single tab it just sleeps out the window plus a
// small margin. The current tab is never re-selected on consecutive steps.
func (s *Scheduler) Rotate(ctx context.Context, tabs []int, window time.Duration) {
	if len(tabs) == 0 {
		return
	}

	logger := logctx.LoggerFromContext(ctx)
	logger.Info("rotating tabs through idle window", "tabs", len(tabs), "window", window.String())

	current := tabs[0]
	s.focus(current)

	lastVisit := make(map[int]time.Time, len(tabs))
	lastVisit[current] = s.now()

	if len(tabs) == 1 {
		s.sleep(window + singleTabMargin)

		return
	}

	end := s.now().Add(window)

	for s.now().Before(end) {
		next := s.pick(tabs, current, lastVisit)

		s.focus(next)
		lastVisit[next] = s.now()
		current = next

		s.sleep(s.delay())
	}
}

// pick applies the selection policy: out of all tabs except current, prefer
// a uniformly random overdue tab, otherwise any candidate.
func (s *Scheduler) pick(tabs []int, current int, lastVisit map[int]time.Time) int {
	now := s.now()

	candidates := make([]int, 0, len(tabs)-1)
	overdue := make([]int, 0, len(tabs)-1)

	for _, tab := range tabs {
		if tab == current {
			continue
		}

		candidates = append(candidates, tab)

		if now.Sub(lastVisit[tab]) >= s.maxAge {
			overdue = append(overdue, tab)
		}
	}

	if len(overdue) > 0 {
		return overdue[s.intn(len(overdue))]
	}

	return candidates[s.intn(len(candidates))]
}

func (s *Scheduler) focus(tab int) {
	_ = s.driver.FocusTab(tab)

	if s.OnSwitch != nil {
		s.OnSwitch(tab)
	}
}
