package application

import (
	"sync"
	"time"
)

// DefaultAutoSaveDelay is the quiet period after the last edit before a
// scheduled save runs.
const DefaultAutoSaveDelay = 2 * time.Second

// AutoSaver coalesces rapid edits into infrequent saves. Every Schedule call
// resets the timer, so only the last edit within a quiet period triggers the
// save function. Flush runs the save immediately, independent of the timer,
// for the navigate-away case.
type AutoSaver struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	save  func()
}

func NewAutoSaver(delay time.Duration, save func()) *AutoSaver {
	if delay <= 0 {
		delay = DefaultAutoSaveDelay
	}
	return &AutoSaver{delay: delay, save: save}
}

// Schedule (re)arms the save timer, cancelling any previously scheduled save.
func (a *AutoSaver) Schedule() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.delay, a.save)
}

// Flush cancels any pending save and runs the save function now.
func (a *AutoSaver) Flush() {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.mu.Unlock()

	a.save()
}

// Stop cancels any pending save without running it.
func (a *AutoSaver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}
