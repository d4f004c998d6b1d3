// Package debounce coalesces bursts of input events into one delayed action.
//
// A Scheduler is one logical channel: scheduling a new action supersedes the
// pending one, so only the last action of a burst ever runs. Give every input
// field its own Scheduler; two fields must never share a timer.
package debounce

import (
	"sync"
	"time"
)

// Scheduler arms at most one timer at a time
type Scheduler struct {
	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// New creates an idle scheduler
func New() *Scheduler {
	return &Scheduler{}
}

// Schedule cancels any pending action and runs action after delay,
// unless it is superseded or cancelled first. It reports whether a
// pending action was superseded.
func (s *Scheduler) Schedule(delay time.Duration, action func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	superseded := s.stopLocked()
	s.gen++
	gen := s.gen
	s.timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		if s.gen != gen {
			// A Stop that lost the race against the timer goroutine
			s.mu.Unlock()
			return
		}
		s.timer = nil
		s.mu.Unlock()

		action()
	})
	return superseded
}

// Cancel drops the pending action, if any. It is safe to call at any time.
func (s *Scheduler) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopLocked()
}

// Pending reports whether an action is armed
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

func (s *Scheduler) stopLocked() bool {
	if s.timer == nil {
		return false
	}
	s.timer.Stop()
	s.timer = nil
	// Invalidate a callback that already fired but has not taken the lock yet
	s.gen++
	return true
}
