// Package clock abstracts wall-clock reads and delayed callbacks so the
// pomodoro state machine can be driven by simulated time in tests.
package clock

import (
	"sort"
	"sync"
	"time"
)

// Timer is a pending callback that can be cancelled.
type Timer interface {
	// Stop cancels the callback. It reports whether the call stopped the
	// timer before it fired.
	Stop() bool
}

// Clock provides the current time and one-shot delayed callbacks.
type Clock interface {
	Now() time.Time
	AfterFunc(delay time.Duration, callback func()) Timer
}

// Real is a Clock backed by the time package.
type Real struct{}

// Now returns time.Now.
func (Real) Now() time.Time { return time.Now() }

// AfterFunc schedules callback on its own goroutine after delay.
func (Real) AfterFunc(delay time.Duration, callback func()) Timer {
	return time.AfterFunc(delay, callback)
}

// Manual is a Clock that only moves when Advance is called. Callbacks run
// synchronously on the goroutine calling Advance.
type Manual struct {
	mu       sync.Mutex
	now      time.Time
	sequence uint64
	pending  []*manualTimer
}

type manualTimer struct {
	clock    *Manual
	when     time.Time
	sequence uint64
	callback func()
}

// NewManual creates a Manual clock starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the simulated time.
func (manual *Manual) Now() time.Time {
	manual.mu.Lock()
	defer manual.mu.Unlock()
	return manual.now
}

// AfterFunc registers callback to run once the clock has advanced by delay.
func (manual *Manual) AfterFunc(delay time.Duration, callback func()) Timer {
	manual.mu.Lock()
	defer manual.mu.Unlock()
	manual.sequence++
	timer := &manualTimer{
		clock:    manual,
		when:     manual.now.Add(delay),
		sequence: manual.sequence,
		callback: callback,
	}
	manual.pending = append(manual.pending, timer)
	return timer
}

// Advance moves the clock forward by delta, firing due callbacks in
// chronological order. Callbacks scheduled while advancing fire too if they
// fall inside the window.
func (manual *Manual) Advance(delta time.Duration) {
	manual.mu.Lock()
	target := manual.now.Add(delta)
	for {
		next := manual.popDueLocked(target)
		if next == nil {
			break
		}
		manual.now = next.when
		manual.mu.Unlock()
		next.callback()
		manual.mu.Lock()
	}
	manual.now = target
	manual.mu.Unlock()
}

// Pending returns the number of callbacks that have not fired or been stopped.
func (manual *Manual) Pending() int {
	manual.mu.Lock()
	defer manual.mu.Unlock()
	return len(manual.pending)
}

func (manual *Manual) popDueLocked(target time.Time) *manualTimer {
	if len(manual.pending) == 0 {
		return nil
	}
	sort.Slice(manual.pending, func(i, j int) bool {
		left, right := manual.pending[i], manual.pending[j]
		if left.when.Equal(right.when) {
			return left.sequence < right.sequence
		}
		return left.when.Before(right.when)
	})
	next := manual.pending[0]
	if next.when.After(target) {
		return nil
	}
	manual.pending = manual.pending[1:]
	return next
}

func (timer *manualTimer) Stop() bool {
	manual := timer.clock
	manual.mu.Lock()
	defer manual.mu.Unlock()
	for index, pending := range manual.pending {
		if pending == timer {
			manual.pending = append(manual.pending[:index], manual.pending[index+1:]...)
			return true
		}
	}
	return false
}
