package pomodoro

import (
	"errors"
	"fmt"
	"time"
)

// DefaultMaxSnapshotAge is how long a persisted snapshot stays trustworthy.
const DefaultMaxSnapshotAge = 24 * time.Hour

var (
	// ErrNoSnapshot is returned by a SnapshotStore holding no snapshot.
	ErrNoSnapshot = errors.New("no timer snapshot")
	// ErrInvalidSnapshot marks a snapshot that must be discarded.
	ErrInvalidSnapshot = errors.New("invalid timer snapshot")
)

// Snapshot is the persisted form of the timer.
//
// While running, SecondsRemaining holds the countdown value at EpochStart, so
// the live remaining time is SecondsRemaining minus the whole seconds elapsed
// since EpochStart. Timestamps are Unix milliseconds.
type Snapshot struct {
	Phase               Phase    `json:"phase"`
	RunState            RunState `json:"runState"`
	SecondsRemaining    int      `json:"secondsRemaining"`
	CompletedWorkCycles int      `json:"completedWorkCycles"`
	EpochStart          int64    `json:"epochStartTimestamp,omitempty"`
	SavedAt             int64    `json:"savedAt,omitempty"`
}

// SnapshotStore persists the timer between process runs.
type SnapshotStore interface {
	LoadSnapshot() (Snapshot, error)
	SaveSnapshot(Snapshot) error
	ClearSnapshot() error
}

// Validate checks snapshot integrity and freshness at now.
func (snapshot Snapshot) Validate(now time.Time, maxAge time.Duration) error {
	if !snapshot.Phase.Valid() {
		return fmt.Errorf("%w: unknown phase %q", ErrInvalidSnapshot, snapshot.Phase)
	}
	if !snapshot.RunState.Valid() {
		return fmt.Errorf("%w: unknown run state %q", ErrInvalidSnapshot, snapshot.RunState)
	}
	if snapshot.SecondsRemaining < 0 {
		return fmt.Errorf("%w: negative remaining time", ErrInvalidSnapshot)
	}
	if snapshot.CompletedWorkCycles < 0 {
		return fmt.Errorf("%w: negative completed cycles", ErrInvalidSnapshot)
	}
	if snapshot.RunState == RunRunning {
		if snapshot.EpochStart == 0 {
			return fmt.Errorf("%w: running without epoch", ErrInvalidSnapshot)
		}
		if snapshot.Phase == PhaseIdle {
			return fmt.Errorf("%w: idle phase cannot run", ErrInvalidSnapshot)
		}
		if now.Sub(fromMillis(snapshot.EpochStart)) >= maxAge {
			return fmt.Errorf("%w: stale epoch", ErrInvalidSnapshot)
		}
	}

	reference := snapshot.SavedAt
	if reference == 0 {
		reference = snapshot.EpochStart
	}
	if reference == 0 {
		return fmt.Errorf("%w: undated", ErrInvalidSnapshot)
	}
	if now.Sub(fromMillis(reference)) >= maxAge {
		return fmt.Errorf("%w: stale", ErrInvalidSnapshot)
	}
	return nil
}

func toMillis(at time.Time) int64 {
	if at.IsZero() {
		return 0
	}
	return at.UnixMilli()
}

func fromMillis(millis int64) time.Time {
	return time.UnixMilli(millis)
}
