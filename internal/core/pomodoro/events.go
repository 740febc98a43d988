package pomodoro

import "time"

// Phase is one segment of the work/break cycle.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseWork      Phase = "work"
	PhaseBreak     Phase = "break"
	PhaseLongBreak Phase = "longBreak"
)

// Valid reports whether phase is a known phase.
func (phase Phase) Valid() bool {
	switch phase {
	case PhaseIdle, PhaseWork, PhaseBreak, PhaseLongBreak:
		return true
	}
	return false
}

// IsBreak reports whether phase is a short or long break.
func (phase Phase) IsBreak() bool {
	return phase == PhaseBreak || phase == PhaseLongBreak
}

// RunState tells whether the countdown of the active phase is advancing.
type RunState string

const (
	RunIdle    RunState = "idle"
	RunRunning RunState = "running"
	RunPaused  RunState = "paused"
)

// Valid reports whether state is a known run-state.
func (state RunState) Valid() bool {
	switch state {
	case RunIdle, RunRunning, RunPaused:
		return true
	}
	return false
}

// EventType defines the type of Timer event.
type EventType string

const (
	EventPhaseChange EventType = "phase_change"
	EventStateChange EventType = "state_change"
	EventTick        EventType = "tick"
)

// Event represents a Timer update for observers.
type Event struct {
	Type      EventType
	Phase     Phase
	RunState  RunState
	Remaining int
	Progress  float64
	At        time.Time
}
