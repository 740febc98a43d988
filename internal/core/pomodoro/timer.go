package pomodoro

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"focusnoise/internal/core/clock"
	"focusnoise/internal/core/model"
)

// DefaultAutoStartDelay lets observers settle before an automatic start.
const DefaultAutoStartDelay = 500 * time.Millisecond

const tickInterval = time.Second

// Chimer announces phase transitions audibly.
type Chimer interface {
	ChimeWorkStart()
	ChimeBreakStart()
}

// Options contains runtime collaborators for Timer.
type Options struct {
	Clock          clock.Clock
	Store          SnapshotStore
	Chimes         Chimer
	Logger         *slog.Logger
	AutoStartDelay time.Duration
	MaxSnapshotAge time.Duration
}

// Status is a read-only view of the timer.
type Status struct {
	Phase            Phase
	RunState         RunState
	SecondsRemaining int
	TotalSeconds     int
	CompletedCycles  int
	Progress         float64
	CyclePosition    int
}

// Timer is the pomodoro phase state machine.
type Timer struct {
	mu        sync.Mutex
	config    model.Config
	options   Options
	phase     Phase
	runState  RunState
	remaining int
	completed int
	epoch     time.Time

	tick         clock.Timer
	tickGen      uint64
	autoStart    clock.Timer
	autoStartGen uint64
	events       []chan Event
	closed       bool
}

type transition struct {
	from Phase
	to   Phase
}

// New creates a Timer and resumes a persisted snapshot when one is usable.
func New(config model.Config, options Options) *Timer {
	if options.Clock == nil {
		options.Clock = clock.Real{}
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.AutoStartDelay <= 0 {
		options.AutoStartDelay = DefaultAutoStartDelay
	}
	if options.MaxSnapshotAge <= 0 {
		options.MaxSnapshotAge = DefaultMaxSnapshotAge
	}

	timer := &Timer{
		config:    config,
		options:   options,
		phase:     PhaseIdle,
		runState:  RunIdle,
		remaining: config.WorkSeconds(),
	}
	timer.mu.Lock()
	timer.restoreLocked()
	timer.mu.Unlock()
	return timer
}

// Subscribe registers a new observer channel.
func (timer *Timer) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	timer.mu.Lock()
	if timer.closed {
		close(ch)
	} else {
		timer.events = append(timer.events, ch)
	}
	timer.mu.Unlock()
	return ch
}

// Start begins or resumes the countdown. It is a no-op while running.
func (timer *Timer) Start() {
	timer.mu.Lock()
	change, started := timer.startLocked()
	timer.mu.Unlock()
	if started {
		timer.announce(change)
	}
}

// Pause stops the countdown and cancels a pending automatic start.
func (timer *Timer) Pause() {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	if timer.closed {
		return
	}
	timer.cancelAutoStartLocked()
	if timer.runState == RunPaused {
		return
	}
	timer.stopTickLocked()
	timer.epoch = time.Time{}
	timer.runState = RunPaused
	timer.persistLocked()
	timer.emitLocked(EventStateChange)
}

// Reset returns the timer to idle and forgets the persisted snapshot.
func (timer *Timer) Reset() {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	if timer.closed {
		return
	}
	timer.cancelAutoStartLocked()
	timer.stopTickLocked()

	previousPhase := timer.phase
	previousState := timer.runState
	timer.epoch = time.Time{}
	timer.phase = PhaseIdle
	timer.runState = RunIdle
	timer.remaining = timer.config.WorkSeconds()
	timer.completed = 0

	if store := timer.options.Store; store != nil {
		if err := store.ClearSnapshot(); err != nil {
			timer.options.Logger.Warn("clear timer snapshot", "error", err)
		}
	}
	if previousPhase != PhaseIdle {
		timer.emitLocked(EventPhaseChange)
	}
	if previousState != RunIdle {
		timer.emitLocked(EventStateChange)
	}
	timer.emitLocked(EventTick)
}

// UpdateConfig replaces the configuration. Only an idle timer re-derives its
// remaining time; a running or paused countdown keeps its current value.
func (timer *Timer) UpdateConfig(config model.Config) {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	timer.config = config
	if timer.runState == RunIdle {
		timer.remaining = config.WorkSeconds()
		timer.emitLocked(EventTick)
	}
}

// Config returns the active configuration.
func (timer *Timer) Config() model.Config {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	return timer.config
}

// Status returns the current timer view.
func (timer *Timer) Status() Status {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	return Status{
		Phase:            timer.phase,
		RunState:         timer.runState,
		SecondsRemaining: timer.remaining,
		TotalSeconds:     timer.totalSecondsLocked(),
		CompletedCycles:  timer.completed,
		Progress:         timer.progressLocked(),
		CyclePosition:    CyclePosition(timer.completed, timer.phase, timer.config.CyclesBeforeLongBreak),
	}
}

// Close cancels pending callbacks and closes observers. The persisted
// snapshot is kept so the next run can resume.
func (timer *Timer) Close() {
	timer.mu.Lock()
	if timer.closed {
		timer.mu.Unlock()
		return
	}
	timer.closed = true
	timer.cancelAutoStartLocked()
	timer.stopTickLocked()
	events := timer.events
	timer.events = nil
	timer.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

func (timer *Timer) startLocked() (transition, bool) {
	if timer.closed || timer.runState == RunRunning {
		return transition{}, false
	}
	timer.cancelAutoStartLocked()

	change := transition{from: timer.phase, to: timer.phase}
	if timer.phase == PhaseIdle {
		timer.phase = PhaseWork
		timer.remaining = timer.config.WorkSeconds()
		change.to = PhaseWork
	}
	timer.runState = RunRunning

	elapsed := timer.totalSecondsLocked() - timer.remaining
	if elapsed < 0 {
		elapsed = 0
	}
	timer.epoch = timer.options.Clock.Now().Add(-time.Duration(elapsed) * time.Second)
	timer.scheduleTickLocked()
	timer.persistLocked()

	if change.from != change.to {
		timer.emitLocked(EventPhaseChange)
	}
	timer.emitLocked(EventStateChange)
	return change, true
}

func (timer *Timer) scheduleTickLocked() {
	timer.scheduleTickAfterLocked(tickInterval)
}

func (timer *Timer) scheduleTickAfterLocked(delay time.Duration) {
	timer.stopTickLocked()
	generation := timer.tickGen
	timer.tick = timer.options.Clock.AfterFunc(delay, func() {
		timer.onTick(generation)
	})
}

func (timer *Timer) stopTickLocked() {
	if timer.tick != nil {
		timer.tick.Stop()
		timer.tick = nil
	}
	timer.tickGen++
}

func (timer *Timer) onTick(generation uint64) {
	timer.mu.Lock()
	if timer.closed || generation != timer.tickGen || timer.runState != RunRunning {
		timer.mu.Unlock()
		return
	}
	timer.tick = nil

	if timer.remaining > 1 {
		timer.remaining--
		timer.scheduleTickLocked()
		timer.emitLocked(EventTick)
		timer.mu.Unlock()
		return
	}

	timer.remaining = 0
	change := timer.completePhaseLocked()
	timer.mu.Unlock()
	timer.announce(change)
}

// completePhaseLocked finishes the current phase: cycle bookkeeping, next
// phase selection and persistence all happen before an auto-start is armed.
func (timer *Timer) completePhaseLocked() transition {
	timer.stopTickLocked()
	timer.epoch = time.Time{}

	change := transition{from: timer.phase}
	autoStart := false
	if timer.phase == PhaseWork {
		timer.completed++
		next := PhaseBreak
		if cycles := timer.config.CyclesBeforeLongBreak; cycles > 0 && timer.completed%cycles == 0 {
			next = PhaseLongBreak
		}
		timer.phase = next
		autoStart = next == PhaseBreak && timer.config.AutoStartBreaks
	} else {
		timer.phase = PhaseWork
		autoStart = timer.config.AutoStartWork
	}
	timer.remaining = timer.totalSecondsLocked()
	timer.runState = RunPaused
	change.to = timer.phase

	timer.persistLocked()
	timer.emitLocked(EventPhaseChange)
	timer.emitLocked(EventStateChange)

	if autoStart {
		timer.scheduleAutoStartLocked()
	}
	return change
}

func (timer *Timer) scheduleAutoStartLocked() {
	timer.cancelAutoStartLocked()
	generation := timer.autoStartGen
	timer.autoStart = timer.options.Clock.AfterFunc(timer.options.AutoStartDelay, func() {
		timer.onAutoStart(generation)
	})
}

func (timer *Timer) cancelAutoStartLocked() {
	if timer.autoStart != nil {
		timer.autoStart.Stop()
		timer.autoStart = nil
	}
	timer.autoStartGen++
}

func (timer *Timer) onAutoStart(generation uint64) {
	timer.mu.Lock()
	if generation != timer.autoStartGen {
		timer.mu.Unlock()
		return
	}
	timer.autoStart = nil
	change, started := timer.startLocked()
	timer.mu.Unlock()
	if started {
		timer.announce(change)
	}
}

func (timer *Timer) announce(change transition) {
	chimes := timer.options.Chimes
	if chimes == nil || change.from == change.to || change.from == PhaseIdle {
		return
	}
	switch {
	case change.to == PhaseWork:
		chimes.ChimeWorkStart()
	case change.to.IsBreak():
		chimes.ChimeBreakStart()
	}
}

func (timer *Timer) restoreLocked() {
	store := timer.options.Store
	if store == nil {
		return
	}
	logger := timer.options.Logger

	snapshot, err := store.LoadSnapshot()
	if err != nil {
		if !errors.Is(err, ErrNoSnapshot) {
			logger.Debug("discarding unreadable timer snapshot", "error", err)
			timer.clearSnapshotLocked()
		}
		return
	}

	now := timer.options.Clock.Now()
	if err := snapshot.Validate(now, timer.options.MaxSnapshotAge); err != nil {
		logger.Debug("discarding timer snapshot", "reason", err)
		timer.clearSnapshotLocked()
		return
	}

	timer.phase = snapshot.Phase
	timer.completed = snapshot.CompletedWorkCycles
	switch snapshot.RunState {
	case RunRunning:
		epoch := fromMillis(snapshot.EpochStart)
		since := now.Sub(epoch)
		if since < 0 {
			since = 0
		}
		remaining := snapshot.SecondsRemaining - int(since/time.Second)
		if remaining > 0 {
			timer.remaining = remaining
			timer.runState = RunRunning
			timer.epoch = epoch
			// Stay on the epoch's second boundaries.
			timer.scheduleTickAfterLocked(tickInterval - since%tickInterval)
		} else {
			timer.remaining = 0
			timer.runState = RunPaused
		}
	case RunPaused:
		timer.remaining = snapshot.SecondsRemaining
		timer.runState = RunPaused
	default:
		timer.phase = PhaseIdle
		timer.runState = RunIdle
		timer.remaining = timer.config.WorkSeconds()
	}
	logger.Debug("resumed timer snapshot",
		"phase", timer.phase,
		"state", timer.runState,
		"remaining", timer.remaining,
	)
	timer.persistLocked()
}

func (timer *Timer) persistLocked() {
	store := timer.options.Store
	if store == nil || (timer.phase == PhaseIdle && timer.runState == RunIdle) {
		return
	}
	now := timer.options.Clock.Now()
	snapshot := Snapshot{
		Phase:               timer.phase,
		RunState:            timer.runState,
		SecondsRemaining:    timer.remaining,
		CompletedWorkCycles: timer.completed,
		SavedAt:             toMillis(now),
	}
	if timer.runState == RunRunning {
		snapshot.EpochStart = toMillis(timer.epoch)
		snapshot.SecondsRemaining = timer.remaining + int(now.Sub(timer.epoch)/time.Second)
	}
	if err := store.SaveSnapshot(snapshot); err != nil {
		timer.options.Logger.Warn("save timer snapshot", "error", err)
	}
}

func (timer *Timer) clearSnapshotLocked() {
	if err := timer.options.Store.ClearSnapshot(); err != nil {
		timer.options.Logger.Warn("clear timer snapshot", "error", err)
	}
}

func (timer *Timer) totalSecondsLocked() int {
	switch timer.phase {
	case PhaseWork:
		return timer.config.WorkSeconds()
	case PhaseBreak:
		return timer.config.BreakSeconds()
	case PhaseLongBreak:
		return timer.config.LongBreakSeconds()
	}
	return 0
}

func (timer *Timer) progressLocked() float64 {
	if timer.phase == PhaseIdle {
		return 0
	}
	total := timer.totalSecondsLocked()
	if total <= 0 {
		return 0
	}
	progress := float64(timer.remaining) / float64(total)
	if progress > 1 {
		return 1
	}
	if progress < 0 {
		return 0
	}
	return progress
}

func (timer *Timer) emitLocked(eventType EventType) {
	event := Event{
		Type:      eventType,
		Phase:     timer.phase,
		RunState:  timer.runState,
		Remaining: timer.remaining,
		Progress:  timer.progressLocked(),
		At:        timer.options.Clock.Now(),
	}
	for _, ch := range timer.events {
		select {
		case ch <- event:
		default:
		}
	}
}
