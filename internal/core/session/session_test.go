package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focusnoise/internal/core/clock"
	"focusnoise/internal/core/model"
	"focusnoise/internal/core/pomodoro"
	"focusnoise/internal/noise"
)

type playerCall struct {
	action string
	color  noise.Color
	volume float64
}

type fakePlayer struct {
	mu          sync.Mutex
	calls       []playerCall
	voice       noise.Color
	sounding    bool
	unavailable bool
}

func (player *fakePlayer) Play(color noise.Color, volume float64) {
	player.record(playerCall{action: "play", color: color, volume: volume})
	player.sound(color)
}

func (player *fakePlayer) Preview(color noise.Color, volume float64) {
	player.record(playerCall{action: "preview", color: color, volume: volume})
	player.sound(color)
}

func (player *fakePlayer) Stop() {
	player.record(playerCall{action: "stop"})
	player.mu.Lock()
	defer player.mu.Unlock()
	player.sounding = false
}

func (player *fakePlayer) Active() (noise.Color, bool) {
	player.mu.Lock()
	defer player.mu.Unlock()
	return player.voice, player.sounding
}

func (player *fakePlayer) sound(color noise.Color) {
	player.mu.Lock()
	defer player.mu.Unlock()
	player.voice = color
	player.sounding = !player.unavailable
}

func (player *fakePlayer) setUnavailable(unavailable bool) {
	player.mu.Lock()
	defer player.mu.Unlock()
	player.unavailable = unavailable
}

func (player *fakePlayer) SetVolume(volume float64) {
	player.record(playerCall{action: "volume", volume: volume})
}

func (player *fakePlayer) record(call playerCall) {
	player.mu.Lock()
	defer player.mu.Unlock()
	player.calls = append(player.calls, call)
}

func (player *fakePlayer) history() []playerCall {
	player.mu.Lock()
	defer player.mu.Unlock()
	return append([]playerCall(nil), player.calls...)
}

type fakePreferences struct {
	config     *model.Config
	workNoise  noise.Color
	breakNoise noise.Color
	volume     float64
	err        error
}

func (preferences *fakePreferences) SaveConfig(config model.Config) error {
	if preferences.err != nil {
		return preferences.err
	}
	preferences.config = &config
	return nil
}

func (preferences *fakePreferences) SetWorkNoise(color noise.Color) error {
	preferences.workNoise = color
	return preferences.err
}

func (preferences *fakePreferences) SetBreakNoise(color noise.Color) error {
	preferences.breakNoise = color
	return preferences.err
}

func (preferences *fakePreferences) SetVolume(volume float64) error {
	preferences.volume = volume
	return preferences.err
}

type fixture struct {
	clock       *clock.Manual
	timer       *pomodoro.Timer
	player      *fakePlayer
	preferences *fakePreferences
	controller  *Controller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	manual := clock.NewManual(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	config := model.Config{
		WorkMinutes:           1,
		BreakMinutes:          1,
		LongBreakMinutes:      2,
		CyclesBeforeLongBreak: 4,
		AutoStartBreaks:       true,
		AutoStartWork:         true,
	}
	timer := pomodoro.New(config, pomodoro.Options{Clock: manual})
	t.Cleanup(timer.Close)

	player := &fakePlayer{}
	preferences := &fakePreferences{}
	return &fixture{
		clock:       manual,
		timer:       timer,
		player:      player,
		preferences: preferences,
		controller: New(Options{
			Timer:       timer,
			Player:      player,
			Preferences: preferences,
			WorkNoise:   noise.Brown,
			BreakNoise:  noise.None,
			Volume:      0.2,
		}),
	}
}

func TestDesiredNoise(t *testing.T) {
	tests := []struct {
		name     string
		status   pomodoro.Status
		color    noise.Color
		expected bool
	}{
		{
			name:   "idle",
			status: pomodoro.Status{Phase: pomodoro.PhaseIdle, RunState: pomodoro.RunIdle},
			color:  noise.None,
		},
		{
			name:     "running work",
			status:   pomodoro.Status{Phase: pomodoro.PhaseWork, RunState: pomodoro.RunRunning},
			color:    noise.Brown,
			expected: true,
		},
		{
			name:   "paused work",
			status: pomodoro.Status{Phase: pomodoro.PhaseWork, RunState: pomodoro.RunPaused},
			color:  noise.Brown,
		},
		{
			name:     "running break",
			status:   pomodoro.Status{Phase: pomodoro.PhaseBreak, RunState: pomodoro.RunRunning},
			color:    noise.Pink,
			expected: true,
		},
		{
			name:     "running long break",
			status:   pomodoro.Status{Phase: pomodoro.PhaseLongBreak, RunState: pomodoro.RunRunning},
			color:    noise.Pink,
			expected: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			color, active := DesiredNoise(tt.status, noise.Brown, noise.Pink)
			assert.Equal(t, tt.color, color)
			assert.Equal(t, tt.expected, active)
		})
	}

	_, active := DesiredNoise(pomodoro.Status{Phase: pomodoro.PhaseBreak, RunState: pomodoro.RunRunning}, noise.Brown, noise.None)
	assert.False(t, active, "a break without a color is silent")
}

func TestSyncFollowsTimer(t *testing.T) {
	f := newFixture(t)

	f.controller.Sync()
	assert.Empty(t, f.player.history())

	f.timer.Start()
	f.controller.Sync()
	f.controller.Sync()
	require.Equal(t, []playerCall{{action: "play", color: noise.Brown, volume: 0.2}}, f.player.history())

	f.clock.Advance(time.Minute)
	f.controller.Sync()
	assert.Equal(t, pomodoro.PhaseBreak, f.timer.Status().Phase)
	assert.Equal(t, playerCall{action: "stop"}, f.player.history()[1])

	f.clock.Advance(pomodoro.DefaultAutoStartDelay)
	f.controller.Sync()
	assert.Equal(t, pomodoro.RunRunning, f.timer.Status().RunState)
	assert.Len(t, f.player.history(), 2, "silent break must not start a voice")
}

func TestSyncPauseAndResume(t *testing.T) {
	f := newFixture(t)
	f.timer.Start()
	f.controller.Sync()

	f.timer.Pause()
	f.controller.Sync()
	f.timer.Start()
	f.controller.Sync()

	assert.Equal(t, []playerCall{
		{action: "play", color: noise.Brown, volume: 0.2},
		{action: "stop"},
		{action: "play", color: noise.Brown, volume: 0.2},
	}, f.player.history())
}

func TestSetWorkNoiseSwitchesVoice(t *testing.T) {
	f := newFixture(t)
	f.timer.Start()
	f.controller.Sync()

	require.NoError(t, f.controller.SetWorkNoise(noise.Pink))
	require.NoError(t, f.controller.SetWorkNoise(noise.Pink))

	assert.Equal(t, []playerCall{
		{action: "play", color: noise.Brown, volume: 0.2},
		{action: "play", color: noise.Pink, volume: 0.2},
	}, f.player.history())
	assert.Equal(t, noise.Pink, f.preferences.workNoise)
	assert.Equal(t, noise.Pink, f.controller.WorkNoise())

	require.NoError(t, f.controller.SetWorkNoise(noise.None))
	assert.Equal(t, playerCall{action: "stop"}, f.player.history()[2])
}

func TestSetBreakNoiseWhileWorking(t *testing.T) {
	f := newFixture(t)
	f.timer.Start()
	f.controller.Sync()

	require.NoError(t, f.controller.SetBreakNoise(noise.Green))
	assert.Len(t, f.player.history(), 1)
	assert.Equal(t, noise.Green, f.preferences.breakNoise)
	assert.Equal(t, noise.Green, f.controller.BreakNoise())

	assert.Error(t, f.controller.SetBreakNoise(noise.Color("plaid")))
}

func TestSetVolume(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.controller.SetVolume(0.7))
	require.NoError(t, f.controller.SetVolume(4))

	assert.Equal(t, []playerCall{
		{action: "volume", volume: 0.7},
		{action: "volume", volume: 1},
	}, f.player.history())
	assert.Equal(t, 1.0, f.preferences.volume)
	assert.Equal(t, 1.0, f.controller.Volume())
}

func TestApplySettingsRejectsInvalidConfig(t *testing.T) {
	f := newFixture(t)
	before := f.timer.Config()

	zeroWork := before
	zeroWork.WorkMinutes = 0
	tooManyCycles := before
	tooManyCycles.CyclesBeforeLongBreak = 11

	for _, config := range []model.Config{zeroWork, tooManyCycles} {
		err := f.controller.ApplySettings(config)
		var validationErr *model.ValidationError
		require.ErrorAs(t, err, &validationErr)
	}
	assert.Equal(t, before, f.timer.Config())
	assert.Nil(t, f.preferences.config)
}

func TestApplySettings(t *testing.T) {
	f := newFixture(t)
	config := model.DefaultConfig()
	config.WorkMinutes = 45

	require.NoError(t, f.controller.ApplySettings(config))
	assert.Equal(t, config, f.timer.Config())
	require.NotNil(t, f.preferences.config)
	assert.Equal(t, config, *f.preferences.config)
	assert.Equal(t, 45*60, f.timer.Status().SecondsRemaining)
}

func TestApplySettingsStoreFailure(t *testing.T) {
	f := newFixture(t)
	f.preferences.err = errors.New("read-only")
	before := f.timer.Config()

	assert.Error(t, f.controller.ApplySettings(model.DefaultConfig()))
	assert.Equal(t, before, f.timer.Config())
}

func TestPreview(t *testing.T) {
	f := newFixture(t)
	f.timer.Start()
	f.controller.Sync()

	f.controller.Preview(noise.Violet)
	f.controller.EndPreview()

	assert.Equal(t, []playerCall{
		{action: "play", color: noise.Brown, volume: 0.2},
		{action: "preview", color: noise.Violet, volume: 0.2},
		{action: "stop"},
		{action: "play", color: noise.Brown, volume: 0.2},
	}, f.player.history())
}

func TestRunFollowsEvents(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- f.controller.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		f.timer.Start()
		return len(f.player.history()) > 0
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, playerCall{action: "play", color: noise.Brown, volume: 0.2}, f.player.history()[0])

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestRunRetriesVoiceAfterOutputFailure(t *testing.T) {
	f := newFixture(t)
	f.player.setUnavailable(true)
	f.timer.Start()
	f.controller.Sync()
	require.Len(t, f.player.history(), 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- f.controller.Run(ctx)
	}()

	f.player.setUnavailable(false)
	require.Eventually(t, func() bool {
		f.clock.Advance(time.Second)
		_, sounding := f.player.Active()
		return sounding
	}, time.Second, 10*time.Millisecond)

	plays := 0
	for _, call := range f.player.history() {
		if call.action == "play" {
			assert.Equal(t, noise.Brown, call.color)
			plays++
		}
	}
	assert.GreaterOrEqual(t, plays, 2)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestTicksDoNotInterruptPreview(t *testing.T) {
	f := newFixture(t)
	f.timer.Start()
	f.controller.Preview(noise.Violet)

	f.controller.retry()
	assert.Equal(t, []playerCall{
		{action: "preview", color: noise.Violet, volume: 0.2},
	}, f.player.history())
}

func TestRunStopsWhenTimerCloses(t *testing.T) {
	f := newFixture(t)
	f.timer.Start()
	done := make(chan error, 1)
	go func() {
		done <- f.controller.Run(context.Background())
	}()

	require.Eventually(t, func() bool {
		return len(f.player.history()) > 0
	}, time.Second, 10*time.Millisecond)

	f.timer.Close()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after the timer closed")
	}
	history := f.player.history()
	assert.Equal(t, playerCall{action: "stop"}, history[len(history)-1])
}
