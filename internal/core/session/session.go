// Package session keeps the noise voice in step with the pomodoro timer and
// applies user choices made in the shells.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"focusnoise/internal/core/model"
	"focusnoise/internal/core/pomodoro"
	"focusnoise/internal/noise"
)

// NoisePlayer renders one noise voice at a time. Active reports whether a
// voice is actually sounding, which is false after Play failed to reach the
// output device.
type NoisePlayer interface {
	Play(color noise.Color, volume float64)
	Stop()
	SetVolume(volume float64)
	Active() (noise.Color, bool)
}

// Previewer is implemented by players that can audition a color.
type Previewer interface {
	Preview(color noise.Color, volume float64)
}

// Preferences persists the choices a controller applies.
type Preferences interface {
	SaveConfig(config model.Config) error
	SetWorkNoise(color noise.Color) error
	SetBreakNoise(color noise.Color) error
	SetVolume(volume float64) error
}

// Options configures a Controller.
type Options struct {
	Timer       *pomodoro.Timer
	Player      NoisePlayer
	Preferences Preferences
	Logger      *slog.Logger
	WorkNoise   noise.Color
	BreakNoise  noise.Color
	Volume      float64
}

// Controller drives the noise player from timer state.
type Controller struct {
	mu          sync.Mutex
	timer       *pomodoro.Timer
	player      NoisePlayer
	preferences Preferences
	logger      *slog.Logger

	workNoise  noise.Color
	breakNoise noise.Color
	volume     float64

	playing      bool
	playingColor noise.Color
	previewing   bool
}

// New creates a controller. Sync or Run must be called to start sound.
func New(options Options) *Controller {
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	return &Controller{
		timer:       options.Timer,
		player:      options.Player,
		preferences: options.Preferences,
		logger:      options.Logger,
		workNoise:   options.WorkNoise,
		breakNoise:  options.BreakNoise,
		volume:      options.Volume,
	}
}

// DesiredNoise returns the color for the current phase and whether a voice
// should be sounding: only a running, non-idle timer with a color selected
// plays.
func DesiredNoise(status pomodoro.Status, workNoise, breakNoise noise.Color) (noise.Color, bool) {
	color := noise.None
	switch {
	case status.Phase == pomodoro.PhaseWork:
		color = workNoise
	case status.Phase.IsBreak():
		color = breakNoise
	}
	active := status.RunState == pomodoro.RunRunning && color != noise.None
	return color, active
}

// Timer returns the driven timer.
func (controller *Controller) Timer() *pomodoro.Timer {
	return controller.timer
}

// Run keeps the voice in step with timer events until ctx ends or the timer
// closes.
func (controller *Controller) Run(ctx context.Context) error {
	events := controller.timer.Subscribe(16)
	controller.Sync()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				controller.stop()
				return nil
			}
			if event.Type == pomodoro.EventTick {
				controller.retry()
			} else {
				controller.Sync()
			}
		}
	}
}

// Sync starts, switches or stops the voice to match the timer. A voice is
// restarted only when it becomes active or its color changes.
func (controller *Controller) Sync() {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	controller.syncLocked()
}

func (controller *Controller) syncLocked() {
	status := controller.timer.Status()
	color, active := DesiredNoise(status, controller.workNoise, controller.breakNoise)
	if !active {
		if controller.playing {
			controller.player.Stop()
		}
		controller.playing = false
		controller.playingColor = color
		return
	}
	if controller.playing && color == controller.playingColor {
		return
	}
	controller.player.Play(color, controller.volume)
	_, controller.playing = controller.player.Active()
	controller.playingColor = color
}

// retry starts the phase voice again if an earlier Play could not open the
// output. An audition in progress is left alone.
func (controller *Controller) retry() {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.playing || controller.previewing {
		return
	}
	controller.syncLocked()
}

func (controller *Controller) stop() {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.playing {
		controller.player.Stop()
		controller.playing = false
	}
}

// WorkNoise returns the color played during work.
func (controller *Controller) WorkNoise() noise.Color {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	return controller.workNoise
}

// BreakNoise returns the color played during breaks.
func (controller *Controller) BreakNoise() noise.Color {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	return controller.breakNoise
}

// Volume returns the noise volume.
func (controller *Controller) Volume() float64 {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	return controller.volume
}

// SetWorkNoise selects and stores the work color.
func (controller *Controller) SetWorkNoise(color noise.Color) error {
	return controller.setNoise(color, true)
}

// SetBreakNoise selects and stores the break color.
func (controller *Controller) SetBreakNoise(color noise.Color) error {
	return controller.setNoise(color, false)
}

func (controller *Controller) setNoise(color noise.Color, work bool) error {
	if !color.Valid() {
		return fmt.Errorf("unknown noise color %q", color)
	}
	controller.mu.Lock()
	defer controller.mu.Unlock()
	var err error
	if work {
		controller.workNoise = color
		err = controller.saveLocked(func(preferences Preferences) error {
			return preferences.SetWorkNoise(color)
		})
	} else {
		controller.breakNoise = color
		err = controller.saveLocked(func(preferences Preferences) error {
			return preferences.SetBreakNoise(color)
		})
	}
	controller.syncLocked()
	return err
}

// SetVolume changes and stores the volume. The active voice follows live.
func (controller *Controller) SetVolume(volume float64) error {
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}
	controller.mu.Lock()
	defer controller.mu.Unlock()
	controller.volume = volume
	controller.player.SetVolume(volume)
	return controller.saveLocked(func(preferences Preferences) error {
		return preferences.SetVolume(volume)
	})
}

// ApplySettings validates config, stores it and hands it to the timer.
// Invalid settings never reach the timer.
func (controller *Controller) ApplySettings(config model.Config) error {
	if err := model.Validate(config); err != nil {
		return err
	}
	controller.mu.Lock()
	err := controller.saveLocked(func(preferences Preferences) error {
		return preferences.SaveConfig(config)
	})
	controller.mu.Unlock()
	if err != nil {
		return err
	}
	controller.timer.UpdateConfig(config)
	return nil
}

// Preview auditions color in place of the phase voice.
func (controller *Controller) Preview(color noise.Color) {
	previewer, ok := controller.player.(Previewer)
	if !ok {
		return
	}
	controller.mu.Lock()
	defer controller.mu.Unlock()
	controller.playing = false
	controller.previewing = true
	previewer.Preview(color, controller.volume)
}

// EndPreview stops an audition and restores the phase voice.
func (controller *Controller) EndPreview() {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	controller.player.Stop()
	controller.playing = false
	controller.previewing = false
	controller.syncLocked()
}

func (controller *Controller) saveLocked(save func(Preferences) error) error {
	if controller.preferences == nil {
		return nil
	}
	if err := save(controller.preferences); err != nil {
		controller.logger.Warn("save preferences", "error", err)
		return err
	}
	return nil
}
