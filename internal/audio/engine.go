package audio

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"

	"focusnoise/internal/noise"
)

const (
	// SampleRate is the rate of every voice and chime.
	SampleRate beep.SampleRate = 44100
	// LoopLength is the length of the buffer a voice loops over.
	LoopLength = 2 * time.Second

	acquireTimeout = 5 * time.Second
)

// Format is the stream format requested from an Output.
var Format = beep.Format{SampleRate: SampleRate, NumChannels: 2, Precision: 2}

type voice struct {
	color noise.Color
	gain  *effects.Gain
	ctrl  *beep.Ctrl
}

// Engine owns at most one looping noise voice.
type Engine struct {
	mu       sync.Mutex
	output   Output
	logger   *slog.Logger
	acquired bool
	voice    *voice
	volume   float64
}

// NewEngine creates an engine rendering to output.
func NewEngine(output Output, logger *slog.Logger) *Engine {
	if output == nil {
		output = Disabled{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		output: output,
		logger: logger,
	}
}

// Play replaces the active voice with a looping voice of color. Playing
// noise.None is the same as Stop. Failures are logged and leave the engine
// silent.
func (engine *Engine) Play(color noise.Color, volume float64) {
	engine.start(color, volume, noise.StandardProfile)
}

// Preview plays color with the lighter audition retune. Stop ends it.
func (engine *Engine) Preview(color noise.Color, volume float64) {
	engine.start(color, volume, noise.PreviewProfile)
}

// Stop releases the active voice. It is a no-op when nothing plays.
func (engine *Engine) Stop() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.stopLocked()
}

// SetVolume changes the gain of the active voice without restarting it.
func (engine *Engine) SetVolume(volume float64) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.volume = clampVolume(volume)
	if engine.voice == nil {
		return
	}
	gain := engine.voice.gain
	level := engine.volume
	engine.output.Locked(func() {
		gain.Gain = level - 1
	})
}

// Volume returns the last requested volume.
func (engine *Engine) Volume() float64 {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.volume
}

// Active reports the color of the active voice.
func (engine *Engine) Active() (noise.Color, bool) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.voice == nil {
		return noise.None, false
	}
	return engine.voice.color, true
}

// Close stops playback and releases the output.
func (engine *Engine) Close() error {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.stopLocked()
	return engine.output.Close()
}

func (engine *Engine) start(color noise.Color, volume float64, profile noise.Profile) {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	engine.stopLocked()
	engine.volume = clampVolume(volume)
	if color == noise.None {
		return
	}
	if !color.Valid() {
		engine.logger.Warn("ignoring unknown noise color", "color", color)
		return
	}
	if !engine.acquireLocked() {
		return
	}

	samples := profile.Generate(color, int(SampleRate), LoopLength.Seconds())
	buffer := beep.NewBuffer(Format)
	buffer.Append(monoStreamer(samples))
	loop := beep.Loop(-1, buffer.Streamer(0, buffer.Len()))

	gain := &effects.Gain{
		Streamer: noise.Filter(noise.FilterFor(color), SampleRate, loop),
		Gain:     engine.volume - 1,
	}
	ctrl := &beep.Ctrl{Streamer: gain}
	engine.voice = &voice{color: color, gain: gain, ctrl: ctrl}
	engine.output.Play(ctrl)
	engine.logger.Debug("noise voice started", "color", color, "volume", engine.volume)
}

func (engine *Engine) stopLocked() {
	if engine.voice == nil {
		return
	}
	ctrl := engine.voice.ctrl
	engine.output.Locked(func() {
		ctrl.Streamer = nil
	})
	engine.logger.Debug("noise voice stopped", "color", engine.voice.color)
	engine.voice = nil
}

func (engine *Engine) acquireLocked() bool {
	if engine.acquired {
		return true
	}
	ctx, cancel := context.WithTimeout(context.Background(), acquireTimeout)
	defer cancel()
	if err := engine.output.Acquire(ctx, Format); err != nil {
		engine.logger.Warn("noise playback unavailable", "error", err)
		return false
	}
	engine.acquired = true
	return true
}

// monoStreamer copies samples onto both channels once.
func monoStreamer(samples []float64) beep.Streamer {
	position := 0
	return beep.StreamerFunc(func(frames [][2]float64) (int, bool) {
		if position >= len(samples) {
			return 0, false
		}
		n := 0
		for n < len(frames) && position < len(samples) {
			frames[n][0] = samples[position]
			frames[n][1] = samples[position]
			n++
			position++
		}
		return n, true
	})
}

func clampVolume(volume float64) float64 {
	if volume < 0 {
		return 0
	}
	if volume > 1 {
		return 1
	}
	return volume
}
