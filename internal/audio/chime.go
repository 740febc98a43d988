package audio

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
)

const (
	toneAmplitude = 0.3
	toneAttack    = 50 * time.Millisecond
	toneRelease   = 100 * time.Millisecond
)

type chimeTone struct {
	frequency float64
	duration  time.Duration
	level     float64
	offset    time.Duration
}

type chime struct {
	name   string
	tones  []chimeTone
	master float64
}

var (
	workChime = chime{
		name: "work",
		tones: []chimeTone{
			{frequency: 800, duration: 150 * time.Millisecond, level: 1},
			{frequency: 1000, duration: 120 * time.Millisecond, level: 0.5, offset: 20 * time.Millisecond},
		},
		master: 0.4,
	}
	breakChime = chime{
		name: "break",
		tones: []chimeTone{
			{frequency: 600, duration: 200 * time.Millisecond, level: 1},
			{frequency: 750, duration: 180 * time.Millisecond, level: 0.4, offset: 30 * time.Millisecond},
		},
		master: 0.35,
	}
)

// Chimes plays the two-tone phase transition sounds. Each chime runs in its
// own goroutine; failures are logged.
type Chimes struct {
	output Output
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewChimes creates a chime emitter rendering to output.
func NewChimes(output Output, logger *slog.Logger) *Chimes {
	if output == nil {
		output = Disabled{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Chimes{output: output, logger: logger}
}

// ChimeWorkStart plays the higher chime announcing a work phase.
func (chimes *Chimes) ChimeWorkStart() {
	chimes.play(workChime)
}

// ChimeBreakStart plays the lower chime announcing a break.
func (chimes *Chimes) ChimeBreakStart() {
	chimes.play(breakChime)
}

// Wait blocks until every queued chime has been handed to the output.
func (chimes *Chimes) Wait() {
	chimes.wg.Wait()
}

func (chimes *Chimes) play(sound chime) {
	chimes.wg.Add(1)
	go func() {
		defer chimes.wg.Done()
		defer func() {
			if recovered := recover(); recovered != nil {
				chimes.logger.Warn("chime failed", "chime", sound.name, "panic", recovered)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), acquireTimeout)
		defer cancel()
		if err := chimes.output.Acquire(ctx, Format); err != nil {
			chimes.logger.Warn("chime unavailable", "chime", sound.name, "error", err)
			return
		}
		chimes.output.Play(sound.streamer(SampleRate))
	}()
}

func (sound chime) streamer(sampleRate beep.SampleRate) beep.Streamer {
	parts := make([]beep.Streamer, 0, len(sound.tones))
	for _, entry := range sound.tones {
		var part beep.Streamer = &effects.Gain{
			Streamer: tone(sampleRate, entry.frequency, entry.duration),
			Gain:     entry.level - 1,
		}
		if entry.offset > 0 {
			part = beep.Seq(beep.Silence(sampleRate.N(entry.offset)), part)
		}
		parts = append(parts, part)
	}
	return &effects.Gain{Streamer: beep.Mix(parts...), Gain: sound.master - 1}
}

// tone is a sine burst with a linear attack and release.
func tone(sampleRate beep.SampleRate, frequency float64, duration time.Duration) beep.Streamer {
	total := sampleRate.N(duration)
	length := duration.Seconds()
	position := 0
	return beep.StreamerFunc(func(frames [][2]float64) (int, bool) {
		if position >= total {
			return 0, false
		}
		n := 0
		for n < len(frames) && position < total {
			t := float64(position) / float64(sampleRate)
			value := math.Sin(2*math.Pi*frequency*t) * toneAmplitude * envelope(t, length)
			frames[n][0] = value
			frames[n][1] = value
			n++
			position++
		}
		return n, true
	})
}

func envelope(t, length float64) float64 {
	attack := math.Min(1, t/toneAttack.Seconds())
	release := math.Max(0, math.Min(1, (length-t)/toneRelease.Seconds()))
	return math.Min(attack, release)
}
