// Package audio renders noise voices and notification chimes to a sound
// device through a beep streamer graph.
package audio

import (
	"context"
	"errors"
	"fmt"

	"github.com/faiface/beep"
)

// ErrNoOutput is returned when no sound device can be acquired.
var ErrNoOutput = errors.New("audio output unavailable")

// Output is a sink mixing any number of streamers onto a device.
type Output interface {
	// Acquire opens the device for format. Repeated calls after a success
	// are no-ops.
	Acquire(ctx context.Context, format beep.Format) error
	// Play adds streamer to the mix. It is dropped once drained.
	Play(streamer beep.Streamer)
	// Locked runs fn while the rendering thread is held off, so streamers
	// already in the mix can be mutated safely.
	Locked(fn func())
	Close() error
}

// Disabled is an Output for environments without sound.
type Disabled struct{}

func (Disabled) Acquire(context.Context, beep.Format) error {
	return fmt.Errorf("%w: audio disabled", ErrNoOutput)
}

func (Disabled) Play(beep.Streamer) {}

func (Disabled) Locked(fn func()) {
	fn()
}

func (Disabled) Close() error {
	return nil
}
