package audio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

const speakerBuffer = 100 * time.Millisecond

// SpeakerOutput plays through the process-wide beep speaker.
type SpeakerOutput struct {
	mu          sync.Mutex
	initialized bool
}

// NewSpeakerOutput returns an output that initializes the speaker lazily.
func NewSpeakerOutput() *SpeakerOutput {
	return &SpeakerOutput{}
}

func (output *SpeakerOutput) Acquire(ctx context.Context, format beep.Format) error {
	output.mu.Lock()
	defer output.mu.Unlock()
	if output.initialized {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrNoOutput, err)
	}
	if err := speaker.Init(format.SampleRate, format.SampleRate.N(speakerBuffer)); err != nil {
		return fmt.Errorf("%w: init speaker: %v", ErrNoOutput, err)
	}
	output.initialized = true
	return nil
}

func (output *SpeakerOutput) Play(streamer beep.Streamer) {
	output.mu.Lock()
	ready := output.initialized
	output.mu.Unlock()
	if ready {
		speaker.Play(streamer)
	}
}

func (output *SpeakerOutput) Locked(fn func()) {
	speaker.Lock()
	defer speaker.Unlock()
	fn()
}

func (output *SpeakerOutput) Close() error {
	output.mu.Lock()
	defer output.mu.Unlock()
	if output.initialized {
		speaker.Close()
		output.initialized = false
	}
	return nil
}
