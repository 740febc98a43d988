package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/faiface/beep"
)

const (
	otoChannels    = 2
	otoFrameBytes  = otoChannels * 4
	otoBufferDelay = 100 * time.Millisecond
)

// OtoOutput mixes streamers into a single float32 oto player. Only one oto
// context may exist per process.
type OtoOutput struct {
	setup   sync.Mutex
	context *oto.Context
	player  *oto.Player

	mu     sync.Mutex // guards mixer and frames
	mixer  beep.Mixer
	frames [][2]float64
}

// NewOtoOutput returns an output that creates its oto context lazily.
func NewOtoOutput() *OtoOutput {
	return &OtoOutput{}
}

func (output *OtoOutput) Acquire(ctx context.Context, format beep.Format) error {
	output.setup.Lock()
	defer output.setup.Unlock()
	if output.player != nil {
		return nil
	}

	if output.context == nil {
		otoContext, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   int(format.SampleRate),
			ChannelCount: otoChannels,
			Format:       oto.FormatFloat32LE,
			BufferSize:   otoBufferDelay,
		})
		if err != nil {
			return fmt.Errorf("%w: create oto context: %v", ErrNoOutput, err)
		}
		select {
		case <-ready:
		case <-ctx.Done():
			return fmt.Errorf("%w: waiting for oto context: %v", ErrNoOutput, ctx.Err())
		}
		output.context = otoContext
	}

	output.player = output.context.NewPlayer(output)
	output.player.Play()
	return nil
}

func (output *OtoOutput) Play(streamer beep.Streamer) {
	output.mu.Lock()
	output.mixer.Add(streamer)
	output.mu.Unlock()
}

func (output *OtoOutput) Locked(fn func()) {
	output.mu.Lock()
	defer output.mu.Unlock()
	fn()
}

// Read renders the mix as interleaved float32 little endian frames.
func (output *OtoOutput) Read(p []byte) (int, error) {
	count := len(p) / otoFrameBytes

	output.mu.Lock()
	if cap(output.frames) < count {
		output.frames = make([][2]float64, count)
	}
	frames := output.frames[:count]
	output.mixer.Stream(frames)
	for i, frame := range frames {
		offset := i * otoFrameBytes
		binary.LittleEndian.PutUint32(p[offset:], math.Float32bits(float32(frame[0])))
		binary.LittleEndian.PutUint32(p[offset+4:], math.Float32bits(float32(frame[1])))
	}
	output.mu.Unlock()

	for i := count * otoFrameBytes; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}

func (output *OtoOutput) Close() error {
	output.setup.Lock()
	defer output.setup.Unlock()

	output.mu.Lock()
	output.mixer.Clear()
	output.mu.Unlock()

	if output.player == nil {
		return nil
	}
	err := output.player.Close()
	output.player = nil
	if err != nil {
		return fmt.Errorf("close oto player: %w", err)
	}
	return nil
}
