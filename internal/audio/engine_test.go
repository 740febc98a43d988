package audio

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focusnoise/internal/noise"
)

func peak(frames [][2]float64) float64 {
	var loudest float64
	for _, frame := range frames {
		loudest = math.Max(loudest, math.Abs(frame[0]))
	}
	return loudest
}

func TestEngineSingleVoice(t *testing.T) {
	output := &fakeOutput{}
	engine := NewEngine(output, nil)

	engine.Play(noise.Pink, 0.5)
	engine.Play(noise.Blue, 0.5)

	active, _ := output.render(256)
	assert.Equal(t, 1, active)
	assert.Len(t, output.played(), 2)

	color, playing := engine.Active()
	assert.True(t, playing)
	assert.Equal(t, noise.Blue, color)
}

func TestEnginePlayNoneStops(t *testing.T) {
	output := &fakeOutput{}
	engine := NewEngine(output, nil)

	engine.Play(noise.Brown, 0.5)
	engine.Play(noise.None, 0.5)

	active, _ := output.render(256)
	assert.Zero(t, active)
	_, playing := engine.Active()
	assert.False(t, playing)
}

func TestEngineStopIsIdempotent(t *testing.T) {
	output := &fakeOutput{}
	engine := NewEngine(output, nil)

	engine.Stop()
	engine.Stop()
	assert.Empty(t, output.played())

	engine.Play(noise.White, 1)
	engine.Stop()
	engine.Stop()

	active, _ := output.render(256)
	assert.Zero(t, active)
}

func TestEngineVoiceIsAudible(t *testing.T) {
	for _, info := range noise.Catalogue() {
		if info.Color == noise.None {
			continue
		}
		t.Run(string(info.Color), func(t *testing.T) {
			output := &fakeOutput{}
			engine := NewEngine(output, nil)
			engine.Play(info.Color, 1)

			active, mixed := output.render(4096)
			require.Equal(t, 1, active)
			assert.Greater(t, peak(mixed), 0.01)
		})
	}
}

func TestEngineSetVolumeIsLive(t *testing.T) {
	output := &fakeOutput{}
	engine := NewEngine(output, nil)
	engine.Play(noise.White, 1)
	streamers := output.played()

	engine.SetVolume(0)
	_, mixed := output.render(1024)
	assert.Zero(t, peak(mixed))
	assert.Equal(t, streamers, output.played(), "volume change must not restart the voice")

	engine.SetVolume(0.25)
	_, mixed = output.render(1024)
	assert.Greater(t, peak(mixed), 0.0)
	assert.LessOrEqual(t, peak(mixed), 0.25)
	assert.Equal(t, 0.25, engine.Volume())
}

func TestEngineClampsVolume(t *testing.T) {
	engine := NewEngine(&fakeOutput{}, nil)
	engine.SetVolume(3)
	assert.Equal(t, 1.0, engine.Volume())
	engine.SetVolume(-1)
	assert.Equal(t, 0.0, engine.Volume())
}

func TestEngineAcquireFailureIsSilent(t *testing.T) {
	output := &fakeOutput{acquireErr: errors.New("permission denied")}
	engine := NewEngine(output, nil)

	assert.NotPanics(t, func() {
		engine.Play(noise.Pink, 0.5)
	})
	assert.Empty(t, output.played())
	_, playing := engine.Active()
	assert.False(t, playing)

	output.mu.Lock()
	output.acquireErr = nil
	output.mu.Unlock()
	engine.Play(noise.Pink, 0.5)
	assert.Len(t, output.played(), 1)
}

func TestEngineAcquiresOutputOnce(t *testing.T) {
	output := &fakeOutput{}
	engine := NewEngine(output, nil)

	engine.Play(noise.Pink, 0.5)
	engine.Play(noise.Brown, 0.5)
	engine.Preview(noise.Red, 0.5)

	assert.Equal(t, 1, output.acquires)
}

func TestEnginePreviewReplacesVoice(t *testing.T) {
	output := &fakeOutput{}
	engine := NewEngine(output, nil)

	engine.Play(noise.Brown, 0.5)
	engine.Preview(noise.Green, 0.5)

	active, _ := output.render(256)
	assert.Equal(t, 1, active)
	color, _ := engine.Active()
	assert.Equal(t, noise.Green, color)
}

func TestEngineIgnoresUnknownColor(t *testing.T) {
	output := &fakeOutput{}
	engine := NewEngine(output, nil)

	engine.Play(noise.Color("plaid"), 0.5)
	assert.Empty(t, output.played())
}

func TestEngineCloseReleasesOutput(t *testing.T) {
	output := &fakeOutput{}
	engine := NewEngine(output, nil)
	engine.Play(noise.Pink, 0.5)

	require.NoError(t, engine.Close())
	assert.True(t, output.closed)
	active, _ := output.render(256)
	assert.Zero(t, active)
}
