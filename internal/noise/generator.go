package noise

import (
	"math/rand"
	"time"
)

// Profile holds the integration gains used for brown and red noise.
type Profile struct {
	BrownGain float64
	RedGain   float64
}

var (
	// StandardProfile is used for phase playback.
	StandardProfile = Profile{BrownGain: 0.14, RedGain: 0.16}
	// PreviewProfile is the lighter retune used when auditioning a color.
	PreviewProfile = Profile{BrownGain: 0.10, RedGain: 0.12}
)

const (
	brownDecay = 0.99
	redDecay   = 0.98
)

var (
	pinkDecay = [3]float64{0.997, 0.998, 0.999}
	pinkGain  = [3]float64{0.03, 0.02, 0.01}
)

// Generate returns seconds of mono samples for color using StandardProfile.
func Generate(color Color, sampleRate int, seconds float64) []float64 {
	return StandardProfile.Generate(color, sampleRate, seconds)
}

// Generate returns seconds of mono samples in [-1, 1]. Blue, violet, grey and
// green come out white; their shape is applied by the playback filter.
func (profile Profile) Generate(color Color, sampleRate int, seconds float64) []float64 {
	length := int(float64(sampleRate) * seconds)
	if length <= 0 || color == None {
		return nil
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	samples := make([]float64, length)

	var pink [3]float64
	var integrated float64
	for i := range samples {
		white := rng.Float64()*2 - 1

		switch color {
		case Pink:
			for k := range pink {
				pink[k] = pink[k]*pinkDecay[k] + white*pinkGain[k]
			}
			samples[i] = clip(pink[0] + pink[1] + pink[2] + white*0.2)
		case Brown:
			integrated = integrated*brownDecay + white*profile.BrownGain
			samples[i] = clip(integrated)
		case Red:
			integrated = integrated*redDecay + white*profile.RedGain
			samples[i] = clip(integrated)
		default:
			samples[i] = white
		}
	}
	return samples
}

func clip(value float64) float64 {
	if value > 1 {
		return 1
	}
	if value < -1 {
		return -1
	}
	return value
}
