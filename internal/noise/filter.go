package noise

import (
	"math"

	"github.com/faiface/beep"
)

// FilterKind selects the biquad response.
type FilterKind int

const (
	FilterNone FilterKind = iota
	FilterLowPass
	FilterHighPass
	FilterBandPass
	FilterPeaking
)

// FilterSpec is the playback filter tuning for one color.
type FilterSpec struct {
	Kind      FilterKind
	Frequency float64
	Q         float64
	GainDB    float64
}

var filterTable = map[Color]FilterSpec{
	White:  {Kind: FilterNone},
	Pink:   {Kind: FilterLowPass, Frequency: 12000, Q: 0.5},
	Brown:  {Kind: FilterLowPass, Frequency: 6000, Q: 0.5},
	Blue:   {Kind: FilterHighPass, Frequency: 800, Q: 1},
	Violet: {Kind: FilterHighPass, Frequency: 1500, Q: 1.5},
	Grey:   {Kind: FilterPeaking, Frequency: 2000, Q: 1, GainDB: 2},
	Green:  {Kind: FilterBandPass, Frequency: 1500, Q: 2},
	Red:    {Kind: FilterLowPass, Frequency: 4000, Q: 0.5},
}

// FilterFor returns the playback filter for color.
func FilterFor(color Color) FilterSpec {
	return filterTable[color]
}

// Biquad is a second order IIR section (RBJ audio EQ cookbook), transposed
// direct form II.
type Biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
	z1, z2     float64
}

// NewBiquad designs a filter for spec at sampleRate. FilterNone yields an
// identity section.
func NewBiquad(spec FilterSpec, sampleRate float64) *Biquad {
	if spec.Kind == FilterNone || spec.Frequency <= 0 || sampleRate <= 0 {
		return &Biquad{b0: 1}
	}
	q := spec.Q
	if q <= 0 {
		q = math.Sqrt2 / 2
	}
	frequency := math.Min(spec.Frequency, sampleRate*0.49)
	w0 := 2 * math.Pi * frequency / sampleRate
	cosW0 := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	var b0, b1, b2, a0, a1, a2 float64
	switch spec.Kind {
	case FilterLowPass:
		b0 = (1 - cosW0) / 2
		b1 = 1 - cosW0
		b2 = (1 - cosW0) / 2
		a0, a1, a2 = 1+alpha, -2*cosW0, 1-alpha
	case FilterHighPass:
		b0 = (1 + cosW0) / 2
		b1 = -(1 + cosW0)
		b2 = (1 + cosW0) / 2
		a0, a1, a2 = 1+alpha, -2*cosW0, 1-alpha
	case FilterBandPass:
		b0, b1, b2 = alpha, 0, -alpha
		a0, a1, a2 = 1+alpha, -2*cosW0, 1-alpha
	case FilterPeaking:
		amplitude := math.Pow(10, spec.GainDB/40)
		b0 = 1 + alpha*amplitude
		b1 = -2 * cosW0
		b2 = 1 - alpha*amplitude
		a0, a1, a2 = 1+alpha/amplitude, -2*cosW0, 1-alpha/amplitude
	default:
		return &Biquad{b0: 1}
	}

	return &Biquad{
		b0: b0 / a0,
		b1: b1 / a0,
		b2: b2 / a0,
		a1: a1 / a0,
		a2: a2 / a0,
	}
}

// Process filters one sample.
func (filter *Biquad) Process(input float64) float64 {
	output := filter.b0*input + filter.z1
	filter.z1 = filter.b1*input - filter.a1*output + filter.z2
	filter.z2 = filter.b2*input - filter.a2*output
	return output
}

type filterStreamer struct {
	source beep.Streamer
	left   *Biquad
	right  *Biquad
}

// Filter wraps source with the filter described by spec.
func Filter(spec FilterSpec, sampleRate beep.SampleRate, source beep.Streamer) beep.Streamer {
	if spec.Kind == FilterNone {
		return source
	}
	return &filterStreamer{
		source: source,
		left:   NewBiquad(spec, float64(sampleRate)),
		right:  NewBiquad(spec, float64(sampleRate)),
	}
}

func (streamer *filterStreamer) Stream(samples [][2]float64) (int, bool) {
	n, ok := streamer.source.Stream(samples)
	for i := range samples[:n] {
		samples[i][0] = streamer.left.Process(samples[i][0])
		samples[i][1] = streamer.right.Process(samples[i][1])
	}
	return n, ok
}

func (streamer *filterStreamer) Err() error {
	return streamer.source.Err()
}
