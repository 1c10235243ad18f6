package wave

import (
	"math"

	"github.com/cbegin/wavesynth-go/internal/errs"
)

// FM is a two-operator frequency modulation voice: a sine carrier whose
// phase is driven by a sine modulator. CarrierMul and ModMul are frequency
// ratios relative to Frequency; ModIndex is the modulation depth in radians.
type FM struct {
	Frequency  float64
	CarrierMul float64
	ModMul     float64
	ModIndex   float64
}

// DefaultFM returns a bright electric-piano-like operator pair.
func DefaultFM(frequency float64) FM {
	return FM{Frequency: frequency, CarrierMul: 1, ModMul: 2, ModIndex: 1.6}
}

func (w FM) Sample(t float64) float64 {
	mod := math.Sin(2*math.Pi*w.Frequency*w.ModMul*t) * w.ModIndex
	return math.Sin(2*math.Pi*w.Frequency*w.CarrierMul*t + mod)
}

// Pulse is a rectangular wave that is high for Duty of each period. With a
// positive SampleRate both edges are smoothed with polyBLEP to reduce
// aliasing; otherwise the edges are ideal.
type Pulse struct {
	Frequency  float64
	Duty       float64
	SampleRate int
}

func (w Pulse) Sample(t float64) float64 {
	p := phase(w.Frequency, t)
	out := -1.0
	if p < w.Duty {
		out = 1
	}
	if w.SampleRate > 0 {
		dt := w.Frequency / float64(w.SampleRate)
		out += polyBLEP(p, dt)
		out -= polyBLEP(math.Mod(p-w.Duty+1, 1), dt)
	}
	return out
}

// polyBLEP is the band-limited step residual at phase t in [0, 1) for a
// phase increment of dt per sample.
func polyBLEP(t, dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	if t < dt {
		t /= dt
		return t + t - t*t - 1
	}
	if t > 1-dt {
		t = (t - 1) / dt
		return t*t + t + t + 1
	}
	return 0
}

// Wavetable loops one recorded cycle at Frequency, interpolating linearly
// between table entries and wrapping at the end.
type Wavetable struct {
	Frequency float64
	table     []float64
}

// NewWavetable copies cycle into a new table oscillator.
func NewWavetable(cycle []float64, frequency float64) (Wavetable, error) {
	if len(cycle) == 0 {
		return Wavetable{}, errs.Param("wavetable", "cycle must not be empty")
	}
	return Wavetable{Frequency: frequency, table: append([]float64(nil), cycle...)}, nil
}

func (w Wavetable) Sample(t float64) float64 {
	n := len(w.table)
	if n == 0 {
		return 0
	}
	idx := phase(w.Frequency, t) * float64(n)
	i0 := int(idx) % n
	i1 := (i0 + 1) % n
	frac := idx - math.Floor(idx)
	return w.table[i0]*(1-frac) + w.table[i1]*frac
}
