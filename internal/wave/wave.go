// Package wave defines sample generators: functions of the time elapsed
// since note onset that return an amplitude in [-1, 1].
package wave

import (
	"math"
	"strings"

	"github.com/cbegin/wavesynth-go/internal/errs"
)

// Generator produces one amplitude per call for the elapsed time t in
// seconds. Stateless generators are value types and may be shared; stateful
// generators are pointer types owned by a single note and must be stepped
// once per output sample in increasing t.
type Generator interface {
	Sample(t float64) float64
}

// Func adapts a plain function to the Generator interface.
type Func func(t float64) float64

func (f Func) Sample(t float64) float64 { return f(t) }

type Sine struct{ Frequency float64 }

func (w Sine) Sample(t float64) float64 {
	return math.Sin(2 * math.Pi * w.Frequency * t)
}

type Square struct{ Frequency float64 }

func (w Square) Sample(t float64) float64 {
	if phase(w.Frequency, t) < 0.5 {
		return 1
	}
	return -1
}

// Sawtooth rises from -1 to 1 over each period, crossing zero at the
// period start.
type Sawtooth struct{ Frequency float64 }

func (w Sawtooth) Sample(t float64) float64 {
	x := w.Frequency * t
	return 2 * (x - math.Floor(x+0.5))
}

type Triangle struct{ Frequency float64 }

func (w Triangle) Sample(t float64) float64 {
	return 2*math.Abs(Sawtooth(w).Sample(t+0.25/nonZero(w.Frequency))) - 1
}

// Tangent is tan(pi*f*t) clipped to [-1, 1].
type Tangent struct{ Frequency float64 }

func (w Tangent) Sample(t float64) float64 {
	return clamp(math.Tan(math.Pi * w.Frequency * t))
}

type partial struct {
	ratio float64
	amp   float64
	decay float64 // per second, 0 for sustained
}

var bellPartials = []partial{
	{1, 1, 1.5},
	{2, 0.6, 2.5},
	{3, 0.4, 3.5},
	{4.2, 0.25, 5},
	{5.4, 0.2, 6.5},
	{6.8, 0.15, 8},
}

var organPartials = []partial{
	{0.5, 0.5, 0},
	{1, 1, 0},
	{2, 0.5, 0},
	{3, 0.25, 0},
	{4, 0.125, 0},
	{8, 0.0625, 0},
}

// Bell sums inharmonic partials, each decaying exponentially.
type Bell struct{ Frequency float64 }

func (w Bell) Sample(t float64) float64 {
	return additive(bellPartials, w.Frequency, t)
}

// Organ sums sustained harmonic partials.
type Organ struct{ Frequency float64 }

func (w Organ) Sample(t float64) float64 {
	return additive(organPartials, w.Frequency, t)
}

// Silence always returns 0.
type Silence struct{}

func (Silence) Sample(float64) float64 { return 0 }

// New returns the stateless waveform with the given name: sine, square,
// sawtooth (saw), triangle, tangent, bell, organ, pulse, fm or silence.
func New(name string, frequency float64) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sine", "":
		return Sine{frequency}, nil
	case "square":
		return Square{frequency}, nil
	case "sawtooth", "saw":
		return Sawtooth{frequency}, nil
	case "triangle":
		return Triangle{frequency}, nil
	case "tangent":
		return Tangent{frequency}, nil
	case "bell":
		return Bell{frequency}, nil
	case "organ":
		return Organ{frequency}, nil
	case "pulse":
		return Pulse{Frequency: frequency, Duty: 0.25}, nil
	case "fm":
		return DefaultFM(frequency), nil
	case "silence":
		return Silence{}, nil
	}
	return nil, errs.Param("waveform", "unknown waveform %q", name)
}

// Envelope is a linear attack/decay amplitude envelope: it rises from 0 to 1
// over attack seconds, then falls back to 0 over decay seconds.
func Envelope(t, attack, decay float64) float64 {
	switch {
	case t < 0:
		return 0
	case t < attack:
		return t / attack
	case decay <= 0:
		return 0
	}
	return math.Max(0, 1-(t-attack)/decay)
}

type mix []Generator

func (m mix) Sample(t float64) float64 {
	var sum float64
	for _, g := range m {
		sum += g.Sample(t)
	}
	return sum / float64(len(m))
}

// Mix averages the outputs of gens. Every generator is sampled on every
// call, so stateful generators advance together.
func Mix(gens ...Generator) Generator {
	if len(gens) == 0 {
		return Silence{}
	}
	return mix(gens)
}

// Gain scales the output of g by amount.
func Gain(g Generator, amount float64) Generator {
	return Func(func(t float64) float64 { return amount * g.Sample(t) })
}

func additive(partials []partial, freq, t float64) float64 {
	var sum, total float64
	for _, p := range partials {
		total += p.amp
		a := p.amp
		if p.decay > 0 {
			a *= math.Exp(-p.decay * t)
		}
		sum += a * math.Sin(2*math.Pi*freq*p.ratio*t)
	}
	return sum / total
}

func phase(freq, t float64) float64 {
	x := freq * t
	return x - math.Floor(x)
}

func nonZero(f float64) float64 {
	if f == 0 {
		return 1
	}
	return f
}

func clamp(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
