package wave

import (
	"math"
	"math/rand/v2"

	"github.com/cbegin/wavesynth-go/internal/effects"
	"github.com/cbegin/wavesynth-go/internal/errs"
	"github.com/cbegin/wavesynth-go/internal/lfo"
)

// Noise produces uniform white noise from a seeded source.
type Noise struct {
	rng *rand.Rand
}

func NewNoise(seed uint64) *Noise {
	return &Noise{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (n *Noise) Sample(float64) float64 {
	return 2*n.rng.Float64() - 1
}

// Sampler plays a recorded buffer back at freq/basePitch times its original
// speed, interpolating linearly between frames. Past the end of the buffer
// it returns silence.
type Sampler struct {
	data  []float64
	speed float64 // frames per second of elapsed time
}

func NewSampler(data []float64, sampleRate int, freq, basePitch float64) (*Sampler, error) {
	if len(data) == 0 {
		return nil, errs.Param("sample buffer", "must not be empty")
	}
	if sampleRate <= 0 {
		return nil, errs.Param("sample rate", "must be positive, got %d", sampleRate)
	}
	if freq <= 0 {
		return nil, errs.Param("frequency", "must be positive, got %v", freq)
	}
	if basePitch <= 0 {
		return nil, errs.Param("base pitch", "must be positive, got %v", basePitch)
	}
	return &Sampler{
		data:  data,
		speed: float64(sampleRate) * freq / basePitch,
	}, nil
}

func (s *Sampler) Sample(t float64) float64 {
	if t < 0 {
		return 0
	}
	pos := t * s.speed
	i := int(pos)
	if i >= len(s.data) {
		return 0
	}
	a := s.data[i]
	var b float64
	if i+1 < len(s.data) {
		b = s.data[i+1]
	}
	frac := pos - float64(i)
	return a + (b-a)*frac
}

// Delayed outputs its source delayed by a fixed number of samples. The
// first delay outputs are silence. The source is sampled once per call.
type Delayed struct {
	src  Generator
	line *effects.DelayLine
}

func NewDelayed(src Generator, delaySamples, sampleRate int) (*Delayed, error) {
	line, err := effects.NewDelayLine(delaySamples, sampleRate)
	if err != nil {
		return nil, err
	}
	return &Delayed{src: src, line: line}, nil
}

func (d *Delayed) Sample(t float64) float64 {
	return d.line.Tick(d.src.Sample(t))
}

// KarplusStrong is a plucked string: a noise-filled ring buffer of one
// period, recirculated through a damped two-point average.
type KarplusStrong struct {
	buf     []float64
	pos     int
	damping float64
}

// NewKarplusStrong seeds a buffer of round(sampleRate/freq) noise samples.
// damping must lie in (0, 1).
func NewKarplusStrong(freq float64, sampleRate int, damping float64, seed uint64) (*KarplusStrong, error) {
	if sampleRate <= 0 {
		return nil, errs.Param("sample rate", "must be positive, got %d", sampleRate)
	}
	if freq <= 0 || math.IsNaN(freq) {
		return nil, errs.Param("frequency", "must be positive, got %v", freq)
	}
	if !(damping > 0 && damping < 1) {
		return nil, errs.Param("damping", "must be in (0, 1), got %v", damping)
	}
	n := int(math.Round(float64(sampleRate) / freq))
	if n < 2 {
		return nil, errs.Param("frequency", "%v Hz leaves a string of %d samples at %d Hz", freq, n, sampleRate)
	}
	noise := NewNoise(seed)
	buf := make([]float64, n)
	for i := range buf {
		buf[i] = noise.Sample(0)
	}
	return &KarplusStrong{buf: buf, damping: damping}, nil
}

func (k *KarplusStrong) Sample(float64) float64 {
	out := k.buf[k.pos]
	next := k.buf[(k.pos+1)%len(k.buf)]
	k.buf[k.pos] = k.damping * 0.5 * (out + next)
	k.pos = (k.pos + 1) % len(k.buf)
	return out
}

// Period returns the string length in samples.
func (k *KarplusStrong) Period() int { return len(k.buf) }

// RisingLinear is a ramp: each call returns the current value and then
// raises it by increment, never past ceiling.
type RisingLinear struct {
	value     float64
	increment float64
	ceiling   float64
}

func NewRisingLinear(increment, ceiling float64) (*RisingLinear, error) {
	if increment <= 0 || math.IsNaN(increment) {
		return nil, errs.Param("increment", "must be positive, got %v", increment)
	}
	if ceiling < 0 || math.IsNaN(ceiling) {
		return nil, errs.Param("ceiling", "must not be negative, got %v", ceiling)
	}
	return &RisingLinear{increment: increment, ceiling: ceiling}, nil
}

func (r *RisingLinear) Sample(float64) float64 {
	v := r.value
	r.value = math.Min(r.value+r.increment, r.ceiling)
	return v
}

// Tremolo modulates the amplitude of its source with an LFO. Gain swings
// between 1-depth and 1.
type Tremolo struct {
	src   Generator
	lfo   *lfo.LFO
	depth float64
}

func NewTremolo(src Generator, depth, rateHz float64, waveform lfo.Waveform, sampleRate int) (*Tremolo, error) {
	if depth < 0 || depth > 1 {
		return nil, errs.Param("tremolo depth", "must be in [0, 1], got %v", depth)
	}
	if sampleRate <= 0 {
		return nil, errs.Param("sample rate", "must be positive, got %d", sampleRate)
	}
	return &Tremolo{
		src:   src,
		lfo:   lfo.New(depth, rateHz, waveform, sampleRate),
		depth: depth,
	}, nil
}

func (tr *Tremolo) Sample(t float64) float64 {
	gain := 1 - tr.depth/2 + tr.lfo.Sample()/2
	return tr.src.Sample(t) * gain
}
