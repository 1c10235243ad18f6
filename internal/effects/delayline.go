package effects

import (
	"math"

	"github.com/cbegin/wavesynth-go/internal/errs"
)

// DelayLine is a circular buffer that returns samples written a fixed
// number of steps earlier. Each step a caller reads the delayed sample and
// then writes the new one.
type DelayLine struct {
	buf        []float64
	pos        int
	delay      int
	sampleRate int
}

// NewDelayLine creates a delay line of delaySamples samples. sampleRate is
// recorded for DelaySeconds and otherwise unused.
func NewDelayLine(delaySamples, sampleRate int) (*DelayLine, error) {
	if delaySamples < 1 {
		return nil, errs.Param("delay length", "must be at least one sample, got %d", delaySamples)
	}
	if sampleRate <= 0 {
		return nil, errs.Param("sample rate", "must be positive, got %d", sampleRate)
	}
	return &DelayLine{
		buf:        make([]float64, delaySamples),
		delay:      delaySamples,
		sampleRate: sampleRate,
	}, nil
}

// NewDelayLineSeconds creates a delay line of the given duration, rounded to
// the nearest whole sample.
func NewDelayLineSeconds(seconds float64, sampleRate int) (*DelayLine, error) {
	if seconds <= 0 || math.IsNaN(seconds) {
		return nil, errs.Param("delay length", "must be positive, got %vs", seconds)
	}
	return NewDelayLine(int(math.Round(seconds*float64(sampleRate))), sampleRate)
}

// Read returns the sample written Delay() writes ago, or 0 before that many
// writes have happened.
func (d *DelayLine) Read() float64 {
	return d.buf[d.pos]
}

// Write stores x and advances the cursor.
func (d *DelayLine) Write(x float64) {
	d.buf[d.pos] = x
	d.pos++
	if d.pos >= len(d.buf) {
		d.pos = 0
	}
}

// Tick reads the delayed sample and then writes x.
func (d *DelayLine) Tick(x float64) float64 {
	out := d.Read()
	d.Write(x)
	return out
}

func (d *DelayLine) Delay() int { return d.delay }

func (d *DelayLine) DelaySeconds() float64 {
	return float64(d.delay) / float64(d.sampleRate)
}

func (d *DelayLine) Reset() {
	for i := range d.buf {
		d.buf[i] = 0
	}
	d.pos = 0
}
